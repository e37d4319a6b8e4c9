package pipx_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/manifoldpm/manifold/internal/parsers/pipx"
)

func TestParseListInstalled(t *testing.T) {
	raw := []byte(`{"venvs":{"black":{"metadata":{"main_package":{"package":"black","package_version":"24.2.0"}}}}}`)
	recs, err := pipx.ParseListInstalled(raw)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "black", recs[0].Name)
	require.Equal(t, "24.2.0", recs[0].InstalledVersion)
}

func TestParseDetection(t *testing.T) {
	rec := pipx.ParseDetection([]byte("1.4.3\n"))
	require.True(t, rec.Installed)
	require.Equal(t, "1.4.3", rec.Version)
}
