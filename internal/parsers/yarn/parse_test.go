package yarn_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/manifoldpm/manifold/internal/parsers/yarn"
)

func TestParseListInstalled(t *testing.T) {
	raw := []byte(`{"type":"info","data":"typescript@5.4.2"}` + "\n" +
		`{"type":"info","data":"eslint@8.56.0"}` + "\n")
	recs, err := yarn.ParseListInstalled(raw)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, "typescript", recs[0].Name)
	require.Equal(t, "5.4.2", recs[0].InstalledVersion)
}

func TestParseDetection(t *testing.T) {
	rec := yarn.ParseDetection([]byte("1.22.21\n"))
	require.True(t, rec.Installed)
	require.Equal(t, "1.22.21", rec.Version)
}
