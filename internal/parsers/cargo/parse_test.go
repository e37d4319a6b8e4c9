package cargo_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/manifoldpm/manifold/internal/parsers/cargo"
)

func TestParseListInstalled(t *testing.T) {
	raw := []byte("ripgrep v14.1.0:\n    rg\nbat v0.24.0:\n    bat\n")
	recs, err := cargo.ParseListInstalled(raw)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, "ripgrep", recs[0].Name)
	require.Equal(t, "14.1.0", recs[0].InstalledVersion)
}

func TestParseDetection(t *testing.T) {
	rec := cargo.ParseDetection([]byte("cargo 1.76.0 (c84b36747 2024-01-18)\n"))
	require.True(t, rec.Installed)
	require.Equal(t, "1.76.0", rec.Version)
}
