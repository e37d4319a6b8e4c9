package npm_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/manifoldpm/manifold/internal/parsers/npm"
)

func TestParseListInstalled(t *testing.T) {
	raw, err := os.ReadFile("testdata/installed.json")
	require.NoError(t, err)

	recs, err := npm.ParseListInstalled(raw)
	require.NoError(t, err)
	require.Len(t, recs, 2)
}

func TestParseListOutdated(t *testing.T) {
	raw, err := os.ReadFile("testdata/outdated.json")
	require.NoError(t, err)

	recs, err := npm.ParseListOutdated(raw)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "eslint", recs[0].Name)
	require.Equal(t, "8.56.0", recs[0].InstalledVersion)
	require.Equal(t, "9.1.0", recs[0].LatestVersion)
	require.True(t, recs[0].HasUpdate())
}

func TestParseListOutdated_Empty(t *testing.T) {
	recs, err := npm.ParseListOutdated([]byte("{}"))
	require.NoError(t, err)
	require.Empty(t, recs)
}

func TestParseSearch(t *testing.T) {
	raw := []byte(`[{"name":"eslint","description":"linter","version":"9.1.0"}]`)
	results, err := npm.ParseSearch(raw, "eslint")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "eslint", results[0].Name)
}

func TestParseDetection(t *testing.T) {
	rec := npm.ParseDetection([]byte("10.5.0\n"))
	require.True(t, rec.Installed)
	require.Equal(t, "10.5.0", rec.Version)
}
