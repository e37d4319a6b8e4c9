package mise_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/manifoldpm/manifold/internal/parsers/mise"
)

func TestParseListInstalled(t *testing.T) {
	raw, err := os.ReadFile("testdata/installed.json")
	require.NoError(t, err)

	recs, err := mise.ParseListInstalled(raw)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	byName := map[string]string{}
	for _, r := range recs {
		byName[r.Name] = r.InstalledVersion
	}
	require.Equal(t, "20.11.0", byName["node"])
	require.Equal(t, "1.22.0", byName["go"])
}

func TestParseListOutdated_SameVersionIsNotAnUpdate(t *testing.T) {
	raw, err := os.ReadFile("testdata/outdated.json")
	require.NoError(t, err)

	recs, err := mise.ParseListOutdated(raw)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.False(t, recs[0].HasUpdate())
}

func TestParseDetection(t *testing.T) {
	rec := mise.ParseDetection([]byte("mise 2024.2.1 linux-x64\n"))
	require.True(t, rec.Installed)
	require.Equal(t, "2024.2.1", rec.Version)
}

func TestParseDetection_Absent(t *testing.T) {
	rec := mise.ParseDetection(nil)
	require.False(t, rec.Installed)
}
