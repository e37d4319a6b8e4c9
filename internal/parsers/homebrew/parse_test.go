package homebrew_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/manifoldpm/manifold/internal/parsers/homebrew"
)

func TestParseListInstalled(t *testing.T) {
	raw, err := os.ReadFile("testdata/installed_versions.txt")
	require.NoError(t, err)

	recs, err := homebrew.ParseListInstalled(raw)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	require.Equal(t, "swiftformat", recs[0].Name)
	require.Equal(t, "0.53.0", recs[0].InstalledVersion)
}

// TestParseListOutdated_S1Fixture is the literal S1 scenario fixture from
// spec.md §8: homebrew's outdated output names both swiftformat (a real
// update) and ripgrep (installed == current, brew's own quirk). Both are
// parsed faithfully here; filtering ripgrep out is the adapter's job
// (filterHasUpdate).
func TestParseListOutdated_S1Fixture(t *testing.T) {
	raw, err := os.ReadFile("testdata/outdated.json")
	require.NoError(t, err)

	recs, err := homebrew.ParseListOutdated(raw)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	byName := map[string]string{}
	for _, r := range recs {
		byName[r.Name] = r.LatestVersion
	}
	require.Equal(t, "0.54.2", byName["swiftformat"])
	require.Equal(t, "14.0.3", byName["ripgrep"])
}

func TestParseDetection(t *testing.T) {
	rec := homebrew.ParseDetection([]byte("Homebrew 4.2.10\nHomebrew/homebrew-core\n"))
	require.True(t, rec.Installed)
	require.Equal(t, "4.2.10", rec.Version)
}
