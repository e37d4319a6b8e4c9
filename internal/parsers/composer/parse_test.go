package composer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/manifoldpm/manifold/internal/parsers/composer"
)

func TestParseListInstalled(t *testing.T) {
	raw := []byte(`{"installed":[{"name":"phpunit/phpunit","version":"v10.5.9"}]}`)
	recs, err := composer.ParseListInstalled(raw)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "10.5.9", recs[0].InstalledVersion)
}

func TestParseListOutdated(t *testing.T) {
	raw := []byte(`{"installed":[{"name":"phpunit/phpunit","version":"v10.5.9","latest":"v10.5.10"}]}`)
	recs, err := composer.ParseListOutdated(raw)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.True(t, recs[0].HasUpdate())
}

func TestParseDetection(t *testing.T) {
	rec := composer.ParseDetection([]byte("Composer version 2.7.1 2024-02-09 15:26:28\n"))
	require.True(t, rec.Installed)
	require.Equal(t, "2.7.1", rec.Version)
}
