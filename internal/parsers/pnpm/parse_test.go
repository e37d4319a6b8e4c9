package pnpm_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/manifoldpm/manifold/internal/parsers/pnpm"
)

func TestParseListInstalled(t *testing.T) {
	raw := []byte(`[{"dependencies":{"typescript":{"name":"typescript","version":"5.4.2","path":"/x"}}}]`)
	recs, err := pnpm.ParseListInstalled(raw)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "typescript", recs[0].Name)
	require.Equal(t, "5.4.2", recs[0].InstalledVersion)
}

func TestParseListOutdated_Empty(t *testing.T) {
	recs, err := pnpm.ParseListOutdated([]byte("{}"))
	require.NoError(t, err)
	require.Empty(t, recs)
}

func TestParseListOutdated(t *testing.T) {
	raw := []byte(`{"typescript":{"current":"5.3.0","latest":"5.4.2"}}`)
	recs, err := pnpm.ParseListOutdated(raw)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.True(t, recs[0].HasUpdate())
}
