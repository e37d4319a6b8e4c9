package docker_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/manifoldpm/manifold/internal/parsers/docker"
)

func TestParseListInstalled(t *testing.T) {
	raw := []byte(`{"Repository":"redis","Tag":"7.2"}` + "\n" + `{"Repository":"<none>","Tag":"<none>"}` + "\n")
	recs, err := docker.ParseListInstalled(raw)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "redis", recs[0].Name)
	require.Equal(t, "7.2", recs[0].InstalledVersion)
}

func TestParseSearch(t *testing.T) {
	raw := []byte(`{"Name":"redis"}` + "\n")
	recs, err := docker.ParseSearch(raw)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "redis", recs[0].Name)
}

func TestParseDetection(t *testing.T) {
	rec := docker.ParseDetection([]byte("Docker version 25.0.3, build 4debf41\n"))
	require.True(t, rec.Installed)
	require.Equal(t, "25.0.3", rec.Version)
}
