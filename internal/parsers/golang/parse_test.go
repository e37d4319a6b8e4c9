package golang_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/manifoldpm/manifold/internal/parsers/golang"
)

func TestParseListInstalled(t *testing.T) {
	raw := []byte("/home/u/go/bin/gopls: go1.22.0\n" +
		"\tpath\tgolang.org/x/tools/gopls\n" +
		"\tmod\tgolang.org/x/tools/gopls\tv0.15.3\th1:abc=\n")
	recs, err := golang.ParseListInstalled(raw)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "golang.org/x/tools/gopls", recs[0].Name)
	require.Equal(t, "v0.15.3", recs[0].InstalledVersion)
}

func TestParseDetection(t *testing.T) {
	rec := golang.ParseDetection([]byte("go version go1.22.0 linux/amd64\n"))
	require.True(t, rec.Installed)
	require.Equal(t, "1.22.0", rec.Version)
}
