package rustup_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/manifoldpm/manifold/internal/parsers/rustup"
)

func TestParseListInstalled(t *testing.T) {
	raw := []byte("stable-aarch64-apple-darwin (default)\t/Users/u/.rustup/toolchains/stable\n" +
		"nightly-aarch64-apple-darwin\t/Users/u/.rustup/toolchains/nightly\n")
	recs, err := rustup.ParseListInstalled(raw)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, "stable-aarch64-apple-darwin", recs[0].Name)
}

func TestParseDetection(t *testing.T) {
	rec := rustup.ParseDetection([]byte("rustup 1.26.0 (5af9b9484 2023-04-05)\n"))
	require.True(t, rec.Installed)
	require.Equal(t, "1.26.0", rec.Version)
}
