package qr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vaulterrors "github.com/Aman-CERP/qrvault/internal/errors"
)

func TestRasterizeThenDecode_RoundTrips(t *testing.T) {
	cfg := DefaultConfig()
	text := "ABCDEFGHIJ"

	png, err := Rasterize(text, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, png)

	decoded, err := Decode(png)
	require.NoError(t, err)
	assert.Equal(t, text, decoded)
}

func TestRasterize_RejectsUnknownECL(t *testing.T) {
	_, err := Rasterize("hello", Config{ErrorCorrectionLevel: "Z", SizePX: 256})
	require.Error(t, err)
	assert.Equal(t, vaulterrors.ErrCodeConfigInvalid, vaulterrors.GetCode(err))
}

func TestRasterize_PayloadTooLargeForSingleSymbol(t *testing.T) {
	huge := strings.Repeat("x", 5000)
	_, err := Rasterize(huge, Config{ErrorCorrectionLevel: ECL_H, SizePX: 256})
	require.Error(t, err)
	assert.Equal(t, vaulterrors.ErrCodePayloadTooLarge, vaulterrors.GetCode(err))
}

func TestFitsSingleSymbol(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, FitsSingleSymbol("short chunk", cfg))
	assert.False(t, FitsSingleSymbol(strings.Repeat("x", 5000), Config{ErrorCorrectionLevel: ECL_H, SizePX: 256}))
}

func TestDecode_GarbageBytesFails(t *testing.T) {
	_, err := Decode([]byte("not a png"))
	require.Error(t, err)
}
