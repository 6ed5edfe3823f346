// Package qr rasterizes chunk text into square QR bitmaps and decodes
// bitmaps back into text, the way internal/embed wraps a third-party
// model client behind a small interface — here the third party is a QR
// codec rather than an embedding model.
package qr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strconv"

	"github.com/skip2/go-qrcode"

	vaulterrors "github.com/Aman-CERP/qrvault/internal/errors"
)

// ErrorCorrectionLevel is one of L, M, Q, H in ascending redundancy.
type ErrorCorrectionLevel string

const (
	ECL_L ErrorCorrectionLevel = "L"
	ECL_M ErrorCorrectionLevel = "M"
	ECL_Q ErrorCorrectionLevel = "Q"
	ECL_H ErrorCorrectionLevel = "H"
)

// Config controls the rasterizer.
type Config struct {
	// ErrorCorrectionLevel is one of L, M, Q, H. Default M.
	ErrorCorrectionLevel ErrorCorrectionLevel
	// SizePX is the output square side length in pixels. Default 256.
	SizePX int
}

// DefaultConfig returns the rasterizer defaults: ECL M at 256x256.
func DefaultConfig() Config {
	return Config{
		ErrorCorrectionLevel: ECL_M,
		SizePX:               256,
	}
}

func (c Config) level() (qrcode.RecoveryLevel, error) {
	switch c.ErrorCorrectionLevel {
	case ECL_L:
		return qrcode.Low, nil
	case ECL_M, "":
		return qrcode.Medium, nil
	case ECL_Q:
		return qrcode.High, nil
	case ECL_H:
		return qrcode.Highest, nil
	default:
		return 0, vaulterrors.ConfigError(
			fmt.Sprintf("unknown qr error correction level %q", c.ErrorCorrectionLevel), nil)
	}
}

// Rasterize renders chunk text into a square bitmap at the configured
// resolution and error-correction level, returning PNG-encoded bytes.
// PayloadTooLarge is returned when the text cannot fit a single QR
// symbol at the configured ECL — the caller is expected to reduce
// chunk_size.
func Rasterize(text string, cfg Config) ([]byte, error) {
	size := cfg.SizePX
	if size <= 0 {
		size = DefaultConfig().SizePX
	}

	level, err := cfg.level()
	if err != nil {
		return nil, err
	}

	code, err := qrcode.New(text, level)
	if err != nil {
		return nil, vaulterrors.PayloadTooLarge(
			"chunk cannot be encoded in a single QR symbol at the configured error correction level", err).
			WithDetail("chunk_bytes", strconv.Itoa(len(text))).
			WithDetail("ecl", string(cfg.ErrorCorrectionLevel)).
			WithSuggestion("reduce chunk_size or lower qr_error_correction_level")
	}

	// DisableBorder is left at the library default, keeping a standard
	// quiet zone around the symbol.
	png, err := code.PNG(size)
	if err != nil {
		return nil, vaulterrors.InternalError("failed to render QR png", err)
	}
	return png, nil
}

// RasterizeImage is Rasterize's in-memory counterpart: it returns the
// symbol as an image.Image instead of PNG bytes.
func RasterizeImage(text string, cfg Config) (image.Image, error) {
	size := cfg.SizePX
	if size <= 0 {
		size = DefaultConfig().SizePX
	}
	level, err := cfg.level()
	if err != nil {
		return nil, err
	}
	code, err := qrcode.New(text, level)
	if err != nil {
		return nil, vaulterrors.PayloadTooLarge(
			"chunk cannot be encoded in a single QR symbol at the configured error correction level", err)
	}
	return code.Image(size), nil
}

// FitsSingleSymbol reports whether text can be encoded in one QR symbol
// at the given error-correction level, without rendering it. Used by the
// chunker/vault layer to fail fast before starting an encode.
func FitsSingleSymbol(text string, cfg Config) bool {
	level, err := cfg.level()
	if err != nil {
		return false
	}
	_, err = qrcode.New(text, level)
	return err == nil
}

// Decode reads a PNG-encoded bitmap and returns the QR payload as text.
// Any conformant QR reader must be able to decode frames produced by
// Rasterize; gozxing (a Go port of ZXing) fills that role symmetrically.
func Decode(pngBytes []byte) (string, error) {
	img, err := png.Decode(bytes.NewReader(pngBytes))
	if err != nil {
		return "", vaulterrors.IOError("failed to decode frame png", err)
	}
	return DecodeImage(img)
}

