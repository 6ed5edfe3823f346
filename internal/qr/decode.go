package qr

import (
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	vaulterrors "github.com/Aman-CERP/qrvault/internal/errors"
)

// DecodeImage decodes an already-rasterized image.Image (as extracted
// from an MP4 frame by internal/video) back into its QR payload text.
// This is the symmetric counterpart to RasterizeImage: together they
// form the round-trip this whole module exists to guarantee.
func DecodeImage(img image.Image) (string, error) {
	bitmap, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", vaulterrors.InternalError("failed to build bitmap from frame image", err)
	}

	reader := qrcode.NewQRCodeReader()
	result, err := reader.Decode(bitmap, nil)
	if err != nil {
		// A failed decode is a per-frame condition, not a hard error;
		// the caller (internal/retrieve) decides whether to surface it
		// as a warning or absorb it silently.
		return "", vaulterrors.New(vaulterrors.ErrCodeFrameDecodeFailed,
			"frame did not contain a decodable QR payload", err)
	}

	return result.GetText(), nil
}
