package clients

import (
	"encoding/base64"
	"fmt"

	"github.com/skip2/go-qrcode"
)

const (
	qrSize          = 256
	qrDataURLPrefix = "data:image/png;base64,"
)

// QRRenderer encodes ticket payloads as PNG data URLs for embedding in email.
type QRRenderer struct {
	level qrcode.RecoveryLevel
	size  int
}

func NewQRRenderer() QRRenderer {
	return QRRenderer{level: qrcode.Medium, size: qrSize}
}

func (r QRRenderer) Render(payload string) (string, error) {
	png, err := qrcode.Encode(payload, r.level, r.size)
	if err != nil {
		return "", fmt.Errorf("failed to encode qr code: %w", err)
	}
	return qrDataURLPrefix + base64.StdEncoding.EncodeToString(png), nil
}
