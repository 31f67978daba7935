// Package qr renders QR code payloads as PNG images.
package qr

import (
	"encoding/base64"
	"errors"

	qrcode "github.com/skip2/go-qrcode"
)

const pngSize = 256

// Render encodes a payload as a PNG QR code.
func Render(payload string) ([]byte, error) {
	if payload == "" {
		return nil, errors.New("qr: empty payload")
	}
	return qrcode.Encode(payload, qrcode.Medium, pngSize)
}

// DataURL renders a payload and wraps it as a base64 PNG data URL, the form
// stored on attendance sessions and returned to scanning clients.
func DataURL(payload string) (string, error) {
	png, err := Render(payload)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
