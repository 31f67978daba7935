package qr

import (
	"bytes"
	"strings"
	"testing"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestRenderProducesPNG(t *testing.T) {
	png, err := Render("some-token")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Fatal("output is not a PNG")
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	a, err := Render("token-a")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	b, err := Render("token-a")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("same payload rendered differently")
	}
}

func TestDataURL(t *testing.T) {
	url, err := DataURL("some-token")
	if err != nil {
		t.Fatalf("DataURL: %v", err)
	}
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Fatalf("unexpected prefix: %.40s", url)
	}
}

func TestRenderRejectsEmptyPayload(t *testing.T) {
	if _, err := Render(""); err == nil {
		t.Fatal("expected error for empty payload")
	}
	if _, err := DataURL(""); err == nil {
		t.Fatal("expected error for empty payload")
	}
}
