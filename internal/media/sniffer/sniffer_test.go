package sniffer

import (
	"errors"
	"testing"
)

func TestDetectHead(t *testing.T) {
	for _, tc := range []struct {
		name string
		head []byte
		want MediaType
		mime string
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}, TypeJPEG, "image/jpeg"},
		{"png", []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0x00}, TypePNG, "image/png"},
		{"gif87a", []byte("GIF87a....."), TypeGIF, "image/gif"},
		{"gif89a", []byte("GIF89a....."), TypeGIF, "image/gif"},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), TypeWEBP, "image/webp"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DetectHead(tc.head)
			if err != nil {
				t.Fatalf("DetectHead failed: %v", err)
			}
			if got.Type != tc.want || got.MIME != tc.mime {
				t.Errorf("got %+v, want %s/%s", got, tc.want, tc.mime)
			}
		})
	}
}

func TestDetectHeadRejectsUnknown(t *testing.T) {
	for _, tc := range []struct {
		name string
		head []byte
	}{
		{"empty", nil},
		{"text", []byte("hello world, not an image")},
		{"svg", []byte("<svg xmlns=\"http://www.w3.org/2000/svg\">")},
		{"riff but not webp", []byte("RIFF\x00\x00\x00\x00WAVEfmt ")},
		{"truncated png", []byte{0x89, 'P', 'N'}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DetectHead(tc.head); !errors.Is(err, ErrUnknownType) {
				t.Errorf("expected ErrUnknownType, got %v", err)
			}
		})
	}
}
