package download

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateHeaders(t *testing.T) {
	tests := []struct {
		name          string
		contentType   string
		contentLength int64
		wantErr       bool
		wantReason    string
	}{
		{"plain jpeg", "image/jpeg", -1, false, ""},
		{"png with params", "image/png; charset=utf-8", 100, false, ""},
		{"uppercase type", "IMAGE/JPEG", -1, false, ""},
		{"html", "text/html", -1, true, "content-type"},
		{"missing type", "", -1, true, "content-type"},
		{"octet stream", "application/octet-stream", -1, true, "content-type"},
		{"at cap", "image/jpeg", MaxImageBytes, false, ""},
		{"over cap", "image/jpeg", MaxImageBytes + 1, true, "too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateHeaders(tt.contentType, tt.contentLength)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateHeaders(%q, %d) error = %v, wantErr %v",
					tt.contentType, tt.contentLength, err, tt.wantErr)
			}
			if err == nil {
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error type = %T, want *ValidationError", err)
			}
			if !strings.Contains(verr.Reason, tt.wantReason) {
				t.Errorf("Reason = %q, want substring %q", verr.Reason, tt.wantReason)
			}
		})
	}
}

func TestValidateSignature(t *testing.T) {
	tests := []struct {
		name    string
		body    []byte
		wantErr bool
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00}, false},
		{"png", []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0x00}, false},
		{"gif87a", []byte("GIF87a....."), false},
		{"gif89a", []byte("GIF89a....."), false},
		{"bmp", []byte("BM......"), false},
		{"riff", []byte("RIFF....WEBP"), false},
		{"html", []byte("<html></html>"), true},
		{"truncated jpeg magic", []byte{0xFF, 0xD8}, true},
		{"empty", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateSignature(tt.body)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateSignature() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
