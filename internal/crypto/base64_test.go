package crypto

import (
	"bytes"
	"strings"
	"testing"
)

func TestBase64_RoundTrip(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatal(err)
	}

	encoded := ToBase64(key)
	decoded, err := FromBase64(encoded)
	if err != nil {
		t.Fatalf("FromBase64() error = %v", err)
	}
	if !bytes.Equal(decoded, key) {
		t.Error("base64 round-trip changed the key")
	}
}

func TestDecodeKeyBase64_Lenient(t *testing.T) {
	key := []byte{0xfb, 0xef, 0xff, 0x01, 0x02, 0x03}
	padded := ToBase64(key)

	tests := []struct {
		name string
		in   string
	}{
		{"standard padded", padded},
		{"standard unpadded", strings.TrimRight(padded, "=")},
		{"url-safe unpadded", strings.TrimRight(strings.NewReplacer("+", "-", "/", "_").Replace(padded), "=")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := DecodeKeyBase64(tt.in)
			if err != nil {
				t.Fatalf("DecodeKeyBase64(%q) error = %v", tt.in, err)
			}
			if !bytes.Equal(decoded, key) {
				t.Errorf("decoded = %v, want %v", decoded, key)
			}
		})
	}
}

func TestDecodeKeyBase64_Invalid(t *testing.T) {
	if _, err := DecodeKeyBase64("not base64 at all!!!"); err == nil {
		t.Error("DecodeKeyBase64 accepted invalid input")
	}
}
