package encoding

import (
	"errors"
	"strings"
	"testing"
)

type ref struct {
	Generation uint64 `msgpack:"g"`
	ID         uint32 `msgpack:"i"`
	Label      string `msgpack:"l,omitempty"`
}

func TestNewEncoder(t *testing.T) {
	// Any key length works; short keys are stretched.
	for _, key := range []string{"", "short", "this-is-a-32-byte-key-for-aes!!!", strings.Repeat("k", 64)} {
		if _, err := NewEncoder([]byte(key)); err != nil {
			t.Errorf("NewEncoder(%d bytes) error = %v", len(key), err)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	enc, err := NewEncoder([]byte("test-key"))
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}

	tests := []struct {
		name      string
		sensitive bool
		value     ref
	}{
		{"signed", false, ref{Generation: 3, ID: 7, Label: "onClick"}},
		{"encrypted", true, ref{Generation: 1 << 40, ID: 99}},
		{"zero signed", false, ref{}},
		{"zero encrypted", true, ref{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := enc.Encode(tt.value, tt.sensitive)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if token == "" {
				t.Fatal("token is empty")
			}
			if signed := strings.Contains(token, "."); signed == tt.sensitive {
				t.Errorf("token %q has wrong form for sensitive=%v", token, tt.sensitive)
			}

			var got ref
			if err := enc.Decode(token, tt.sensitive, &got); err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if got != tt.value {
				t.Errorf("Decode() = %+v, want %+v", got, tt.value)
			}
		})
	}
}

func TestEncryptedTokensDiffer(t *testing.T) {
	enc, _ := NewEncoder([]byte("test-key"))
	a, _ := enc.Encode(ref{ID: 1}, true)
	b, _ := enc.Encode(ref{ID: 1}, true)
	if a == b {
		t.Error("encrypting twice should use fresh nonces")
	}
}

func TestTampered(t *testing.T) {
	enc, err := NewEncoder([]byte("test-key"))
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}

	signed, _ := enc.Encode(ref{ID: 123}, false)
	var got ref
	err = enc.Decode(signed[:len(signed)-2]+"XX", false, &got)
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("tampered signature: error = %v, want ErrSignatureInvalid", err)
	}

	// Swapping the payload keeps the old signature.
	other, _ := enc.Encode(ref{ID: 124}, false)
	forged := strings.SplitN(other, ".", 2)[0] + "." + strings.SplitN(signed, ".", 2)[1]
	if err := enc.Decode(forged, false, &got); !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("forged payload: error = %v, want ErrSignatureInvalid", err)
	}

	sealed, _ := enc.Encode(ref{ID: 123}, true)
	if err := enc.Decode(sealed[:len(sealed)-2]+"XX", true, &got); !errors.Is(err, ErrDecryptFailed) {
		t.Errorf("tampered ciphertext: error = %v, want ErrDecryptFailed", err)
	}
}

func TestInvalidFormat(t *testing.T) {
	enc, _ := NewEncoder([]byte("test-key"))

	tests := []struct {
		name      string
		token     string
		sensitive bool
	}{
		{"missing separator", "invalidbase64withoutseparator", false},
		{"bad payload", "!!!.AAAA", false},
		{"bad ciphertext", "!!!", true},
		{"short ciphertext", "AAAA", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got ref
			err := enc.Decode(tt.token, tt.sensitive, &got)
			if !errors.Is(err, ErrInvalidFormat) {
				t.Errorf("Decode(%q) error = %v, want ErrInvalidFormat", tt.token, err)
			}
		})
	}
}

func TestDifferentKeysCannotDecode(t *testing.T) {
	enc1, _ := NewEncoder([]byte("key-one"))
	enc2, _ := NewEncoder([]byte("key-two"))

	for _, sensitive := range []bool{false, true} {
		token, err := enc1.Encode(ref{ID: 123}, sensitive)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		var got ref
		if err := enc2.Decode(token, sensitive, &got); err == nil {
			t.Errorf("sensitive=%v: decoding with a different key should fail", sensitive)
		}
	}
}
