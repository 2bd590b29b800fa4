package crypto

import (
	"bytes"
	"testing"
)

func TestAddressRoundTrip(t *testing.T) {
	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	addr := key.PubKey().Address()

	encoded := addr.String()
	decoded, err := DecodeAddress(encoded)
	if err != nil {
		t.Fatalf("decode address: %v", err)
	}
	if !bytes.Equal(decoded.Bytes(), addr.Bytes()) {
		t.Fatalf("round trip mismatch: %x != %x", decoded.Bytes(), addr.Bytes())
	}
	if decoded.Prefix() != GHOPrefix {
		t.Fatalf("unexpected prefix: %s", decoded.Prefix())
	}
}

func TestAddressIsZero(t *testing.T) {
	if !(Address{}).IsZero() {
		t.Fatalf("zero value should report zero")
	}
	if !NewAddress(GHOPrefix, make([]byte, 20)).IsZero() {
		t.Fatalf("all-zero payload should report zero")
	}
	raw := make([]byte, 20)
	raw[19] = 1
	if NewAddress(GHOPrefix, raw).IsZero() {
		t.Fatalf("non-zero payload should not report zero")
	}
}

func TestAddressEqualIgnoresPrefix(t *testing.T) {
	raw := make([]byte, 20)
	raw[19] = 7
	a := NewAddress(GHOPrefix, raw)
	b := NewAddress(DebtPrefix, append([]byte(nil), raw...))
	if !a.Equal(b) {
		t.Fatalf("addresses with equal payloads should be equal")
	}
}
