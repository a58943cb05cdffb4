package object

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// HashSize is the length of a raw object id in bytes.
	HashSize = sha1.Size
	// HashHexSize is the length of a hex-rendered object id.
	HashHexSize = 2 * HashSize

	shortHashLen = 7
)

// Hash is a 40-character lowercase hex-encoded SHA-1 object id.
type Hash string

// ParseHash validates s as an object id. Surrounding whitespace is ignored
// and upper-case hex is folded to lower case.
func ParseHash(s string) (Hash, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if len(v) != HashHexSize {
		return "", &InvalidIdentifierError{Value: s}
	}
	for i := 0; i < len(v); i++ {
		if !isHexDigit(v[i]) {
			return "", &InvalidIdentifierError{Value: s}
		}
	}
	return Hash(v), nil
}

// HashFromBytes renders a raw 20-byte id.
func HashFromBytes(b []byte) (Hash, error) {
	if len(b) != HashSize {
		return "", fmt.Errorf("%w: raw id has %d bytes, want %d", ErrInvalidIdentifier, len(b), HashSize)
	}
	return Hash(hex.EncodeToString(b)), nil
}

// Valid reports whether h is a well-formed lowercase id.
func (h Hash) Valid() bool {
	if len(h) != HashHexSize {
		return false
	}
	for i := 0; i < len(h); i++ {
		c := h[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return false
		}
	}
	return true
}

// Bytes returns the raw 20-byte form of h.
func (h Hash) Bytes() ([]byte, error) {
	if !h.Valid() {
		return nil, &InvalidIdentifierError{Value: string(h)}
	}
	return hex.DecodeString(string(h))
}

// Short returns the abbreviated form used in human-facing output.
func (h Hash) Short() string {
	if len(h) <= shortHashLen {
		return string(h)
	}
	return string(h[:shortHashLen])
}

func (h Hash) String() string { return string(h) }

// HashObject computes the SHA-1 of the envelope "type len\0content".
func HashObject(objType ObjectType, data []byte) Hash {
	h := sha1.New()
	h.Write(envelopeHeader(objType, len(data)))
	h.Write(data)
	return Hash(hex.EncodeToString(h.Sum(nil)))
}

func envelopeHeader(objType ObjectType, n int) []byte {
	return []byte(fmt.Sprintf("%s %d\x00", objType, n))
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}
