package kafka

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const keySegments = 2

// Key is the routing key of a message, encoded as "namespace.subject".
type Key struct {
	Namespace string
	Subject   string
}

// NewKey builds a Key.
func NewKey(namespace, subject string) Key {
	return Key{Namespace: namespace, Subject: subject}
}

// String returns the wire form "namespace.subject".
func (k Key) String() string {
	return k.Namespace + contextSeparator + k.Subject
}

// Bytes returns the UTF-8 wire form of the key.
func (k Key) Bytes() []byte {
	return []byte(k.String())
}

// ParseKeyError reports a key that could not be decoded. Err is or wraps
// ErrKeyInvalidEncoding or ErrKeyWrongFormat.
type ParseKeyError struct {
	Key string
	Err error
}

func (e *ParseKeyError) Error() string {
	return fmt.Sprintf("kafka: parse key %q: %v", e.Key, e.Err)
}

func (e *ParseKeyError) Unwrap() error { return e.Err }

// ParseKey decodes a wire key.
//
// Empty input decodes to a Key with two empty fields rather than an error,
// so ParseKey(nil) does not round-trip through Bytes (which yields ".").
// Otherwise the input must be valid UTF-8 and contain exactly one ".".
func ParseKey(b []byte) (Key, error) {
	if len(b) == 0 {
		return Key{}, nil
	}
	if off := invalidUTF8Offset(b); off >= 0 {
		err := fmt.Errorf("%w: invalid UTF-8 at byte %d", ErrKeyInvalidEncoding, off)
		return Key{}, &ParseKeyError{Key: string(b), Err: err}
	}

	s := string(b)
	parts := strings.Split(s, contextSeparator)
	if len(parts) != keySegments {
		return Key{}, &ParseKeyError{Key: s, Err: ErrKeyWrongFormat}
	}
	return NewKey(parts[0], parts[1]), nil
}

// invalidUTF8Offset returns the offset of the first byte that is not part of
// a valid UTF-8 sequence, or -1.
func invalidUTF8Offset(b []byte) int {
	for off := 0; off < len(b); {
		r, size := utf8.DecodeRune(b[off:])
		if r == utf8.RuneError && size == 1 {
			return off
		}
		off += size
	}
	return -1
}
