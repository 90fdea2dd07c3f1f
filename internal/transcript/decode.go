package transcript

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	utf8BOM    = []byte{0xEF, 0xBB, 0xBF}
	utf16LEBOM = []byte{0xFF, 0xFE}
	utf16BEBOM = []byte{0xFE, 0xFF}
)

// Decode converts raw file contents to text.
// A UTF-8 BOM is dropped and UTF-16 input with a BOM is converted;
// anything else must already be valid UTF-8.
func Decode(b []byte) (string, error) {
	switch {
	case bytes.HasPrefix(b, utf16LEBOM):
		return decodeUTF16(b, binary.LittleEndian)
	case bytes.HasPrefix(b, utf16BEBOM):
		return decodeUTF16(b, binary.BigEndian)
	}

	b = bytes.TrimPrefix(b, utf8BOM)
	if !utf8.Valid(b) {
		return "", ErrDecode
	}
	return string(b), nil
}

// decodeUTF16 rejects input the decoder would otherwise patch with U+FFFD,
// such as a lone surrogate or a trailing odd byte.
func decodeUTF16(b []byte, order binary.ByteOrder) (string, error) {
	if len(b)%2 != 0 {
		return "", fmt.Errorf("%w: odd number of bytes in UTF-16 input", ErrDecode)
	}

	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), b)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecode, err)
	}

	var encodedReplacements int
	for i := len(utf16LEBOM); i < len(b); i += 2 {
		if order.Uint16(b[i:]) == utf8.RuneError {
			encodedReplacements++
		}
	}
	text := string(decoded)
	if strings.Count(text, string(utf8.RuneError)) != encodedReplacements {
		return "", fmt.Errorf("%w: malformed UTF-16 input", ErrDecode)
	}
	return text, nil
}
