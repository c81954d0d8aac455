package attributes

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"rlreplay.dev/internal/bitstream"
)

// maxStringBytes bounds a single replicated string.
const maxStringBytes = 1 << 16

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// decodeString reads a length-prefixed engine string. A negative length
// means UTF-16LE with -length code units; otherwise Windows-1252 bytes.
// Both forms include a trailing NUL.
func decodeString(r *bitstream.Reader) (string, error) {
	size, ok := r.ReadI32()
	if !ok {
		return "", fmt.Errorf("string size: %w", ErrTruncated)
	}
	if size == 0 {
		return "", nil
	}
	if size < 0 {
		n := int64(-size) * 2
		if n > maxStringBytes {
			return "", fmt.Errorf("utf-16 string of %d bytes too large", n)
		}
		raw, ok := r.ReadBytes(int(n))
		if !ok {
			return "", fmt.Errorf("utf-16 string: %w", ErrTruncated)
		}
		out, err := utf16le.NewDecoder().Bytes(raw)
		if err != nil {
			return "", fmt.Errorf("utf-16 string: %w", err)
		}
		return trimNul(string(out)), nil
	}
	if size > maxStringBytes {
		return "", fmt.Errorf("string of %d bytes too large", size)
	}
	raw, ok := r.ReadBytes(int(size))
	if !ok {
		return "", fmt.Errorf("string: %w", ErrTruncated)
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("string: %w", err)
	}
	return trimNul(string(out)), nil
}

func trimNul(s string) string {
	return strings.TrimRight(s, "\x00")
}

// EncodeString writes s in the form decodeString reads. Strings that are not
// representable in Windows-1252 are written as UTF-16LE.
func EncodeString(w *bitstream.Writer, s string) error {
	if s == "" {
		w.WriteI32(0)
		return nil
	}
	if b, err := charmap.Windows1252.NewEncoder().Bytes([]byte(s)); err == nil {
		w.WriteI32(int32(len(b) + 1))
		w.WriteBytes(b)
		w.WriteU8(0)
		return nil
	}
	b, err := utf16le.NewEncoder().Bytes([]byte(s + "\x00"))
	if err != nil {
		return err
	}
	w.WriteI32(-int32(len(b) / 2))
	w.WriteBytes(b)
	return nil
}
