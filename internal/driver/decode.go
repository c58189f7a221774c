package driver

import (
	"bytes"
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrInvalidEncoding is returned for input that is neither BOM-marked nor
// valid UTF-8.
var ErrInvalidEncoding = errors.New("input is not valid UTF-8")

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF16LE = []byte{0xFF, 0xFE}
)

// sourceForm records how a file was stored so the formatted text can be
// written back the same way.
type sourceForm struct {
	enc  encoding.Encoding // nil for plain UTF-8
	crlf bool
}

// detectBOM returns the encoding named by a leading byte order mark.
func detectBOM(data []byte) encoding.Encoding {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return unicode.UTF8BOM
	case bytes.HasPrefix(data, bomUTF16BE):
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	case bytes.HasPrefix(data, bomUTF16LE):
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)
	}
	return nil
}

// decodeSource returns data as LF-terminated UTF-8 text together with the
// form it was stored in.
func decodeSource(data []byte) (string, sourceForm, error) {
	form := sourceForm{enc: detectBOM(data)}
	var text string
	if form.enc == nil {
		if !utf8.Valid(data) {
			return "", form, ErrInvalidEncoding
		}
		text = string(data)
	} else {
		decoded, _, err := transform.Bytes(form.enc.NewDecoder(), data)
		if err != nil {
			return "", form, err
		}
		text = string(decoded)
	}
	if strings.Contains(text, "\r\n") {
		form.crlf = true
		text = strings.ReplaceAll(text, "\r\n", "\n")
	}
	return text, form, nil
}

// encodeSource reverses decodeSource: line endings first, then the byte
// order mark and encoding.
func encodeSource(text string, form sourceForm) ([]byte, error) {
	if form.crlf {
		text = strings.ReplaceAll(text, "\n", "\r\n")
	}
	if form.enc == nil {
		return []byte(text), nil
	}
	out, _, err := transform.Bytes(form.enc.NewEncoder(), []byte(text))
	return out, err
}
