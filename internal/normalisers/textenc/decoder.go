// Package textenc decodes uploaded bytes into text.
//
// Aozora Bunko distributes its texts in Shift_JIS, so that encoding is
// tried first. Input that is not valid Shift_JIS is decoded as UTF-8 with
// U+FFFD substituted for every invalid sequence. Decoding never fails.
package textenc

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"

	"github.com/custodia-labs/aobun/internal/core/domain"
	"github.com/custodia-labs/aobun/internal/core/ports/driven"
	"github.com/custodia-labs/aobun/internal/logger"
)

// Encoding names reported in domain.DecodedText.
const (
	EncodingShiftJIS = "shift_jis"
	EncodingUTF8     = "utf-8"
)

// rejectedRunes never appear in a faithful Shift_JIS decode.
const rejectedRunes = "\ufffd\u0080"

// Ensure Decoder implements the interface.
var _ driven.Decoder = (*Decoder)(nil)

// Decoder tries a primary encoding and falls back to a lossy secondary one.
type Decoder struct {
	primary      encoding.Encoding
	primaryName  string
	fallback     encoding.Encoding
	fallbackName string
}

// New creates a Shift_JIS decoder with a UTF-8 fallback.
func New() *Decoder {
	return &Decoder{
		primary:      japanese.ShiftJIS,
		primaryName:  EncodingShiftJIS,
		fallback:     unicode.UTF8,
		fallbackName: EncodingUTF8,
	}
}

// Decode converts raw bytes to text. It always returns a result.
func (d *Decoder) Decode(raw []byte) domain.DecodedText {
	if text, ok := decodeStrict(d.primary, raw); ok {
		return domain.DecodedText{Text: text, Encoding: d.primaryName}
	}

	logger.Debug("not valid %s, falling back to %s", d.primaryName, d.fallbackName)

	out, err := d.fallback.NewDecoder().Bytes(raw)
	if err != nil {
		// The x/text UTF-8 decoder replaces rather than rejects, so this
		// only happens on transformer faults.
		out = bytes.ToValidUTF8(raw, []byte(string(utf8.RuneError)))
	}

	return domain.DecodedText{
		Text:     string(out),
		Encoding: d.fallbackName,
		Lossy:    !utf8.Valid(raw),
	}
}

// decodeStrict decodes raw and reports false if any byte sequence was
// undecodable or unmapped. x/text decoders substitute U+FFFD instead of
// failing, and the Shift_JIS decoder passes a lone 0x80 through as U+0080.
// Neither rune has a Shift_JIS encoding, so either one in the output marks
// a failure.
func decodeStrict(enc encoding.Encoding, raw []byte) (string, bool) {
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", false
	}
	if bytes.ContainsAny(out, rejectedRunes) {
		return "", false
	}
	return string(out), true
}
