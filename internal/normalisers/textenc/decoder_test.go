package textenc

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
)

func encodeShiftJIS(t *testing.T, s string) []byte {
	t.Helper()
	b, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return b
}

func TestDecode_ShiftJISRoundTrip(t *testing.T) {
	inputs := []string{
		"前《まえ》書き",
		"｜吾輩《わがはい》は猫である［＃「である」に傍点］",
		"ｱｲｳｴｵ half-width kana and ASCII",
		"改行を含む\r\n二行目",
	}

	d := New()
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			got := d.Decode(encodeShiftJIS(t, in))

			assert.Equal(t, in, got.Text)
			assert.Equal(t, EncodingShiftJIS, got.Encoding)
			assert.False(t, got.Lossy)
		})
	}
}

func TestDecode_ASCIIIsShiftJIS(t *testing.T) {
	got := New().Decode([]byte("hello, world"))

	assert.Equal(t, "hello, world", got.Text)
	assert.Equal(t, EncodingShiftJIS, got.Encoding)
}

func TestDecode_Empty(t *testing.T) {
	got := New().Decode(nil)

	assert.Equal(t, "", got.Text)
	assert.False(t, got.Lossy)
}

func TestDecode_FallsBackToUTF8(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		// C2 80 decodes as half-width kana followed by a bare 0x80.
		{name: "latin supplement", input: "café \u0080 ok"},
		// The 0x80 at offset 4 is the third byte of 《 in UTF-8.
		{name: "japanese", input: "前《まえ》書き"},
		{name: "japanese with editorial note", input: "｜吾輩《わがはい》は猫である［＃「である」に傍点］"},
	}

	d := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Decode([]byte(tt.input))

			assert.Equal(t, tt.input, got.Text)
			assert.Equal(t, EncodingUTF8, got.Encoding)
			assert.False(t, got.Lossy)
		})
	}
}

func TestDecode_LoneHighByteIsNotShiftJIS(t *testing.T) {
	got := New().Decode([]byte{'a', 0x80, 'b'})

	assert.Equal(t, EncodingUTF8, got.Encoding)
	assert.True(t, got.Lossy)
	assert.Equal(t, "a\uFFFDb", got.Text)
}

func TestDecode_CP932Extensions(t *testing.T) {
	// Circled digits live in the NEC row 13 extension (0x87 lead byte).
	got := New().Decode([]byte{0x87, 0x40, 0x87, 0x41})

	assert.Equal(t, "①②", got.Text)
	assert.Equal(t, EncodingShiftJIS, got.Encoding)
}

func TestDecode_InvalidUnderBoth(t *testing.T) {
	raw := []byte{'a', 0xff, 0xfe, 'b', 0x82}

	got := New().Decode(raw)

	assert.Equal(t, EncodingUTF8, got.Encoding)
	assert.True(t, got.Lossy)
	assert.True(t, utf8.ValidString(got.Text))
	assert.True(t, strings.HasPrefix(got.Text, "a"))
	assert.Contains(t, got.Text, "b")
	assert.Contains(t, got.Text, string(utf8.RuneError))
}

func TestDecode_NeverPanics(t *testing.T) {
	d := New()
	raw := make([]byte, 256)
	for i := range raw {
		raw[i] = byte(i)
	}

	assert.NotPanics(t, func() {
		for i := 0; i < len(raw); i++ {
			_ = d.Decode(raw[i:])
		}
	})
}
