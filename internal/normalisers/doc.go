// Package normalisers provides the text transforms applied to uploads.
// Each subpackage implements one driven port:
//
//   - textenc: Decoder, Shift_JIS with a lossy UTF-8 fallback
//   - aozora: Stripper, Aozora Bunko ruby and editorial-note removal
package normalisers
