// Package domain defines the core entities for aobun.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SourceDocument: An uploaded file, text or archive
//   - DecodedText: Bytes turned into text by a Decoder
//   - StrippedDocument: Decoded text with annotations removed
//   - Artifact: A downloadable file produced by a conversion
//   - ConversionResult: Everything one upload produced
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
