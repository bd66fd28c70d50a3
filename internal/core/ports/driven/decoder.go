package driven

import "github.com/custodia-labs/aobun/internal/core/domain"

// Decoder turns raw bytes into text.
// Implementations must always return a result; undecodable input
// degrades to lossy text rather than an error.
type Decoder interface {
	// Decode converts raw bytes into text.
	Decode(raw []byte) domain.DecodedText
}
