package driving

import (
	"context"

	"github.com/custodia-labs/aobun/internal/core/domain"
)

// ConversionService converts uploaded Aozora Bunko files.
type ConversionService interface {
	// Convert decodes and strips a text file, or every text entry of an archive,
	// and packages the downloadable artifacts.
	Convert(ctx context.Context, src *domain.SourceDocument) (*domain.ConversionResult, error)

	// StripText strips annotations from already-decoded text.
	StripText(ctx context.Context, text string) (string, error)
}
