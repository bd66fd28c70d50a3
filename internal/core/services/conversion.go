package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/aobun/internal/core/domain"
	"github.com/custodia-labs/aobun/internal/core/ports/driven"
	"github.com/custodia-labs/aobun/internal/core/ports/driving"
	"github.com/custodia-labs/aobun/internal/logger"
)

// Ensure ConversionService implements the interface.
var _ driving.ConversionService = (*ConversionService)(nil)

// ConversionService feeds uploads through Decoder and Stripper and packages
// the results. Each call is independent; the service holds no mutable state.
type ConversionService struct {
	decoder  driven.Decoder
	stripper driven.Stripper
	archives driven.ArchiveCodec
}

// NewConversionService creates a new conversion service.
func NewConversionService(
	decoder driven.Decoder,
	stripper driven.Stripper,
	archives driven.ArchiveCodec,
) *ConversionService {
	return &ConversionService{
		decoder:  decoder,
		stripper: stripper,
		archives: archives,
	}
}

// StripText strips annotations from already-decoded text.
func (s *ConversionService) StripText(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.stripper.Strip(text), nil
}

// Convert converts a text file or every text entry of an archive.
func (s *ConversionService) Convert(ctx context.Context, src *domain.SourceDocument) (*domain.ConversionResult, error) {
	if src == nil || src.Name == "" {
		return nil, domain.ErrInvalidInput
	}

	logger.Section("Convert")
	logger.Debug("upload %q (%d bytes, %s)", src.Name, len(src.Content), src.Kind())

	switch src.Kind() {
	case domain.KindText:
		return s.convertText(src)
	case domain.KindArchive:
		return s.convertArchive(ctx, src)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, src.Name)
	}
}

// convertText handles a single uploaded text file.
func (s *ConversionService) convertText(src *domain.SourceDocument) (*domain.ConversionResult, error) {
	doc := s.convertOne(src.Name, domain.ResultName(src.Name), src.Content)

	return &domain.ConversionResult{
		Source:    src.Name,
		Kind:      domain.KindText,
		Documents: []domain.StrippedDocument{doc},
		Artifacts: []domain.Artifact{textArtifact(doc)},
	}, nil
}

// convertArchive handles a zip upload. Entries are converted in listing
// order and a failing entry does not abort the others, unless the archive
// as a whole is over its size limits.
func (s *ConversionService) convertArchive(ctx context.Context, src *domain.SourceDocument) (*domain.ConversionResult, error) {
	reader, err := s.archives.Open(src.Content)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", src.Name, err)
	}

	var qualifying []int
	for i, name := range reader.Names() {
		if domain.IsQualifyingEntry(name) {
			qualifying = append(qualifying, i)
		} else {
			logger.Debug("skipping %q", name)
		}
	}
	if len(qualifying) == 0 {
		return nil, fmt.Errorf("%s: %w", src.Name, domain.ErrEmptyArchive)
	}

	result := &domain.ConversionResult{
		Source: src.Name,
		Kind:   domain.KindArchive,
	}
	names := newNameAllocator()
	entryNames := reader.Names()

	for _, i := range qualifying {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := entryNames[i]
		raw, err := reader.Read(i)
		if errors.Is(err, domain.ErrArchiveTooLarge) {
			return nil, fmt.Errorf("%s: %w", src.Name, err)
		}
		if err != nil {
			logger.Warn("skipping %s in %s: %v", name, src.Name, err)
			result.Failures = append(result.Failures, domain.EntryFailure{Name: name, Err: err})
			continue
		}

		doc := s.convertOne(name, names.allocate(domain.ResultName(name)), raw)
		result.Documents = append(result.Documents, doc)
	}

	if len(result.Documents) == 0 {
		return nil, fmt.Errorf("%s: %w: %w", src.Name, domain.ErrNoConvertibleEntries, result.Failures[0])
	}

	if err := s.packageArchive(result); err != nil {
		return nil, err
	}

	logger.Debug("converted %d of %d text entries", len(result.Documents), len(qualifying))
	return result, nil
}

// packageArchive builds the downloads for an archive upload: one text file
// plus a one-entry archive for a single result, one archive otherwise.
func (s *ConversionService) packageArchive(result *domain.ConversionResult) error {
	files := make([]driven.ArchiveFile, len(result.Documents))
	for i, doc := range result.Documents {
		files[i] = driven.ArchiveFile{Name: doc.Name, Content: []byte(doc.Text)}
	}

	packed, err := s.archives.Pack(files)
	if err != nil {
		return fmt.Errorf("packing results: %w", err)
	}

	if len(result.Documents) == 1 {
		result.Artifacts = []domain.Artifact{
			textArtifact(result.Documents[0]),
			{Name: domain.SingleArchiveName, MIMEType: domain.MIMEZip, Content: packed},
		}
		return nil
	}

	result.Artifacts = []domain.Artifact{
		{Name: domain.BatchArchiveName, MIMEType: domain.MIMEZip, Content: packed},
	}
	return nil
}

// convertOne decodes and strips a single file.
func (s *ConversionService) convertOne(sourceName, outputName string, raw []byte) domain.StrippedDocument {
	decoded := s.decoder.Decode(raw)
	if decoded.Lossy {
		logger.Warn("%s: undecodable bytes replaced (%s)", sourceName, decoded.Encoding)
	}

	return domain.StrippedDocument{
		SourceName: sourceName,
		Name:       outputName,
		Text:       s.stripper.Strip(decoded.Text),
		Encoding:   decoded.Encoding,
		Lossy:      decoded.Lossy,
	}
}

func textArtifact(doc domain.StrippedDocument) domain.Artifact {
	return domain.Artifact{
		Name:     doc.Name,
		MIMEType: domain.MIMEText,
		Content:  []byte(doc.Text),
	}
}

// nameAllocator keeps output names unique within one archive by
// appending _2, _3, ... before the extension of repeated names.
type nameAllocator struct {
	used map[string]bool
}

func newNameAllocator() *nameAllocator {
	return &nameAllocator{used: make(map[string]bool)}
}

func (a *nameAllocator) allocate(name string) string {
	if !a.used[name] {
		a.used[name] = true
		return name
	}

	stem := strings.TrimSuffix(name, domain.TextSuffix)
	for n := 2; ; n++ {
		candidate := stem + "_" + strconv.Itoa(n) + domain.TextSuffix
		if !a.used[candidate] {
			a.used[candidate] = true
			return candidate
		}
	}
}
