package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/custodia-labs/aobun/internal/core/domain"
	"github.com/custodia-labs/aobun/internal/core/ports/driven"
)

// Ensure ZipCodec implements the interface.
var _ driven.ArchiveCodec = (*ZipCodec)(nil)

// ZipCodec reads and writes zip archives.
type ZipCodec struct {
	maxEntryBytes int64
	maxTotalBytes int64
	maxEntries    int

	// modified is stamped on packed members so output is reproducible.
	modified time.Time
}

// NewZipCodec creates a codec enforcing the given archive limits.
// Non-positive limits fall back to their defaults.
func NewZipCodec(limits domain.ArchiveSettings) *ZipCodec {
	if limits.MaxEntryBytes <= 0 {
		limits.MaxEntryBytes = domain.DefaultMaxEntryBytes
	}
	if limits.MaxTotalBytes <= 0 {
		limits.MaxTotalBytes = domain.DefaultMaxTotalBytes
	}
	if limits.MaxEntries <= 0 {
		limits.MaxEntries = domain.DefaultArchiveMaxEntries
	}
	return &ZipCodec{
		maxEntryBytes: limits.MaxEntryBytes,
		maxTotalBytes: limits.MaxTotalBytes,
		maxEntries:    limits.MaxEntries,
		modified:      time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Open parses an in-memory zip archive.
func (c *ZipCodec) Open(content []byte) (driven.ArchiveReader, error) {
	r, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArchive, err)
	}
	if len(r.File) > c.maxEntries {
		return nil, fmt.Errorf("%w: %d members, limit %d", domain.ErrArchiveTooLarge, len(r.File), c.maxEntries)
	}
	return &zipReader{
		files:         r.File,
		maxEntryBytes: c.maxEntryBytes,
		remaining:     c.maxTotalBytes,
	}, nil
}

// Pack writes files into a new deflate-compressed archive.
func (c *ZipCodec) Pack(files []driven.ArchiveFile) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	for _, f := range files {
		hdr := &zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: c.modified,
		}

		fw, err := w.CreateHeader(hdr)
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", f.Name, err)
		}
		if _, err := fw.Write(f.Content); err != nil {
			return nil, fmt.Errorf("writing %s: %w", f.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing archive: %w", err)
	}
	return buf.Bytes(), nil
}

// zipReader gives indexed access to archive members.
// It is not safe for concurrent use.
type zipReader struct {
	files         []*zip.File
	maxEntryBytes int64

	// remaining is what may still be inflated across all members.
	remaining int64
}

// Names returns member names in listing order.
func (r *zipReader) Names() []string {
	names := make([]string, len(r.files))
	for i, f := range r.files {
		names[i] = f.Name
	}
	return names
}

// Read returns the uncompressed content of member i.
func (r *zipReader) Read(i int) ([]byte, error) {
	if i < 0 || i >= len(r.files) {
		return nil, fmt.Errorf("%w: member index %d out of range", domain.ErrInvalidInput, i)
	}
	f := r.files[i]

	if f.UncompressedSize64 > uint64(r.maxEntryBytes) {
		return nil, fmt.Errorf("%w: %d bytes", domain.ErrEntryTooLarge, f.UncompressedSize64)
	}
	if f.UncompressedSize64 > uint64(r.remaining) {
		return nil, fmt.Errorf("%w: %s needs %d bytes, %d left",
			domain.ErrArchiveTooLarge, f.Name, f.UncompressedSize64, r.remaining)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArchive, err)
	}
	defer rc.Close()

	// The header size can lie; cap what is actually inflated.
	limit := min(r.maxEntryBytes, r.remaining)
	content, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArchive, err)
	}
	n := int64(len(content))
	switch {
	case n > r.maxEntryBytes:
		return nil, fmt.Errorf("%w: more than %d bytes", domain.ErrEntryTooLarge, r.maxEntryBytes)
	case n > r.remaining:
		return nil, fmt.Errorf("%w: %s inflates past the archive limit", domain.ErrArchiveTooLarge, f.Name)
	}

	r.remaining -= n
	return content, nil
}
