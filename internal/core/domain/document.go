package domain

import (
	"fmt"
	"path"
	"strings"
)

// File suffixes recognised for uploads and archive entries.
const (
	TextSuffix    = ".txt"
	ArchiveSuffix = ".zip"
)

// Output naming.
const (
	// ResultPrefix is prepended to every converted file name.
	ResultPrefix = "result_"

	// SingleArchiveName wraps the only text entry of an archive.
	SingleArchiveName = "result_text.zip"

	// BatchArchiveName holds the results of a multi-entry archive.
	BatchArchiveName = "result_texts.zip"
)

// MIME types of produced artifacts.
const (
	MIMEText = "text/plain; charset=utf-8"
	MIMEZip  = "application/zip"
)

// Kind classifies an uploaded file by its name.
type Kind int

const (
	// KindUnknown is any file that is neither text nor archive.
	KindUnknown Kind = iota

	// KindText is a single Aozora Bunko text file.
	KindText

	// KindArchive is a zip archive of text files.
	KindArchive
)

// String returns the string representation.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindArchive:
		return "archive"
	default:
		return "unknown"
	}
}

// SourceDocument is a raw uploaded file. It is never modified.
type SourceDocument struct {
	// Name is the uploaded file name as sent by the client.
	Name string

	// Content is the raw bytes.
	Content []byte
}

// Kind reports whether the document is a text file or an archive.
func (d *SourceDocument) Kind() Kind {
	switch {
	case strings.HasSuffix(d.Name, TextSuffix):
		return KindText
	case strings.HasSuffix(d.Name, ArchiveSuffix):
		return KindArchive
	default:
		return KindUnknown
	}
}

// IsQualifyingEntry reports whether an archive member should be converted.
// Matching is on the exact suffix; directory entries never qualify.
func IsQualifyingEntry(name string) bool {
	return strings.HasSuffix(name, TextSuffix)
}

// DecodedText is text produced from raw bytes.
type DecodedText struct {
	// Text is the decoded content.
	Text string

	// Encoding names the character encoding that produced Text.
	Encoding string

	// Lossy is true when undecodable bytes were replaced.
	Lossy bool
}

// StrippedDocument is one converted text file.
type StrippedDocument struct {
	// SourceName is the upload or archive entry name.
	SourceName string

	// Name is the output file name, see ResultName.
	Name string

	// Text is the decoded text with annotations removed.
	Text string

	// Encoding is the encoding the source was decoded with.
	Encoding string

	// Lossy is true when decoding replaced undecodable bytes.
	Lossy bool
}

// Artifact is a downloadable file produced by a conversion.
type Artifact struct {
	Name     string
	MIMEType string
	Content  []byte
}

// EntryFailure records an archive entry that could not be converted.
type EntryFailure struct {
	Name string
	Err  error
}

// Error implements error.
func (f EntryFailure) Error() string {
	return fmt.Sprintf("%s: %v", f.Name, f.Err)
}

// Unwrap returns the underlying error.
func (f EntryFailure) Unwrap() error {
	return f.Err
}

// ConversionResult is everything one upload produced.
type ConversionResult struct {
	// Source is the uploaded file name.
	Source string

	// Kind is the kind of the upload.
	Kind Kind

	// Documents holds converted texts in source listing order.
	Documents []StrippedDocument

	// Artifacts holds the downloads offered to the user, in display order.
	Artifacts []Artifact

	// Failures lists archive entries that were skipped.
	Failures []EntryFailure
}

// Message returns the user-visible completion line.
func (r *ConversionResult) Message() string {
	if r.Kind == KindArchive && len(r.Documents) > 1 {
		return fmt.Sprintf("%d 件のファイルを処理しました。", len(r.Documents))
	}
	if len(r.Documents) == 1 {
		return fmt.Sprintf("処理が完了しました: %s", r.Documents[0].SourceName)
	}
	return fmt.Sprintf("処理が完了しました: %s", r.Source)
}

// ResultName returns the output file name for a source name:
// the directory and final extension are dropped and ResultPrefix is added.
// Leading dots do not start an extension, so ".txt" keeps its whole name.
func ResultName(sourceName string) string {
	base := path.Base(strings.ReplaceAll(sourceName, "\\", "/"))
	stem := strings.TrimSuffix(base, path.Ext(base))
	if strings.Trim(stem, ".") == "" {
		stem = base
	}
	return ResultPrefix + stem + TextSuffix
}
