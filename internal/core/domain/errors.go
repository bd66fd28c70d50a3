package domain

import "errors"

// Domain errors represent conversion failures.
// Adapters translate library errors into these at the boundary.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an upload that is neither a text file nor an archive.
	ErrUnsupportedType = errors.New("unsupported type")

	// Archive Errors.

	// ErrInvalidArchive indicates the upload could not be opened as a zip archive.
	ErrInvalidArchive = errors.New("invalid archive")

	// ErrEmptyArchive indicates the archive holds no text entries.
	// No artifact is produced.
	ErrEmptyArchive = errors.New("archive contains no text files")

	// ErrEntryTooLarge indicates an archive entry exceeds the configured size cap.
	ErrEntryTooLarge = errors.New("archive entry too large")

	// ErrArchiveTooLarge indicates the archive lists too many members or
	// inflates past the configured total size. The whole upload is rejected.
	ErrArchiveTooLarge = errors.New("archive too large")

	// ErrNoConvertibleEntries indicates every text entry in the archive failed to read.
	ErrNoConvertibleEntries = errors.New("no archive entry could be converted")

	// Configuration Errors.

	// ErrInvalidSettings indicates the configuration failed validation.
	ErrInvalidSettings = errors.New("invalid settings")
)
