package driven

// ArchiveCodec reads uploaded archives and packs converted files.
type ArchiveCodec interface {
	// Open parses an archive held in memory.
	// Returns domain.ErrInvalidArchive if content is not a readable archive
	// and domain.ErrArchiveTooLarge if it lists too many members.
	Open(content []byte) (ArchiveReader, error)

	// Pack builds a new archive containing files in the given order.
	Pack(files []ArchiveFile) ([]byte, error)
}

// ArchiveReader gives indexed access to the members of an opened archive.
type ArchiveReader interface {
	// Names returns member names in listing order.
	// Duplicate names are possible; address members by index.
	Names() []string

	// Read returns the uncompressed content of the member at index i.
	// Returns an error wrapping domain.ErrEntryTooLarge when the member
	// exceeds the per-entry cap, or domain.ErrArchiveTooLarge once the
	// members read so far would exceed the archive-wide cap.
	Read(i int) ([]byte, error)
}

// ArchiveFile is one member of an archive to be packed.
type ArchiveFile struct {
	Name    string
	Content []byte
}
