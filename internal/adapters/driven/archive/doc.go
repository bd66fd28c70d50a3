// Package archive provides the zip implementation of driven.ArchiveCodec.
//
// Archives are read and written entirely in memory. Member order is
// preserved from the source listing so converted output is deterministic.
package archive
