package domain

import "time"

// Chunk represents a derived, searchable fragment of a SourceFile as
// stored in the vector/chunk store. Chunks reference their source file
// weakly, by metadata file name rather than by id; the reference may be
// absent or stale.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// Content is the text content of this chunk.
	Content string

	// ChunkIndex is the ordinal position within the source file.
	ChunkIndex int

	// CreatedAt is when the chunk was produced.
	CreatedAt time.Time

	// Location optionally records where in the source file the chunk
	// came from. Nil when the worker did not report one.
	Location *ChunkLocation

	// FileName is the source file name recorded in chunk metadata.
	// Empty when the worker omitted it; possibly a sanitised variant of
	// the blob store name.
	FileName string
}

// ChunkLocation is an optional page/line range within the source file.
type ChunkLocation struct {
	PageStart int
	PageEnd   int
	LineStart int
	LineEnd   int
}
