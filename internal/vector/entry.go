package vector

import "turath/internal/text"

// Entry is one chunk as stored in the index: id, vector, passage text and
// a copy of the parent document's metadata. Upserting an existing id
// replaces the whole tuple.
type Entry struct {
	ID     string
	Vector []float32
	Text   string
	Meta   text.Metadata
}

// Hit is one nearest-neighbor result carrying the index-native distance.
// Similarity judgments belong to the relevance gate, not the index.
type Hit struct {
	Text     string
	Meta     text.Metadata
	Distance float64
}
