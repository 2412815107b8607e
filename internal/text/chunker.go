package text

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidWindow = errors.New("chunk overlap must be smaller than chunk size")

// Chunk splits cleaned text into overlapping word windows of size words,
// advancing the window start by size-overlap each step. Windows holding
// minWords words or fewer are dropped, which discards short tail windows.
// The output is deterministic and ordered by document reading position.
func Chunk(text string, size, overlap, minWords int) ([]string, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: size %d", ErrInvalidWindow, size)
	}
	if overlap < 0 || overlap >= size {
		// A non-positive step would make the window loop forever.
		return nil, fmt.Errorf("%w: size %d, overlap %d", ErrInvalidWindow, size, overlap)
	}

	words := strings.Fields(text)
	step := size - overlap

	var chunks []string
	for i := 0; i < len(words); i += step {
		end := i + size
		if end > len(words) {
			end = len(words)
		}
		window := words[i:end]
		if len(window) > minWords {
			chunks = append(chunks, strings.Join(window, " "))
		}
	}

	return chunks, nil
}

// WordCount reports the whitespace-delimited word count of a chunk.
func WordCount(chunk string) int {
	return len(strings.Fields(chunk))
}
