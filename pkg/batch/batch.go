package batch

import "strings"

// DefaultSize is the chunk size used for bulk writes. SQLite bounds the
// number of bound parameters per statement, so every bulk upsert splits
// its input into chunks of at most this many rows.
const DefaultSize = 1000

// Chunks splits items into contiguous chunks of at most size elements,
// preserving order. Chunks are subslices sharing the input's backing
// array; nothing is copied, duplicated or dropped. The final chunk may
// be shorter. A non-positive size falls back to DefaultSize.
func Chunks[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = DefaultSize
	}

	if len(items) == 0 {
		return nil
	}

	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}

	return chunks
}

// Placeholders builds the VALUES fragment for a multi-row insert:
// "(?, ?), (?, ?)" for rows=2, cols=2. Generating the fragment here
// keeps every bulk statement fully parameterized instead of
// interpolating values into SQL at the call sites.
func Placeholders(rows, cols int) string {
	if rows <= 0 || cols <= 0 {
		return ""
	}

	row := "(" + strings.Repeat("?, ", cols-1) + "?)"

	var b strings.Builder
	b.Grow(rows*len(row) + (rows-1)*2)
	for i := 0; i < rows; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(row)
	}

	return b.String()
}
