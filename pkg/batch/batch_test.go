package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestChunks(t *testing.T) {
	testCases := []struct {
		name     string
		items    []int
		size     int
		expected [][]int
	}{
		{
			name:     "Empty input",
			items:    nil,
			size:     3,
			expected: nil,
		},
		{
			name:     "Single short chunk",
			items:    []int{1, 2},
			size:     3,
			expected: [][]int{{1, 2}},
		},
		{
			name:     "Exact multiple",
			items:    []int{1, 2, 3, 4},
			size:     2,
			expected: [][]int{{1, 2}, {3, 4}},
		},
		{
			name:     "Short final chunk",
			items:    []int{1, 2, 3, 4, 5},
			size:     2,
			expected: [][]int{{1, 2}, {3, 4}, {5}},
		},
		{
			name:     "Size one",
			items:    []int{1, 2, 3},
			size:     1,
			expected: [][]int{{1}, {2}, {3}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Chunks(tc.items, tc.size))
		})
	}
}

func TestChunksNonPositiveSizeUsesDefault(t *testing.T) {
	items := make([]int, DefaultSize+1)

	chunks := Chunks(items, 0)
	assert.Len(t, chunks, 2)
	assert.Len(t, chunks[0], DefaultSize)
	assert.Len(t, chunks[1], 1)

	chunks = Chunks(items, -5)
	assert.Len(t, chunks, 2)
}

// Concatenating the chunks must reproduce the input exactly, and no
// chunk may exceed the requested size.
func TestChunksProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		items := rapid.SliceOfN(rapid.Int(), 0, 500).Draw(t, "items")
		size := rapid.IntRange(1, 50).Draw(t, "size")

		chunks := Chunks(items, size)

		var rejoined []int
		for _, chunk := range chunks {
			if len(chunk) == 0 {
				t.Fatalf("empty chunk produced")
			}
			if len(chunk) > size {
				t.Fatalf("chunk of %d items exceeds size %d", len(chunk), size)
			}
			rejoined = append(rejoined, chunk...)
		}

		if len(rejoined) != len(items) {
			t.Fatalf("rejoined %d items, want %d", len(rejoined), len(items))
		}
		for i := range items {
			if rejoined[i] != items[i] {
				t.Fatalf("item %d changed: got %d, want %d", i, rejoined[i], items[i])
			}
		}
	})
}

func TestPlaceholders(t *testing.T) {
	testCases := []struct {
		name     string
		rows     int
		cols     int
		expected string
	}{
		{
			name:     "Single cell",
			rows:     1,
			cols:     1,
			expected: "(?)",
		},
		{
			name:     "Single row",
			rows:     1,
			cols:     3,
			expected: "(?, ?, ?)",
		},
		{
			name:     "Multiple rows",
			rows:     2,
			cols:     2,
			expected: "(?, ?), (?, ?)",
		},
		{
			name:     "Zero rows",
			rows:     0,
			cols:     2,
			expected: "",
		},
		{
			name:     "Zero cols",
			rows:     2,
			cols:     0,
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Placeholders(tc.rows, tc.cols))
		})
	}
}
