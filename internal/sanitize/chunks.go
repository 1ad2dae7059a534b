package sanitize

// Chunks holds the rune index at which each chunk of lines ends. A regex
// scanner that hits an engine error gives up on the current chunk only and
// resumes at the next boundary.
type Chunks []int

// ChunkBounds splits runes into chunks of the given number of lines. The
// last entry is always len(runes).
func ChunkBounds(runes []rune, lines int) Chunks {
	if lines < 1 {
		lines = 1
	}
	bounds := Chunks{}
	seen := 0
	for i, r := range runes {
		if r != '\n' {
			continue
		}
		seen++
		if seen%lines == 0 && i+1 < len(runes) {
			bounds = append(bounds, i+1)
		}
	}
	return append(bounds, len(runes))
}

// After returns the end of the chunk containing pos.
func (c Chunks) After(pos int) int {
	for _, b := range c {
		if b > pos {
			return b
		}
	}
	return c[len(c)-1]
}

// ByteOffsets maps each rune index of text (and one past the end) to its
// byte offset. n is the rune count of text.
func ByteOffsets(text string, n int) []int {
	offs := make([]int, 0, n+1)
	for i := range text {
		offs = append(offs, i)
	}
	return append(offs, len(text))
}
