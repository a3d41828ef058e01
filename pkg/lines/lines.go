// Package lines converts 1-based line numbers into character offsets.
// Range resolution operates on raw text so it is independent of, and runs
// before, any structural parsing.
package lines

// Count returns the number of 1-based lines in text. A trailing newline
// starts a final empty line, matching document line counting in editors.
func Count(text string) int {
	n := 1
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			n++
		}
	}
	return n
}

// StartOffset returns the offset of the first character of the given
// 1-based line. If line exceeds the number of lines in text, the result is
// clamped to len(text).
func StartOffset(text string, line int) int {
	currentLine := 1
	offset := 0

	for currentLine < line && offset < len(text) {
		if text[offset] == '\n' {
			currentLine++
		}
		offset++
	}
	return offset
}

// EndOffset returns the offset of the newline terminating the given
// 1-based line, or len(text) when the line is the last (unterminated) one.
func EndOffset(text string, line int) int {
	currentLine := 1

	for offset := 0; offset < len(text); offset++ {
		if text[offset] == '\n' {
			if currentLine == line {
				return offset
			}
			currentLine++
		}
	}
	return len(text)
}
