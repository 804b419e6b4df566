package extract

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// SliceAfterLabel returns the text following the first occurrence of label
// in blob, trimmed of surrounding whitespace. The value runs to the end of
// blob, not to the next label. ok is false when label does not occur.
//
// Both strings are compared in NFC so "Teléfono" matches whether the page
// encodes the accent as one rune or as a combining sequence. The value keeps
// the bytes of the page.
func SliceAfterLabel(blob, label string) (value string, ok bool) {
	if label == "" {
		return "", false
	}

	normBlob := norm.NFC.String(blob)
	label = norm.NFC.String(label)

	i := strings.Index(normBlob, label)
	if i < 0 {
		return "", false
	}

	end := i + len(label)
	if j, ok := originalOffset(blob, end); ok {
		return strings.TrimSpace(blob[j:]), true
	}
	// The label ends inside a combining sequence of the page.
	return strings.TrimSpace(normBlob[end:]), true
}

// originalOffset maps an offset in the NFC form of s back to s. ok is false
// when the offset falls inside a normalization segment.
func originalOffset(s string, nfcOffset int) (int, bool) {
	n := 0
	for pos := 0; ; {
		if n == nfcOffset {
			return pos, true
		}
		if n > nfcOffset || pos >= len(s) {
			return 0, false
		}
		next := pos + norm.NFC.NextBoundaryInString(s[pos:], true)
		n += len(norm.NFC.String(s[pos:next]))
		pos = next
	}
}
