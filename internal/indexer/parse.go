package indexer

import "math"

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == '\v'
}

func toLowerASCII(s []byte) string {
	lower := make([]byte, len(s))
	for i, c := range s {
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		lower[i] = c
	}
	return string(lower)
}

// parseTokenLine parses one "docId<ws>term" record. A line is valid if it
// starts (after optional whitespace) with a decimal integer that fits in u32,
// followed by whitespace and a non-empty term; columns past the term are
// ignored. Overflowing docIds invalidate the line.
func parseTokenLine(line []byte) (docID uint32, term []byte, ok bool) {
	i := 0
	for i < len(line) && isSpace(line[i]) {
		i++
	}
	if i >= len(line) {
		return 0, nil, false
	}

	var v uint64
	any := false
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		any = true
		d := uint64(line[i] - '0')
		if v > (math.MaxUint64-d)/10 {
			return 0, nil, false
		}
		v = v*10 + d
		i++
	}
	if !any || v > math.MaxUint32 {
		return 0, nil, false
	}

	if i >= len(line) || !isSpace(line[i]) {
		return 0, nil, false
	}
	for i < len(line) && isSpace(line[i]) {
		i++
	}
	if i >= len(line) {
		return 0, nil, false
	}

	start := i
	for i < len(line) && !isSpace(line[i]) {
		i++
	}
	return uint32(v), line[start:i], true
}
