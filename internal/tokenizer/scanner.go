package tokenizer

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"
)

// Stats accumulates the counters reported by a tokenizer run.
type Stats struct {
	DocsWithField uint64
	Tokens        uint64
	TokenChars    uint64
	TextBytes     uint64
}

// AvgTokenLen is the mean base-character length of emitted tokens.
func (s Stats) AvgTokenLen() float64 {
	if s.Tokens == 0 {
		return 0
	}
	return float64(s.TokenChars) / float64(s.Tokens)
}

// Scanner extracts tokens from the values of a configured JSON field.
//
// The scanner is deliberately relaxed: it does not build a JSON tree. It
// walks the bytes looking for string literals, and whenever a decoded string
// is followed by ':' and another string, treats the first as a key. A failed
// string attempt makes the scan resume one byte after the opening quote,
// which keeps the tokenizer robust to truncated input.
type Scanner struct {
	Field     string
	LogEvery  int
	WithDocID bool

	logger *slog.Logger
}

// NewScanner returns a Scanner for the given field name.
func NewScanner(field string, logEvery int, withDocID bool) *Scanner {
	return &Scanner{
		Field:     field,
		LogEvery:  logEvery,
		WithDocID: withDocID,
		logger:    slog.Default().With("component", "tokenizer"),
	}
}

// Run scans the JSON buffer and writes the token stream to out (pass nil to
// only collect statistics). Each field match is assigned the next docId,
// starting at 0. Write failures on out are fatal.
func (s *Scanner) Run(json []byte, out io.Writer) (Stats, error) {
	var st Stats
	var docID uint64
	start := time.Now()

	// Reused across tokens; grows to the longest "docid\ttoken\n" record.
	record := make([]byte, 0, 64)

	var writeErr error
	emit := func(token []byte, baseLen uint64) {
		st.Tokens++
		st.TokenChars += baseLen
		if out == nil || writeErr != nil {
			return
		}
		record = record[:0]
		if s.WithDocID {
			record = strconv.AppendUint(record, docID, 10)
			record = append(record, '\t')
		}
		record = append(record, token...)
		record = append(record, '\n')
		if _, err := out.Write(record); err != nil {
			writeErr = fmt.Errorf("writing token output: %w", err)
		}
	}

	i := 0
	for i < len(json) {
		if json[i] != '"' {
			i++
			continue
		}

		save := i
		key, next, ok := parseJSONString(json, i)
		if !ok {
			i = save + 1
			continue
		}
		i = next

		for i < len(json) && isWS(json[i]) {
			i++
		}
		if i >= len(json) || json[i] != ':' {
			continue
		}
		i++
		for i < len(json) && isWS(json[i]) {
			i++
		}

		if string(key) == s.Field && i < len(json) && json[i] == '"' {
			vpos := i
			val, next, ok := parseJSONString(json, i)
			if !ok {
				i = vpos + 1
				continue
			}
			i = next

			st.DocsWithField++
			st.TextBytes += uint64(len(val))
			tokenizeValue(val, emit)
			if writeErr != nil {
				return st, writeErr
			}
			docID++

			if s.LogEvery > 0 && st.DocsWithField%uint64(s.LogEvery) == 0 {
				s.logProgress(st, start)
			}
		}
	}

	return st, nil
}

func (s *Scanner) logProgress(st Stats, start time.Time) {
	elapsed := time.Since(start)
	kb := float64(st.TextBytes) / 1024.0
	kbps := 0.0
	if sec := elapsed.Seconds(); sec > 0 {
		kbps = kb / sec
	}
	s.logger.Info("progress",
		"docs", st.DocsWithField,
		"kb", fmt.Sprintf("%.3f", kb),
		"time_ms", fmt.Sprintf("%.3f", float64(elapsed.Microseconds())/1000.0),
		"kbps", fmt.Sprintf("%.3f", kbps),
		"tokens", st.Tokens,
		"avg_len", fmt.Sprintf("%.3f", st.AvgTokenLen()),
	)
}
