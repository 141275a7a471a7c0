// Package indexer builds the binary inverted index from a token file: it
// parses "docId\tterm" records, lowercases terms, sorts the (term, docId)
// pairs, assembles per-term posting lists, and derives the forward table from
// an optional URL source.
package indexer

import (
	"bufio"
	"log/slog"
	"os"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/Corpus-Retrieval-Pipeline/internal/indexfile"
	pkgerrors "github.com/Adithya-Monish-Kumar-K/Corpus-Retrieval-Pipeline/pkg/errors"
)

type pair struct {
	term string
	doc  uint32
}

func pairLess(a, b pair) bool {
	if a.term != b.term {
		return a.term < b.term
	}
	return a.doc < b.doc
}

// Builder accumulates a token file into the in-memory structures serialised
// by indexfile.Write.
type Builder struct {
	// SortParallelism is the number of goroutines used for the pair sort.
	// 1 sorts in place on the calling goroutine; the parallel path sorts
	// chunks concurrently and merges, producing the identical ordering.
	SortParallelism int

	logger *slog.Logger
}

func NewBuilder(sortParallelism int) *Builder {
	if sortParallelism < 1 {
		sortParallelism = 1
	}
	return &Builder{
		SortParallelism: sortParallelism,
		logger:          slog.Default().With("component", "index-builder"),
	}
}

// Result holds everything the index file serialises, plus derived counters.
type Result struct {
	Meta     indexfile.Meta
	Dict     []indexfile.DictEntry
	Postings []uint32
	Docs     []indexfile.DocInfo
}

// Build reads the token file at tokensPath and produces a complete index.
// When urlJSONPath is non-empty, url_norm values are extracted from it
// positionally for the forward table. Malformed token lines are skipped; an
// input with no valid lines at all is an error.
func (b *Builder) Build(tokensPath, urlJSONPath string) (*Result, error) {
	start := time.Now()

	f, err := os.Open(tokensPath)
	if err != nil {
		return nil, pkgerrors.Newf(pkgerrors.ErrIO, "opening tokens file %s: %v", tokensPath, err)
	}
	defer f.Close()

	var (
		pairs       []pair
		maxDoc      uint32
		totalTokens uint64
		sumTermLen  uint64
	)

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		docID, rawTerm, ok := parseTokenLine(sc.Bytes())
		if !ok {
			continue
		}
		term := toLowerASCII(rawTerm)
		pairs = append(pairs, pair{term: term, doc: docID})
		if docID > maxDoc {
			maxDoc = docID
		}
		totalTokens++
		sumTermLen += uint64(len(term))
	}
	if err := sc.Err(); err != nil {
		return nil, pkgerrors.Newf(pkgerrors.ErrIO, "reading tokens file %s: %v", tokensPath, err)
	}
	if len(pairs) == 0 {
		return nil, pkgerrors.Newf(pkgerrors.ErrData, "no tokens parsed from %s", tokensPath)
	}

	docsCount := maxDoc + 1

	var urls []string
	if urlJSONPath != "" {
		data, err := os.ReadFile(urlJSONPath)
		if err != nil {
			return nil, pkgerrors.Newf(pkgerrors.ErrIO, "opening JSON %s: %v", urlJSONPath, err)
		}
		urls = extractURLNorms(data)
		if len(urls) == 0 {
			b.logger.Warn("no url_norm found in JSON, using placeholders", "path", urlJSONPath)
		}
	}
	docs := buildForward(docsCount, urls)

	b.sortPairs(pairs)

	dict, postings := assemblePostings(pairs)

	res := &Result{
		Meta: indexfile.Meta{
			DocsCount:   docsCount,
			TotalTokens: totalTokens,
			UniqueTerms: uint32(len(dict)),
			AvgTermLen:  float64(sumTermLen) / float64(totalTokens),
			BuildMS:     float64(time.Since(start).Microseconds()) / 1000.0,
		},
		Dict:     dict,
		Postings: postings,
		Docs:     docs,
	}
	return res, nil
}

// assemblePostings groups the sorted pair run by term. The first occurrence
// of each distinct docId within a term group is appended to the postings
// blob; df counts distinct docIds; postings_off is the byte offset of the
// term's first docId in the blob.
func assemblePostings(pairs []pair) ([]indexfile.DictEntry, []uint32) {
	var dict []indexfile.DictEntry
	postings := make([]uint32, 0, len(pairs))

	i := 0
	for i < len(pairs) {
		term := pairs[i].term
		off := uint64(len(postings)) * 4

		var df uint32
		haveLast := false
		var lastDoc uint32
		for i < len(pairs) && pairs[i].term == term {
			d := pairs[i].doc
			if !haveLast || d != lastDoc {
				postings = append(postings, d)
				lastDoc = d
				haveLast = true
				df++
			}
			i++
		}

		dict = append(dict, indexfile.DictEntry{Term: term, DF: df, PostingsOff: off})
	}
	return dict, postings
}

// sortPairs orders pairs by raw term bytes, then docId. With parallelism > 1
// the slice is split into chunks sorted concurrently and merged pairwise;
// the result is identical to the sequential sort.
func (b *Builder) sortPairs(pairs []pair) {
	p := b.SortParallelism
	if p <= 1 || len(pairs) < 2*p {
		sortChunk(pairs)
		return
	}

	chunkSize := (len(pairs) + p - 1) / p
	var chunks [][]pair
	for off := 0; off < len(pairs); off += chunkSize {
		end := off + chunkSize
		if end > len(pairs) {
			end = len(pairs)
		}
		chunks = append(chunks, pairs[off:end])
	}

	var g errgroup.Group
	for _, c := range chunks {
		g.Go(func() error {
			sortChunk(c)
			return nil
		})
	}
	g.Wait()

	for len(chunks) > 1 {
		merged := make([][]pair, 0, (len(chunks)+1)/2)
		for i := 0; i < len(chunks); i += 2 {
			if i+1 == len(chunks) {
				merged = append(merged, chunks[i])
				continue
			}
			merged = append(merged, mergePairs(chunks[i], chunks[i+1]))
		}
		chunks = merged
	}
	copy(pairs, chunks[0])
}

// sortChunk totally orders distinct pairs; equal (term, doc) duplicates are
// interchangeable, so an unstable sort is fine.
func sortChunk(c []pair) {
	sort.Slice(c, func(i, j int) bool { return pairLess(c[i], c[j]) })
}

func mergePairs(a, b []pair) []pair {
	out := make([]pair, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if pairLess(b[j], a[i]) {
			out = append(out, b[j])
			j++
		} else {
			out = append(out, a[i])
			i++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}
