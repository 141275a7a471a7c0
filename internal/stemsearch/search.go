package stemsearch

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	pkgerrors "github.com/Adithya-Monish-Kumar-K/Corpus-Retrieval-Pipeline/pkg/errors"
)

// Config holds searcher parameters.
type Config struct {
	TokensPath string
	TopK       int
	EnableStem bool
	ExactBonus float64
}

// tfMap maps docId → term frequency.
type tfMap map[int]int

// CorpusIndex holds the dual exact/stemmed in-memory term-frequency indexes.
type CorpusIndex struct {
	stemIndex  map[string]tfMap
	exactIndex map[string]tfMap
	allDocs    map[int]struct{}
}

// NumDocs returns the number of distinct documents seen.
func (ci *CorpusIndex) NumDocs() int { return len(ci.allDocs) }

// BuildIndex reads a "docId\tterm" token file into exact and stemmed TF
// indexes. Terms that normalize below 2 bytes or above 64 bytes are dropped.
func BuildIndex(cfg Config) (*CorpusIndex, error) {
	f, err := os.Open(cfg.TokensPath)
	if err != nil {
		return nil, pkgerrors.Newf(pkgerrors.ErrIO, "opening tokens file %s: %v", cfg.TokensPath, err)
	}
	defer f.Close()

	ci := &CorpusIndex{
		stemIndex:  make(map[string]tfMap),
		exactIndex: make(map[string]tfMap),
		allDocs:    make(map[int]struct{}),
	}

	var lines, kept int64
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		lines++
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		doc, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}

		exact := normalizeToken(fields[1])
		if len(exact) < 2 || len(exact) > 64 {
			continue
		}
		stem := StemTerm(exact, cfg.EnableStem)

		ci.allDocs[doc] = struct{}{}
		addTF(ci.exactIndex, exact, doc)
		addTF(ci.stemIndex, stem, doc)
		kept++
	}
	if err := sc.Err(); err != nil {
		return nil, pkgerrors.Newf(pkgerrors.ErrIO, "reading tokens file %s: %v", cfg.TokensPath, err)
	}

	slog.Default().With("component", "stemsearch").Info("index built",
		"docs", len(ci.allDocs),
		"lines", lines,
		"kept", kept,
		"stem_terms", len(ci.stemIndex),
		"exact_terms", len(ci.exactIndex),
	)
	return ci, nil
}

func addTF(idx map[string]tfMap, term string, doc int) {
	m, ok := idx[term]
	if !ok {
		m = make(tfMap)
		idx[term] = m
	}
	m[doc]++
}

func tfWeight(tf int) float64 {
	return 1.0 + math.Log(float64(tf))
}

func idfWeight(n, df int) float64 {
	return math.Log(float64(n+1)/float64(df+1)) + 1.0
}

// Hit is one scored document.
type Hit struct {
	Doc   int
	Score float64
}

// Search scores documents for a whitespace-separated query. Candidates come
// from the stemmed index, or from the exact index when cfg.EnableStem is
// false; each query term contributes (1+ln tf)·idf, and each exact query
// term adds the configured bonus to documents that already scored.
func (ci *CorpusIndex) Search(cfg Config, queryText string) []Hit {
	n := len(ci.allDocs)
	if n == 0 {
		return nil
	}
	candidates := ci.stemIndex
	if !cfg.EnableStem {
		candidates = ci.exactIndex
	}

	var qExact, qStem []string
	for _, t := range strings.Fields(queryText) {
		ex := normalizeToken(t)
		if len(ex) < 2 || len(ex) > 64 {
			continue
		}
		qExact = append(qExact, ex)
		qStem = append(qStem, StemTerm(ex, cfg.EnableStem))
	}

	score := make(map[int]float64)
	for _, st := range qStem {
		postings, ok := candidates[st]
		if !ok {
			continue
		}
		idf := idfWeight(n, len(postings))
		for doc, tf := range postings {
			score[doc] += tfWeight(tf) * idf
		}
	}

	if cfg.ExactBonus != 0 {
		for _, ex := range qExact {
			postings, ok := ci.exactIndex[ex]
			if !ok {
				continue
			}
			for doc := range postings {
				if _, scored := score[doc]; scored {
					score[doc] += cfg.ExactBonus
				}
			}
		}
	}

	hits := make([]Hit, 0, len(score))
	for doc, s := range score {
		hits = append(hits, Hit{Doc: doc, Score: s})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Doc < hits[j].Doc
	})
	if len(hits) > cfg.TopK {
		hits = hits[:cfg.TopK]
	}
	return hits
}

// Compare runs every query twice — stemming off, then on — and writes a
// "query\tmode\trank\tdoc\tscore" TSV for side-by-side evaluation. The
// stemmed pass uses the stem index as BuildIndex built it, so for an index
// built with EnableStem false that index holds unstemmed terms.
func (ci *CorpusIndex) Compare(cfg Config, queries io.Reader, out io.Writer) error {
	bw := bufio.NewWriter(out)
	if _, err := fmt.Fprintln(bw, "query\tmode\trank\tdoc\tscore"); err != nil {
		return fmt.Errorf("writing compare output: %w", err)
	}

	sc := bufio.NewScanner(queries)
	for sc.Scan() {
		qline := strings.TrimSpace(sc.Text())
		if qline == "" {
			continue
		}

		noStem := cfg
		noStem.EnableStem = false
		for r, h := range ci.Search(noStem, qline) {
			fmt.Fprintf(bw, "%s\tno_stem\t%d\t%d\t%g\n", qline, r+1, h.Doc, h.Score)
		}

		withStem := cfg
		withStem.EnableStem = true
		for r, h := range ci.Search(withStem, qline) {
			fmt.Fprintf(bw, "%s\tstem\t%d\t%d\t%g\n", qline, r+1, h.Doc, h.Score)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading compare queries: %w", err)
	}
	return bw.Flush()
}
