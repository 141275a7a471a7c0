package benchmark

import (
	"fmt"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Corpus-Retrieval-Pipeline/internal/indexfile"
	"github.com/Adithya-Monish-Kumar-K/Corpus-Retrieval-Pipeline/internal/query"
)

// syntheticIndex builds an in-memory index with evenly spread posting lists.
func syntheticIndex(docsCount uint32, termCount int) *indexfile.Index {
	idx := &indexfile.Index{}
	idx.Meta.DocsCount = docsCount

	for t := 0; t < termCount; t++ {
		stride := uint32(t%7 + 1)
		var list []uint32
		for d := uint32(t % 3); d < docsCount; d += stride {
			list = append(list, d)
		}
		idx.Dict = append(idx.Dict, indexfile.DictEntry{
			Term:        fmt.Sprintf("term%06d", t),
			DF:          uint32(len(list)),
			PostingsOff: uint64(len(idx.Postings)) * 4,
		})
		idx.Postings = append(idx.Postings, list...)
	}
	idx.Docs = make([]indexfile.DocInfo, docsCount)
	for d := range idx.Docs {
		idx.Docs[d] = indexfile.DocInfo{
			URL:   fmt.Sprintf("https://example.com/doc/%d", d),
			Title: fmt.Sprintf("Document %d", d),
		}
	}
	return idx
}

func BenchmarkEvaluate(b *testing.B) {
	engine := query.NewEngine(syntheticIndex(100000, 1000))

	queries := map[string]string{
		"single_term":   "term000001",
		"and":           "term000001 && term000002",
		"or":            "term000001 || term000002",
		"not":           "term000001 && !term000002",
		"parenthesized": "(term000001 || term000002) && !(term000003 term000004)",
	}
	for name, q := range queries {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := engine.Evaluate(q); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkEvaluateParallel(b *testing.B) {
	engine := query.NewEngine(syntheticIndex(100000, 1000))
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := engine.Evaluate("term000001 && !term000002"); err != nil {
				b.Fatal(err)
			}
		}
	})
}
