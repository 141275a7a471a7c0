package benchmark

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Corpus-Retrieval-Pipeline/internal/tokenizer"
)

var sampleDocs = map[string]string{
	"short": `[{"parsed_text":"The quick brown fox jumps over the lazy dog"}]`,
	"medium": `[{"parsed_text":"Information retrieval pipelines tokenize raw JSON corpora into
        line-delimited token streams. The tokenizer walks the bytes with a relaxed scanner,
        decodes escapes including surrogate pairs, and classifies code points by fixed
        Latin and Cyrillic ranges. Hyphenated compounds such as state-of-the-art survive
        as single tokens while doubled hyphens split the run."}]`,
	"cyrillic": `[{"parsed_text":"Поисковые системы обрабатывают запросы по обратному индексу.
        Каждый термин отображается на отсортированный список документов, и операции
        пересечения выполняются линейным слиянием."}]`,
}

func BenchmarkScanner(b *testing.B) {
	for name, doc := range sampleDocs {
		data := []byte(doc)
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(data)))
			s := tokenizer.NewScanner("parsed_text", 0, true)
			for i := 0; i < b.N; i++ {
				_, err := s.Run(data, nil)
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkScannerVaryingSize(b *testing.B) {
	sizes := []int{1, 10, 100, 1000}
	base := `{"parsed_text":"inverted index boolean query evaluation merge"},`
	for _, size := range sizes {
		doc := "[" + strings.TrimSuffix(strings.Repeat(base, size), ",") + "]"
		data := []byte(doc)
		b.Run(fmt.Sprintf("docs_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(data)))
			s := tokenizer.NewScanner("parsed_text", 0, true)
			for i := 0; i < b.N; i++ {
				_, err := s.Run(data, nil)
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
