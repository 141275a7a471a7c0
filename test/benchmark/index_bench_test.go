package benchmark

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Corpus-Retrieval-Pipeline/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Corpus-Retrieval-Pipeline/internal/indexfile"
)

func writeSyntheticTokens(b *testing.B, docs, tokensPerDoc int) string {
	b.Helper()
	var sb strings.Builder
	for d := 0; d < docs; d++ {
		for t := 0; t < tokensPerDoc; t++ {
			fmt.Fprintf(&sb, "%d\tterm%04d\n", d, (d*tokensPerDoc+t)%500)
		}
	}
	path := filepath.Join(b.TempDir(), "tokens.txt")
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		b.Fatal(err)
	}
	return path
}

func BenchmarkBuild(b *testing.B) {
	path := writeSyntheticTokens(b, 1000, 50)
	for _, parallelism := range []int{1, 2, 4} {
		b.Run(fmt.Sprintf("parallelism_%d", parallelism), func(b *testing.B) {
			b.ReportAllocs()
			builder := indexer.NewBuilder(parallelism)
			for i := 0; i < b.N; i++ {
				if _, err := builder.Build(path, ""); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkWriteIndex(b *testing.B) {
	path := writeSyntheticTokens(b, 1000, 50)
	res, err := indexer.NewBuilder(1).Build(path, "")
	if err != nil {
		b.Fatal(err)
	}
	outPath := filepath.Join(b.TempDir(), "index.bin")

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := indexfile.Write(outPath, res.Meta, res.Dict, res.Postings, res.Docs); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLoadIndex(b *testing.B) {
	path := writeSyntheticTokens(b, 1000, 50)
	res, err := indexer.NewBuilder(1).Build(path, "")
	if err != nil {
		b.Fatal(err)
	}
	outPath := filepath.Join(b.TempDir(), "index.bin")
	if err := indexfile.Write(outPath, res.Meta, res.Dict, res.Postings, res.Docs); err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := indexfile.Load(outPath); err != nil {
			b.Fatal(err)
		}
	}
}
