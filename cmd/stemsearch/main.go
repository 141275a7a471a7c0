// Command stemsearch is the stemmed TF-IDF retrieval mode: it indexes a
// token file in memory and scores documents for free-text queries, with an
// exact-match bonus on top of stemmed matching.
//
// Usage:
//
//	stemsearch --tokens tokens.txt [--topk 10] [--bonus 0.5] [--no-stem]
//	           [--cache terms.db] ["query text"]
//	stemsearch --tokens tokens.txt --compare queries.txt [--out compare.tsv]
//
// With a trailing query the tool scores once and exits; with --compare it
// writes a stem/no-stem side-by-side TSV; otherwise it reads queries
// interactively.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Corpus-Retrieval-Pipeline/internal/stemsearch"
	"github.com/Adithya-Monish-Kumar-K/Corpus-Retrieval-Pipeline/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Corpus-Retrieval-Pipeline/pkg/logger"
)

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "ERROR: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	fs := flag.NewFlagSet("stemsearch", flag.ContinueOnError)
	tokensPath := fs.String("tokens", "", "path to the token file (default tokens.txt)")
	topK := fs.Int("topk", -1, "number of hits to return")
	bonus := fs.Float64("bonus", -1, "score bonus for exact (unstemmed) matches")
	noStem := fs.Bool("no-stem", false, "disable stemming")
	comparePath := fs.String("compare", "", "run queries from this file in both modes")
	outPath := fs.String("out", "compare.tsv", "output path for --compare")
	cachePath := fs.String("cache", "", "persist the term-frequency index to this SQLite file")
	configPath := fs.String("config", "", "path to pipeline config file")

	fs.SetOutput(io.Discard)
	if err := fs.Parse(os.Args[1:]); err != nil {
		fatal("%v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal("failed to load config: %v", err)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if *tokensPath == "" {
		*tokensPath = "tokens.txt"
	}
	if *topK < 0 {
		*topK = cfg.StemSearch.TopK
	}
	if *bonus < 0 {
		*bonus = cfg.StemSearch.ExactBonus
	}
	if *cachePath == "" {
		*cachePath = cfg.StemSearch.CachePath
	}
	enableStem := cfg.StemSearch.Stemming && !*noStem

	searchCfg := stemsearch.Config{
		TokensPath: *tokensPath,
		TopK:       *topK,
		EnableStem: enableStem,
		ExactBonus: *bonus,
	}

	if _, err := os.Stat(*tokensPath); err != nil {
		fatal("tokens file not found: %s", *tokensPath)
	}

	ci, err := stemsearch.BuildIndex(searchCfg)
	if err != nil {
		fatal("%v", err)
	}

	if *cachePath != "" {
		store := stemsearch.NewStore(*cachePath)
		if err := store.Save(ci); err != nil {
			fatal("%v", err)
		}
		slog.Info("term cache written", "path", *cachePath)
	}

	if *comparePath != "" {
		qf, err := os.Open(*comparePath)
		if err != nil {
			fatal("compare queries file not found: %s", *comparePath)
		}
		defer qf.Close()
		out, err := os.Create(*outPath)
		if err != nil {
			fatal("cannot open output file: %s", *outPath)
		}
		defer out.Close()
		if err := ci.Compare(searchCfg, qf, out); err != nil {
			fatal("%v", err)
		}
		slog.Info("comparison written", "path", *outPath)
		return
	}

	if query := strings.Join(fs.Args(), " "); query != "" {
		printHits(ci.Search(searchCfg, query))
		return
	}

	runInteractive(ci, searchCfg)
}

func runInteractive(ci *stemsearch.CorpusIndex, cfg stemsearch.Config) {
	fmt.Fprintf(os.Stderr,
		"Interactive search.\nTokens: %s\nStem: %v, exact_bonus=%g, topk=%d\nType query and press Enter. Empty line or :q to quit.\n",
		cfg.TokensPath, cfg.EnableStem, cfg.ExactBonus, cfg.TopK)

	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !sc.Scan() {
			break
		}
		q := strings.TrimSpace(sc.Text())
		if q == "" || q == ":q" || q == "quit" || q == "exit" {
			break
		}
		printHits(ci.Search(cfg, q))
	}
}

func printHits(hits []stemsearch.Hit) {
	if len(hits) == 0 {
		fmt.Println("(no results)")
		return
	}
	for i, h := range hits {
		fmt.Printf("%d. doc=%d\tscore=%g\n", i+1, h.Doc, h.Score)
	}
}
