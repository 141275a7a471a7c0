// Command zipf fits a rank-frequency curve to a token file and writes the
// per-rank table plus a fit summary.
//
// Usage:
//
//	zipf [tokens.txt [zipf.tsv [zipf_summary.txt]]]
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Adithya-Monish-Kumar-K/Corpus-Retrieval-Pipeline/internal/zipf"
	"github.com/Adithya-Monish-Kumar-K/Corpus-Retrieval-Pipeline/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Corpus-Retrieval-Pipeline/pkg/logger"
)

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "ERROR: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	fs := flag.NewFlagSet("zipf", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to pipeline config file")
	fs.SetOutput(io.Discard)
	if err := fs.Parse(os.Args[1:]); err != nil {
		fatal("%v", err)
	}

	inPath := "tokens.txt"
	outTSV := "zipf.tsv"
	outSum := "zipf_summary.txt"
	if fs.NArg() >= 1 {
		inPath = fs.Arg(0)
	}
	if fs.NArg() >= 2 {
		outTSV = fs.Arg(1)
	}
	if fs.NArg() >= 3 {
		outSum = fs.Arg(2)
	}
	if fs.NArg() > 3 {
		fatal("unexpected argument: %s", fs.Arg(3))
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal("failed to load config: %v", err)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	in, err := os.Open(inPath)
	if err != nil {
		fatal("cannot open %s: %v", inPath, err)
	}
	defer in.Close()

	fit, err := zipf.Analyze(in)
	if err != nil {
		fatal("%v", err)
	}

	tsv, err := os.Create(outTSV)
	if err != nil {
		fatal("cannot create %s: %v", outTSV, err)
	}
	defer tsv.Close()
	if err := fit.WriteTSV(tsv); err != nil {
		fatal("writing %s: %v", outTSV, err)
	}

	sum, err := os.Create(outSum)
	if err != nil {
		fatal("cannot create %s: %v", outSum, err)
	}
	defer sum.Close()
	if err := fit.WriteSummary(sum, inPath); err != nil {
		fatal("writing %s: %v", outSum, err)
	}

	slog.Info("zipf fit written",
		"tsv", outTSV,
		"summary", outSum,
		"tokens", fit.TotalTokens,
		"vocab", fit.Vocab,
		"s", fmt.Sprintf("%.6f", fit.S),
		"c", fmt.Sprintf("%.6f", fit.C),
	)
}
