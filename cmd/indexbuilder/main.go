// Command indexbuilder turns a token file into a single-file binary inverted
// index.
//
// Usage:
//
//	indexbuilder [--config pipeline.yaml] [--metrics metrics.prom]
//	             <tokens.txt> <index.bin> [<documents.json>]
//
// The optional documents.json supplies url_norm values for the forward table.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Adithya-Monish-Kumar-K/Corpus-Retrieval-Pipeline/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Corpus-Retrieval-Pipeline/internal/indexfile"
	"github.com/Adithya-Monish-Kumar-K/Corpus-Retrieval-Pipeline/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Corpus-Retrieval-Pipeline/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Corpus-Retrieval-Pipeline/pkg/metrics"
)

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "ERROR: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	fs := flag.NewFlagSet("indexbuilder", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to pipeline config file")
	metricsPath := fs.String("metrics", "", "write Prometheus textfile metrics to this path")

	fs.SetOutput(io.Discard)
	if err := fs.Parse(os.Args[1:]); err != nil {
		fatal("%v", err)
	}
	if fs.NArg() < 2 || fs.NArg() > 3 {
		fatal("usage: indexbuilder <tokens.txt> <index.bin> [<documents.json>]")
	}
	tokensPath := fs.Arg(0)
	outPath := fs.Arg(1)
	urlJSONPath := ""
	if fs.NArg() == 3 {
		urlJSONPath = fs.Arg(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal("failed to load config: %v", err)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	if *metricsPath == "" && cfg.Metrics.Enabled {
		*metricsPath = cfg.Metrics.Path
	}

	builder := indexer.NewBuilder(cfg.Indexer.SortParallelism)
	res, err := builder.Build(tokensPath, urlJSONPath)
	if err != nil {
		fatal("%v", err)
	}
	if err := indexfile.Write(outPath, res.Meta, res.Dict, res.Postings, res.Docs); err != nil {
		fatal("%v", err)
	}

	tokensPerMS := 0.0
	if res.Meta.BuildMS > 0 {
		tokensPerMS = float64(res.Meta.TotalTokens) / res.Meta.BuildMS
	}
	slog.Info("index written",
		"path", outPath,
		"docs", res.Meta.DocsCount,
		"total_tokens", res.Meta.TotalTokens,
		"unique_terms", res.Meta.UniqueTerms,
		"avg_term_len", fmt.Sprintf("%.3f", res.Meta.AvgTermLen),
		"build_ms", fmt.Sprintf("%.3f", res.Meta.BuildMS),
		"tokens_per_ms", fmt.Sprintf("%.3f", tokensPerMS),
		"ms_per_doc", fmt.Sprintf("%.3f", res.Meta.BuildMS/float64(res.Meta.DocsCount)),
	)

	if *metricsPath != "" {
		m := metrics.New()
		m.DocsIndexed.Set(float64(res.Meta.DocsCount))
		m.UniqueTerms.Set(float64(res.Meta.UniqueTerms))
		m.PostingsWritten.Set(float64(len(res.Postings)))
		m.BuildDuration.Set(res.Meta.BuildMS / 1000.0)
		if err := m.WriteTextfile(*metricsPath); err != nil {
			fatal("writing metrics: %v", err)
		}
	}
}
