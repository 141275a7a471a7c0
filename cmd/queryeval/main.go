// Command queryeval evaluates boolean queries against a binary index.
//
// Usage:
//
//	queryeval <index.bin> [--k N] [--top N] [--only-docid] [--no-results]
//	          [--report report.txt] [--topres N]
//	          [--config pipeline.yaml] [--metrics metrics.prom]
//
// Queries are read from stdin, one per line. Matching documents go to stdout
// ("docId\ttitle\turl" by default); warnings and the slowest-query table go
// to stderr.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Adithya-Monish-Kumar-K/Corpus-Retrieval-Pipeline/internal/indexfile"
	"github.com/Adithya-Monish-Kumar-K/Corpus-Retrieval-Pipeline/internal/query"
	"github.com/Adithya-Monish-Kumar-K/Corpus-Retrieval-Pipeline/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Corpus-Retrieval-Pipeline/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Corpus-Retrieval-Pipeline/pkg/metrics"
)

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "ERROR: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	// The index path is the first positional argument; flags may follow it.
	args := os.Args[1:]
	if len(args) < 1 {
		fatal("usage: queryeval <index.bin> [--k N] [--top N] [--only-docid] [--no-results] [--report path] [--topres N]")
	}
	indexPath := args[0]

	fs := flag.NewFlagSet("queryeval", flag.ContinueOnError)
	k := fs.Int("k", -1, "cap emitted records per query, 0 = unlimited")
	top := fs.Int("top", -1, "how many slowest queries to report")
	onlyDocID := fs.Bool("only-docid", false, "emit bare docIds instead of docId\\ttitle\\turl")
	noResults := fs.Bool("no-results", false, "suppress per-document output")
	reportPath := fs.String("report", "", "write a grouped per-query report to this path")
	topRes := fs.Int("topres", -1, "cap result lines per query in the report")
	configPath := fs.String("config", "", "path to pipeline config file")
	metricsPath := fs.String("metrics", "", "write Prometheus textfile metrics to this path")

	fs.SetOutput(io.Discard)
	if err := fs.Parse(args[1:]); err != nil {
		fatal("%v", err)
	}
	if fs.NArg() > 0 {
		fatal("unexpected argument: %s", fs.Arg(0))
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal("failed to load config: %v", err)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if *k < 0 {
		*k = cfg.Search.ResultLimit
	}
	if *top < 0 {
		*top = cfg.Search.SlowQueryTop
	}
	if *topRes < 0 {
		*topRes = cfg.Search.ReportTopRes
	}
	if *metricsPath == "" && cfg.Metrics.Enabled {
		*metricsPath = cfg.Metrics.Path
	}

	idx, err := indexfile.Load(indexPath)
	if err != nil {
		fatal("%v", err)
	}
	engine := query.NewEngine(idx)

	var report io.Writer
	if *reportPath != "" {
		f, err := os.Create(*reportPath)
		if err != nil {
			fatal("cannot open report file %s: %v", *reportPath, err)
		}
		defer f.Close()
		report = f
	}

	var m *metrics.Metrics
	if *metricsPath != "" {
		m = metrics.New()
	}

	runner := query.NewRunner(engine, query.Options{
		Limit:        *k,
		SlowTop:      *top,
		OnlyDocID:    *onlyDocID,
		NoResults:    *noResults,
		ReportTopRes: *topRes,
	}, os.Stdout, report, os.Stderr, m)

	if err := runner.Run(os.Stdin); err != nil {
		fatal("%v", err)
	}

	if m != nil {
		if err := m.WriteTextfile(*metricsPath); err != nil {
			fatal("writing metrics: %v", err)
		}
	}
}
