// Command tokenizer extracts a token stream from the text fields of a JSON
// corpus.
//
// Usage:
//
//	tokenizer --json corpus.json [--field parsed_text] [--log_every N]
//	          [--emit_tokens tokens.txt] [--with_docid 0|1]
//	          [--config pipeline.yaml] [--metrics metrics.prom]
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Corpus-Retrieval-Pipeline/internal/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Corpus-Retrieval-Pipeline/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Corpus-Retrieval-Pipeline/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Corpus-Retrieval-Pipeline/pkg/metrics"
)

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "ERROR: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	fs := flag.NewFlagSet("tokenizer", flag.ContinueOnError)
	jsonPath := fs.String("json", "", "path to the input JSON corpus (required)")
	field := fs.String("field", "", "JSON field holding document text (default from config: parsed_text)")
	logEvery := fs.Int("log_every", -1, "log progress every N documents, 0 disables")
	emitPath := fs.String("emit_tokens", "", "path for the emitted token stream")
	withDocID := fs.Int("with_docid", 0, "prefix each token with its docId (0|1)")
	configPath := fs.String("config", "", "path to pipeline config file")
	metricsPath := fs.String("metrics", "", "write Prometheus textfile metrics to this path")

	fs.SetOutput(io.Discard)
	if err := fs.Parse(os.Args[1:]); err != nil {
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

	if *field == "" {
		*field = cfg.Tokenizer.Field
	}
	if *logEvery < 0 {
		*logEvery = cfg.Tokenizer.LogEvery
	}
	if *metricsPath == "" && cfg.Metrics.Enabled {
		*metricsPath = cfg.Metrics.Path
	}

	if *jsonPath == "" {
		fatal("missing --json <file>")
	}

	data, err := os.ReadFile(*jsonPath)
	if err != nil {
		fatal("cannot read JSON: %v", err)
	}

	var out *bufio.Writer
	if *emitPath != "" {
		f, err := os.Create(*emitPath)
		if err != nil {
			fatal("cannot open token output: %v", err)
		}
		defer f.Close()
		out = bufio.NewWriterSize(f, 1<<20)
	}

	scanner := tokenizer.NewScanner(*field, *logEvery, *withDocID != 0)

	start := time.Now()
	var sink io.Writer
	if out != nil {
		sink = out
	}
	st, err := scanner.Run(data, sink)
	if err != nil {
		fatal("%v", err)
	}
	if out != nil {
		if err := out.Flush(); err != nil {
			fatal("flushing token output: %v", err)
		}
	}
	elapsed := time.Since(start)

	logSummary(st, *field, *emitPath, *withDocID != 0, elapsed)

	if *metricsPath != "" {
		m := metrics.New()
		m.DocsTokenized.Add(float64(st.DocsWithField))
		m.TokensEmitted.Add(float64(st.Tokens))
		m.TextBytesRead.Add(float64(st.TextBytes))
		if err := m.WriteTextfile(*metricsPath); err != nil {
			fatal("writing metrics: %v", err)
		}
	}
}

func logSummary(st tokenizer.Stats, field, emitPath string, withDocID bool, elapsed time.Duration) {
	ms := float64(elapsed.Microseconds()) / 1000.0
	kb := float64(st.TextBytes) / 1024.0
	kbps := 0.0
	if sec := elapsed.Seconds(); sec > 0 {
		kbps = kb / sec
	}
	msPerKB := 0.0
	if kb > 0 {
		msPerKB = ms / kb
	}

	attrs := []any{
		"field", field,
		"docs_with_field", st.DocsWithField,
		"input_text_kb", fmt.Sprintf("%.3f", kb),
		"tokens", st.Tokens,
		"avg_token_len", fmt.Sprintf("%.3f", st.AvgTokenLen()),
		"time_ms", fmt.Sprintf("%.3f", ms),
		"kb_per_s", fmt.Sprintf("%.3f", kbps),
		"ms_per_kb", fmt.Sprintf("%.6f", msPerKB),
	}
	if emitPath != "" {
		attrs = append(attrs, "tokens_saved_to", emitPath, "with_docid", withDocID)
	}
	slog.Info("tokenization summary", attrs...)
}
