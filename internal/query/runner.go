package query

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Corpus-Retrieval-Pipeline/pkg/metrics"
)

// Options controls result emission and slow-query reporting.
type Options struct {
	// Limit caps emitted records per query; 0 means unlimited.
	Limit int
	// SlowTop is how many of the slowest queries are reported at end of input.
	SlowTop int
	// OnlyDocID switches output from "docId\ttitle\turl" to bare docIds.
	OnlyDocID bool
	// NoResults suppresses per-document output entirely.
	NoResults bool
	// ReportTopRes caps the per-query result lines written to the report sink.
	ReportTopRes int
}

type slowItem struct {
	ms     float64
	lineNo int
	query  string
	hits   int
}

// Runner drives query evaluation over an input stream: one query per line,
// results to out, grouped report to report (optional), diagnostics (warnings
// and the slow-query table) to diag.
type Runner struct {
	engine  *Engine
	opts    Options
	out     io.Writer
	report  io.Writer
	diag    io.Writer
	metrics *metrics.Metrics
	logger  *slog.Logger

	slows []slowItem
}

func NewRunner(engine *Engine, opts Options, out, report, diag io.Writer, m *metrics.Metrics) *Runner {
	if opts.SlowTop == 0 {
		opts.SlowTop = 10
	}
	return &Runner{
		engine:  engine,
		opts:    opts,
		out:     out,
		report:  report,
		diag:    diag,
		metrics: m,
		logger:  slog.Default().With("component", "query-runner"),
	}
}

// Run processes queries from in until EOF, then emits the slow-query table.
// Per-query failures are recorded and processing continues; only I/O errors
// on the sinks are returned.
func (r *Runner) Run(in io.Reader) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	bw := bufio.NewWriter(r.out)
	defer bw.Flush()

	lineNo := 0
	for sc.Scan() {
		line := sc.Text()
		lineNo++

		if allSpace(line) {
			continue
		}

		start := time.Now()
		result, err := r.engine.Evaluate(line)
		elapsed := time.Since(start)
		ms := float64(elapsed.Microseconds()) / 1000.0

		if r.metrics != nil {
			r.metrics.QueryLatency.Observe(elapsed.Seconds())
		}

		if err != nil {
			fmt.Fprintf(r.diag, "WARN: line %d: parse/eval error: %s | query: %s\n",
				lineNo, err, line)
			r.slows = append(r.slows, slowItem{ms: ms, lineNo: lineNo, query: line})
			if r.metrics != nil {
				r.metrics.QueriesTotal.WithLabelValues("error").Inc()
			}
			if r.report != nil {
				fmt.Fprintf(r.report, "QUERY\t%s\nHITS\t0\nERROR\t%s\n\n", line, err)
			}
			continue
		}

		r.slows = append(r.slows, slowItem{ms: ms, lineNo: lineNo, query: line, hits: len(result)})
		if r.metrics != nil {
			r.metrics.QueryHits.Observe(float64(len(result)))
			if len(result) == 0 {
				r.metrics.QueriesTotal.WithLabelValues("zero_result").Inc()
			} else {
				r.metrics.QueriesTotal.WithLabelValues("hit").Inc()
			}
		}

		if r.report != nil {
			if err := r.writeReport(line, result); err != nil {
				return err
			}
		}
		if !r.opts.NoResults {
			if err := r.writeResults(bw, result); err != nil {
				return err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading queries: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}

	r.emitSlowTable()
	return nil
}

func (r *Runner) writeResults(w io.Writer, result []uint32) error {
	printed := 0
	for _, docID := range result {
		if r.opts.Limit > 0 && printed >= r.opts.Limit {
			break
		}
		if int(docID) >= r.engine.NumDocs() {
			continue
		}
		var err error
		if r.opts.OnlyDocID {
			_, err = fmt.Fprintf(w, "%d\n", docID)
		} else {
			di := r.engine.Doc(docID)
			_, err = fmt.Fprintf(w, "%d\t%s\t%s\n", docID, di.Title, di.URL)
		}
		if err != nil {
			return fmt.Errorf("writing results: %w", err)
		}
		printed++
	}
	return nil
}

func (r *Runner) writeReport(line string, result []uint32) error {
	if _, err := fmt.Fprintf(r.report, "QUERY\t%s\nHITS\t%d\n", line, len(result)); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	cnt := 0
	for _, docID := range result {
		if cnt >= r.opts.ReportTopRes {
			break
		}
		if int(docID) >= r.engine.NumDocs() {
			continue
		}
		di := r.engine.Doc(docID)
		if _, err := fmt.Fprintf(r.report, "%s\t%s\n", di.Title, di.URL); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		cnt++
	}
	if _, err := fmt.Fprintln(r.report); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// emitSlowTable prints the top-N slowest queries, slowest first, to the
// diagnostic sink.
func (r *Runner) emitSlowTable() {
	if len(r.slows) == 0 {
		return
	}
	sort.SliceStable(r.slows, func(i, j int) bool {
		return r.slows[i].ms > r.slows[j].ms
	})
	n := r.opts.SlowTop
	if n > len(r.slows) {
		n = len(r.slows)
	}
	fmt.Fprintf(r.diag, "---- TOP %d slowest queries ----\n", n)
	fmt.Fprintf(r.diag, "rank\tms\tline\thits\tquery\n")
	for i := 0; i < n; i++ {
		s := r.slows[i]
		fmt.Fprintf(r.diag, "%d\t%g\t%d\t%d\t%s\n", i+1, s.ms, s.lineNo, s.hits, s.query)
	}
	fmt.Fprintf(r.diag, "--------------------------------\n")
}

func allSpace(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isSpace(s[i]) {
			return false
		}
	}
	return true
}
