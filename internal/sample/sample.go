package sample

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"perf-graphs/internal/domain"
)

// Options controls Generate. Columns restricts the metric columns written
// after scale and timestamp; nil writes all nine.
type Options struct {
	Rows     int
	Seed     int64
	Start    int64 // first timestamp, ms since epoch
	StepMs   int64
	Columns  []string
	MaxScale int
}

func DefaultOptions() Options {
	return Options{
		Rows:     50,
		Seed:     1,
		Start:    1_700_000_000_000,
		StepMs:   250,
		MaxScale: 1000,
	}
}

// AllColumns returns every metric column the load-test harness records, in
// its output order.
func AllColumns() []string {
	var cols []string
	for _, c := range domain.Categories {
		for _, op := range domain.Operations {
			cols = append(cols, c.Column(op))
		}
	}
	return cols
}

// Generate writes a metrics CSV shaped like the harness output: timings with
// four decimals, CPU and memory with two.
func Generate(w io.Writer, opts Options) error {
	columns := opts.Columns
	if columns == nil {
		columns = AllColumns()
	}
	if opts.StepMs <= 0 {
		opts.StepMs = 1
	}
	if opts.MaxScale <= 0 {
		opts.MaxScale = 1
	}

	rnd := rand.New(rand.NewSource(opts.Seed))
	bw := bufio.NewWriter(w)

	header := append([]string{"scale", domain.TimestampColumn}, columns...)
	if _, err := fmt.Fprintln(bw, strings.Join(header, ",")); err != nil {
		return err
	}

	ts := opts.Start
	for i := 0; i < opts.Rows; i++ {
		scale := 1 + i*opts.MaxScale/max(opts.Rows, 1)

		fields := []string{fmt.Sprintf("%d", scale), fmt.Sprintf("%d", ts)}
		for _, col := range columns {
			fields = append(fields, value(rnd, col, scale))
		}
		if _, err := fmt.Fprintln(bw, strings.Join(fields, ",")); err != nil {
			return err
		}

		ts += opts.StepMs + rnd.Int63n(opts.StepMs)
	}
	return bw.Flush()
}

func value(rnd *rand.Rand, column string, scale int) string {
	switch {
	case strings.HasSuffix(column, "_ms"):
		return fmt.Sprintf("%.4f", 2+float64(scale)*0.01+rnd.Float64()*5)
	case strings.HasSuffix(column, "_cpu"):
		return fmt.Sprintf("%.2f", 10+rnd.Float64()*80)
	case strings.HasSuffix(column, "_mem"):
		return fmt.Sprintf("%.2f", 4096-float64(scale)*0.5-rnd.Float64()*64)
	default:
		return fmt.Sprintf("%.2f", rnd.Float64())
	}
}

// WriteFile generates into path, creating parent directories.
func WriteFile(path string, opts Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := Generate(f, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
