package render

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perf-graphs/internal/domain"
)

// fakeTable serves fixed columns without a database.
type fakeTable struct {
	columns map[string][]float64
	offsets []float64
	err     error
}

func (f *fakeTable) Path() string { return "fake.csv" }

func (f *fakeTable) Columns() []string {
	cols := []string{domain.TimestampColumn}
	for c := range f.columns {
		cols = append(cols, c)
	}
	return cols
}

func (f *fakeTable) Rows() int { return len(f.offsets) }

func (f *fakeTable) Lookup(ctx context.Context, column string) (domain.Series, bool, error) {
	values, ok := f.columns[column]
	if !ok {
		return domain.Series{}, false, nil
	}
	if f.err != nil {
		return domain.Series{}, true, f.err
	}
	return domain.Series{Column: column, Offsets: f.offsets, Values: values}, true, nil
}

func (f *fakeTable) Release(ctx context.Context) error { return nil }

func addOnlyTable() *fakeTable {
	return &fakeTable{
		offsets: []float64{0, 120, 260, 400},
		columns: map[string][]float64{
			"add_ms":  {3.1, 2.8, 4.4, 3.0},
			"add_cpu": {12.5, 40.0, 33.3, 20.1},
		},
	}
}

var interopSource = domain.Source{Endpoint: "todo_tasks", Mode: domain.ModeInteroperability}

func TestTitle(t *testing.T) {
	assert.Equal(t, "todo_tasks — Transaction Time (ms)", Title(interopSource, domain.CategoryTransaction))
	assert.Equal(t, "todo_tasks — Memory (MB)", Title(interopSource, domain.CategoryMemory))

	basic := domain.Source{Endpoint: "project", Mode: domain.ModeBasic}
	assert.Equal(t, "Project — CPU Usage", Title(basic, domain.CategoryCPU))

	multiWord := domain.Source{Endpoint: "todo tasks", Mode: domain.ModeBasic}
	assert.Equal(t, "Todo tasks — Memory", Title(multiWord, domain.CategoryMemory))

	shouting := domain.Source{Endpoint: "PROJECT_tasks", Mode: domain.ModeBasic}
	assert.Equal(t, "Project_tasks — Transaction Time", Title(shouting, domain.CategoryTransaction))
}

func TestBuild_PartialColumns(t *testing.T) {
	ctx := context.Background()
	table := addOnlyTable()

	transaction, err := Build(ctx, table, interopSource, domain.CategoryTransaction)
	require.NoError(t, err)
	require.Len(t, transaction.Series, 1)
	assert.Equal(t, "Add", transaction.Series[0].Label)
	assert.Equal(t, []string{"update_ms", "delete_ms"}, transaction.Missing)
	assert.Equal(t, "Time Offset (ms)", transaction.XAxisLabel)
	assert.Equal(t, "Time (ms)", transaction.YAxisLabel)

	cpu, err := Build(ctx, table, interopSource, domain.CategoryCPU)
	require.NoError(t, err)
	require.Len(t, cpu.Series, 1)
	assert.Equal(t, "CPU Add", cpu.Series[0].Label)
	assert.Equal(t, "CPU (%)", cpu.YAxisLabel)

	memory, err := Build(ctx, table, interopSource, domain.CategoryMemory)
	require.NoError(t, err)
	assert.True(t, memory.Empty())
	assert.Equal(t, []string{"add_mem", "update_mem", "delete_mem"}, memory.Missing)
}

func TestBuild_SeriesOrder(t *testing.T) {
	table := &fakeTable{
		offsets: []float64{0, 1},
		columns: map[string][]float64{
			"delete_mem": {1, 2},
			"add_mem":    {3, 4},
			"update_mem": {5, 6},
		},
	}

	c, err := Build(context.Background(), table, interopSource, domain.CategoryMemory)
	require.NoError(t, err)

	labels := make([]string, len(c.Series))
	for i, s := range c.Series {
		labels[i] = s.Label
	}
	assert.Equal(t, []string{"Memory Add", "Memory Update", "Memory Delete"}, labels)
	assert.Empty(t, c.Missing)
}

func TestBuild_LookupError(t *testing.T) {
	table := addOnlyTable()
	table.err = errors.New("boom")

	_, err := Build(context.Background(), table, interopSource, domain.CategoryTransaction)
	assert.EqualError(t, err, "boom")
}

func TestRenderer_PNGSize(t *testing.T) {
	r := NewRenderer(600, 300, 50)
	c, err := Build(context.Background(), addOnlyTable(), interopSource, domain.CategoryTransaction)
	require.NoError(t, err)

	data, err := r.RenderBytes(c)
	require.NoError(t, err)

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 600, cfg.Width)
	assert.Equal(t, 300, cfg.Height)
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestRenderer_ErrorNamesSource(t *testing.T) {
	r := NewRenderer(400, 200, 72)
	source := interopSource
	source.Path = "csv_files/interoperability_csv/todo_tasks_metrics.csv"

	c, err := Build(context.Background(), addOnlyTable(), source, domain.CategoryTransaction)
	require.NoError(t, err)

	err = r.Render(c, failingWriter{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRenderFailed)
	assert.Contains(t, err.Error(), source.Path)
}

func TestRenderer_EmptyChart(t *testing.T) {
	r := NewRenderer(400, 200, 72)
	c, err := Build(context.Background(), addOnlyTable(), interopSource, domain.CategoryMemory)
	require.NoError(t, err)
	require.True(t, c.Empty())

	data, err := r.RenderBytes(c)
	require.NoError(t, err, "a chart without series is still rendered")

	_, err = png.Decode(bytes.NewReader(data))
	assert.NoError(t, err)
}

func TestRenderer_DegenerateData(t *testing.T) {
	r := NewRenderer(400, 200, 72)

	cases := map[string]*fakeTable{
		"single sample":  {offsets: []float64{0}, columns: map[string][]float64{"add_ms": {5}}},
		"constant value": {offsets: []float64{0, 10, 20}, columns: map[string][]float64{"add_ms": {2, 2, 2}}},
		"all zero":       {offsets: []float64{0, 10}, columns: map[string][]float64{"add_ms": {0, 0}}},
		"no rows":        {offsets: nil, columns: map[string][]float64{"add_ms": nil}},
	}

	for name, table := range cases {
		t.Run(name, func(t *testing.T) {
			c, err := Build(context.Background(), table, interopSource, domain.CategoryTransaction)
			require.NoError(t, err)

			var buf bytes.Buffer
			assert.NoError(t, r.Render(c, &buf))
			assert.NotZero(t, buf.Len())
		})
	}
}

func TestRanges(t *testing.T) {
	x, y := ranges([]domain.Series{
		{Offsets: []float64{0, 50}, Values: []float64{10, 20}},
		{Offsets: []float64{10, 100}, Values: []float64{0, 5}},
	})
	assert.Equal(t, 0.0, x.Min)
	assert.Equal(t, 100.0, x.Max)
	assert.InDelta(t, -1.0, y.Min, 1e-9)
	assert.InDelta(t, 21.0, y.Max, 1e-9)

	x, y = ranges(nil)
	assert.Equal(t, 1.0, x.Max-x.Min)
	assert.Equal(t, 1.0, y.Max-y.Min)
}
