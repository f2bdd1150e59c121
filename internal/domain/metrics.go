package domain

import (
	"context"
	"strings"
)

// TimestampColumn is the only column every metrics CSV must carry.
const TimestampColumn = "timestamp"

type Operation string

const (
	OperationAdd    Operation = "add"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Operations lists the operations in plotting order.
var Operations = []Operation{OperationAdd, OperationUpdate, OperationDelete}

// Label returns the operation name as shown in legends ("Add", "Update", "Delete").
func (o Operation) Label() string {
	if o == "" {
		return ""
	}
	s := string(o)
	return strings.ToUpper(s[:1]) + s[1:]
}

// Category is one chart per endpoint: transaction time, CPU or memory.
type Category struct {
	Name         string // file name suffix: transaction, cpu, memory
	ColumnSuffix string // ms, cpu, mem
	Label        string
	ShortLabel   string
	YAxisLabel   string
	SeriesPrefix string
}

var (
	CategoryTransaction = Category{
		Name:         "transaction",
		ColumnSuffix: "ms",
		Label:        "Transaction Time (ms)",
		ShortLabel:   "Transaction Time",
		YAxisLabel:   "Time (ms)",
	}
	CategoryCPU = Category{
		Name:         "cpu",
		ColumnSuffix: "cpu",
		Label:        "CPU Usage (%)",
		ShortLabel:   "CPU Usage",
		YAxisLabel:   "CPU (%)",
		SeriesPrefix: "CPU",
	}
	CategoryMemory = Category{
		Name:         "memory",
		ColumnSuffix: "mem",
		Label:        "Memory (MB)",
		ShortLabel:   "Memory",
		YAxisLabel:   "Memory (MB)",
		SeriesPrefix: "Memory",
	}
)

// Categories lists the charts produced for every endpoint, in output order.
var Categories = []Category{CategoryTransaction, CategoryCPU, CategoryMemory}

// Column returns the CSV column holding this category's values for op, e.g. "add_cpu".
func (c Category) Column(op Operation) string {
	return string(op) + "_" + c.ColumnSuffix
}

// SeriesLabel returns the legend entry for op, e.g. "CPU Add".
func (c Category) SeriesLabel(op Operation) string {
	if c.SeriesPrefix == "" {
		return op.Label()
	}
	return c.SeriesPrefix + " " + op.Label()
}

// Mode is one discovery/output family. Interoperability charts use the raw
// endpoint name and the long labels; basic charts capitalize the endpoint.
type Mode struct {
	Name               string
	OutputDir          string
	CapitalizeEndpoint bool
	ShortLabels        bool
}

var (
	ModeInteroperability = Mode{Name: "interoperability", OutputDir: "interoperability"}
	ModeBasic            = Mode{Name: "basic", OutputDir: "basic", CapitalizeEndpoint: true, ShortLabels: true}
)

// Source is one CSV file to be charted.
type Source struct {
	Endpoint string
	Path     string
	Mode     Mode
}

// Series is one plotted line. Offsets and Values have equal length.
type Series struct {
	Column  string
	Label   string
	Offsets []float64
	Values  []float64
}

func (s Series) Len() int {
	return len(s.Offsets)
}

// Table is a loaded metrics CSV. Lookup is the only way to reach a column's
// data and reports whether the column exists at all.
type Table interface {
	Path() string
	Columns() []string
	Rows() int
	Lookup(ctx context.Context, column string) (Series, bool, error)
	Release(ctx context.Context) error
}

type MetricStore interface {
	Init() error
	Load(ctx context.Context, path string) (Table, error)
	Close() error
}
