package repository

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"perf-graphs/internal/domain"

	_ "github.com/mattn/go-sqlite3"
)

const MemoryDSN = ":memory:"

// SQLiteStore loads each metrics CSV into its own transient table.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
	seq    int
}

func NewSQLiteStore(path string) *SQLiteStore {
	if path == "" {
		path = MemoryDSN
	}
	return &SQLiteStore{dbPath: path}
}

func (s *SQLiteStore) Init() error {
	var err error

	s.db, err = sql.Open("sqlite3", s.dbPath)
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}

	// every connection to :memory: is a separate database
	s.db.SetMaxOpenConns(1)

	if err = s.db.Ping(); err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, path string) (domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrUnparseableCSV, path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	// short rows are padded; long rows are still rejected in insertAll
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s: empty file", domain.ErrUnparseableCSV, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrUnparseableCSV, path, err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	columns := dedupe(header)

	index := make(map[string]int, len(columns))
	for i, name := range columns {
		index[name] = i
	}
	tsIndex, ok := index[domain.TimestampColumn]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingTimestamp, path)
	}

	s.seq++
	table := &sqliteTable{
		store:   s,
		name:    fmt.Sprintf("samples_%d", s.seq),
		path:    path,
		columns: columns,
		index:   index,
		tsIndex: tsIndex,
	}

	if err := table.create(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrUnparseableCSV, path, err)
	}

	if err := table.insertAll(ctx, reader, tsIndex); err != nil {
		table.Release(context.Background())
		return nil, err
	}
	return table, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

type sqliteTable struct {
	store   *SQLiteStore
	name    string
	path    string
	columns []string
	// index maps a header name to its position; SQL columns are named by position
	index   map[string]int
	tsIndex int
	rows    int
}

func (t *sqliteTable) Path() string {
	return t.path
}

func (t *sqliteTable) Columns() []string {
	return append([]string(nil), t.columns...)
}

func (t *sqliteTable) Rows() int {
	return t.rows
}

func (t *sqliteTable) create(ctx context.Context) error {
	cols := make([]string, len(t.columns))
	for i := range t.columns {
		cols[i] = positional(i)
	}
	createTableSQL := fmt.Sprintf("CREATE TABLE %s (%s);", t.name, strings.Join(cols, ", "))

	_, err := t.store.db.ExecContext(ctx, createTableSQL)
	if err != nil {
		return fmt.Errorf("error creating table: %w", err)
	}
	return nil
}

func (t *sqliteTable) insertAll(ctx context.Context, reader *csv.Reader, tsIndex int) error {
	tx, err := t.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(t.columns)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES(%s)", t.name, placeholders))
	if err != nil {
		return fmt.Errorf("error preparing insert statement: %w", err)
	}
	defer stmt.Close()

	args := make([]interface{}, len(t.columns))
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrUnparseableCSV, t.path, err)
		}

		if len(record) > len(t.columns) {
			return fmt.Errorf("%w: %s: line %d: %d fields, header has %d",
				domain.ErrUnparseableCSV, t.path, line, len(record), len(t.columns))
		}
		for i := range args {
			args[i] = nil
			if i < len(record) {
				args[i] = cellValue(record[i])
			}
		}
		if _, ok := args[tsIndex].(float64); !ok {
			var raw string
			if tsIndex < len(record) {
				raw = record[tsIndex]
			}
			return fmt.Errorf("%w: %s: line %d: %q", domain.ErrInvalidTimestamp, t.path, line, raw)
		}

		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("error inserting row %d of %s: %w", line, t.path, err)
		}
		t.rows++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing rows of %s: %w", t.path, err)
	}
	return nil
}

// Lookup returns the column plotted against the relative time offset. Rows
// with an empty cell are left out of the series.
func (t *sqliteTable) Lookup(ctx context.Context, column string) (domain.Series, bool, error) {
	i, ok := t.index[column]
	if !ok {
		return domain.Series{}, false, nil
	}

	query := fmt.Sprintf(
		"SELECT %[1]s - (SELECT MIN(%[1]s) FROM %[2]s), %[3]s FROM %[2]s ORDER BY rowid ASC",
		positional(t.tsIndex), t.name, positional(i))

	rows, err := t.store.db.QueryContext(ctx, query)
	if err != nil {
		return domain.Series{}, true, fmt.Errorf("error querying %s of %s: %w", column, t.path, err)
	}
	defer rows.Close()

	series := domain.Series{Column: column}
	for rows.Next() {
		var (
			offset float64
			value  sql.NullFloat64
		)
		if err := rows.Scan(&offset, &value); err != nil {
			return domain.Series{}, true, fmt.Errorf("%w: %s: column %s: %v", domain.ErrUnparseableCSV, t.path, column, err)
		}
		if !value.Valid {
			continue
		}
		series.Offsets = append(series.Offsets, offset)
		series.Values = append(series.Values, value.Float64)
	}

	if err = rows.Err(); err != nil {
		return domain.Series{}, true, fmt.Errorf("error during rows iteration: %w", err)
	}
	return series, true, nil
}

func (t *sqliteTable) Release(ctx context.Context) error {
	_, err := t.store.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+t.name)
	if err != nil {
		return fmt.Errorf("error dropping table %s: %w", t.name, err)
	}
	return nil
}

func cellValue(cell string) interface{} {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return nil
	}
	if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return v
	}
	return cell
}

func positional(i int) string {
	return "c" + strconv.Itoa(i)
}

// dedupe suffixes repeated header names with .1, .2 and so on, leaving the
// first occurrence untouched.
func dedupe(header []string) []string {
	columns := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, name := range header {
		candidate := name
		for n := 1; seen[candidate]; n++ {
			candidate = fmt.Sprintf("%s.%d", name, n)
		}
		seen[candidate] = true
		columns[i] = candidate
	}
	return columns
}
