package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perf-graphs/internal/config"
)

func TestPlan(t *testing.T) {
	files := plan(config.Default(), "out", 1)
	require.Len(t, files, 5)

	seeds := make([]int64, len(files))
	for i, f := range files {
		seeds[i] = f.seed
	}
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, seeds)

	assert.Equal(t, filepath.Join("out", "interoperability_csv", "project_tasks_metrics.csv"), files[4].path)
}
