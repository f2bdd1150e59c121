package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"perf-graphs/internal/config"
	"perf-graphs/internal/sample"
)

var interoperabilityFiles = []string{"category_projects_metrics.csv", "project_tasks_metrics.csv"}

func main() {
	defaults := sample.DefaultOptions()

	app := &cli.App{
		Name:  "sample",
		Usage: "write synthetic metrics CSV files in the layout the graphs command reads",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Value: config.Default().CSVRoot, Usage: "csv root folder to populate"},
			&cli.IntFlag{Name: "rows", Value: defaults.Rows},
			&cli.Int64Flag{Name: "seed", Value: defaults.Seed},
		},
		Action: generateAll,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Failed to generate sample data: %v", err)
	}
}

type sampleFile struct {
	path string
	seed int64
}

// plan lists every file to generate. The i-th file uses seed+i.
func plan(cfg config.Config, root string, seed int64) []sampleFile {
	var paths []string
	for _, e := range cfg.BasicEndpoints {
		paths = append(paths, filepath.Join(root, e.Path))
	}
	for _, name := range interoperabilityFiles {
		paths = append(paths, filepath.Join(root, cfg.InteroperabilityDir, name))
	}

	files := make([]sampleFile, len(paths))
	for i, path := range paths {
		files[i] = sampleFile{path: path, seed: seed + int64(i)}
	}
	return files
}

func generateAll(c *cli.Context) error {
	cfg := config.Default()
	root := c.String("out")

	opts := sample.DefaultOptions()
	opts.Rows = c.Int("rows")

	for _, f := range plan(cfg, root, c.Int64("seed")) {
		opts.Seed = f.seed
		if err := sample.WriteFile(f.path, opts); err != nil {
			return fmt.Errorf("error writing %s: %w", f.path, err)
		}
		log.Printf("Wrote %d rows to %s (seed %d)", opts.Rows, f.path, f.seed)
	}

	log.Println("Sample generation complete.")
	return nil
}
