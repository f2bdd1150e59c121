package writer

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"

	"perf-graphs/internal/domain"
	"perf-graphs/internal/util"
)

type Writer struct {
	root string
}

func New(graphsRoot string) *Writer {
	return &Writer{root: graphsRoot}
}

func (w *Writer) ModeDir(mode domain.Mode) string {
	return filepath.Join(w.root, mode.OutputDir)
}

func (w *Writer) EndpointDir(mode domain.Mode, endpoint string) string {
	return filepath.Join(w.ModeDir(mode), endpoint)
}

// Path is {root}/{mode}/{endpoint}/{endpoint}_{category}.png.
func (w *Writer) Path(mode domain.Mode, endpoint string, category domain.Category) string {
	return filepath.Join(w.EndpointDir(mode, endpoint), fmt.Sprintf("%s_%s.png", endpoint, category.Name))
}

func (w *Writer) EnsureModeDir(mode domain.Mode) error {
	if err := util.CheckAndCreateFolder(w.ModeDir(mode)); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}
	return nil
}

// Save writes png to its deterministic path, replacing any previous file.
func (w *Writer) Save(mode domain.Mode, endpoint string, category domain.Category, png []byte) (string, error) {
	if err := util.CheckAndCreateFolder(w.EndpointDir(mode, endpoint)); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}

	path := w.Path(mode, endpoint, category)
	if err := os.WriteFile(path, png, 0644); err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrWriteFailed, path, err)
	}
	return path, nil
}

// Remove deletes previously saved charts. Files already gone are ignored.
func (w *Writer) Remove(paths ...string) error {
	var errs error
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			errs = multierr.Append(errs, fmt.Errorf("%w: %s: %v", domain.ErrWriteFailed, path, err))
		}
	}
	return errs
}
