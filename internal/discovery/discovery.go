package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"perf-graphs/internal/config"
	"perf-graphs/internal/domain"
)

const metricsSuffix = "_metrics"

// Interoperability lists every .csv file directly inside dir, in name order.
// A missing directory yields no sources, the same as an empty one.
func Interoperability(dir string) ([]domain.Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("error listing %s: %w", dir, err)
	}

	var sources []domain.Source
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".csv" {
			continue
		}
		sources = append(sources, domain.Source{
			Endpoint: EndpointName(entry.Name()),
			Path:     filepath.Join(dir, entry.Name()),
			Mode:     domain.ModeInteroperability,
		})
	}
	return sources, nil
}

// EndpointName strips the extension and the _metrics suffix:
// "todos_metrics.csv" becomes "todos".
func EndpointName(fileName string) string {
	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	return strings.TrimSuffix(base, metricsSuffix)
}

// Basic resolves the fixed endpoint set against root. Endpoints whose file
// does not exist are returned in missing rather than in sources.
func Basic(root string, endpoints []config.BasicEndpoint) (sources []domain.Source, missing []string, err error) {
	for _, e := range endpoints {
		path := filepath.Join(root, e.Path)

		info, statErr := os.Stat(path)
		if statErr != nil {
			if errors.Is(statErr, fs.ErrNotExist) {
				missing = append(missing, path)
				continue
			}
			return nil, nil, fmt.Errorf("error checking %s: %w", path, statErr)
		}
		if info.IsDir() {
			missing = append(missing, path)
			continue
		}

		sources = append(sources, domain.Source{
			Endpoint: e.Name,
			Path:     path,
			Mode:     domain.ModeBasic,
		})
	}
	return sources, missing, nil
}
