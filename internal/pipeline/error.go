package pipeline

import (
	"errors"

	"perf-graphs/internal/domain"
)

const (
	EXIT_SUCCESS        = iota // 0
	EXIT_FAILURE               // 1 - Generic failure
	EXIT_INVALID_INPUT         // 2 - A CSV could not be parsed or has no usable timestamp
	EXIT_RENDER_FAILURE        // 3 - A chart could not be rendered
	EXIT_WRITE_FAILURE         // 4 - An output directory or PNG could not be written
)

// GetExitCode maps the error returned by Run to a process exit code. When
// several files failed the first matching class in the order below wins.
func GetExitCode(err error) int {
	if err == nil {
		return EXIT_SUCCESS
	}

	switch {
	case errors.Is(err, domain.ErrMissingTimestamp),
		errors.Is(err, domain.ErrUnparseableCSV),
		errors.Is(err, domain.ErrInvalidTimestamp):
		return EXIT_INVALID_INPUT
	case errors.Is(err, domain.ErrRenderFailed):
		return EXIT_RENDER_FAILURE
	case errors.Is(err, domain.ErrWriteFailed):
		return EXIT_WRITE_FAILURE
	default:
		return EXIT_FAILURE
	}
}
