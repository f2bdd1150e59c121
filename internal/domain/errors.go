package domain

import "errors"

var (
	ErrUnparseableCSV   = errors.New("csv file cannot be parsed")
	ErrMissingTimestamp = errors.New("csv file has no timestamp column")
	ErrInvalidTimestamp = errors.New("timestamp value is empty or not numeric")
	ErrRenderFailed     = errors.New("chart rendering failed")
	ErrWriteFailed      = errors.New("chart could not be written")
)
