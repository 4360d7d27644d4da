package analytics

import "errors"

var (
	// ErrDataUnavailable means one of the input streams was empty or missing
	ErrDataUnavailable = errors.New("insufficient data for analysis")

	// ErrJoinEmpty means both streams had data but no overlapping dates
	ErrJoinEmpty = errors.New("sales and cost data share no dates")
)
