package fetcher

import "errors"

var (
	ErrNetwork         = errors.New("network error")
	ErrIncorrectPaging = errors.New("incorrect page limit or page size")
	ErrEmptyResponse   = errors.New("empty response")
)
