package viewstate

import "errors"

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrClosed          = errors.New("browser closed")
)
