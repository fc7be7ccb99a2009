package aggregator

import "errors"

var ErrInsufficientResults = errors.New("insufficient results")
