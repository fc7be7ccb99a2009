package service

import "errors"

var (
	ErrUnavailable      = errors.New("catalog unavailable")
	ErrNotEnoughResults = errors.New("not enough results")
)
