package entity

import "errors"

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrNotFound          = errors.New("file not found")
	ErrProcessing        = errors.New("processing failed")
)
