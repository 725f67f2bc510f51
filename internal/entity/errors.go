package entity

import "errors"

// Upload validation errors.
var (
	ErrNoFile          = errors.New("no image file provided")
	ErrUnsupportedType = errors.New("file must be an image")
	ErrFileTooLarge    = errors.New("file too large")
)
