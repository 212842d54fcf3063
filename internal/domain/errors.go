package domain

import "errors"

var (
	ErrEmptyBatch          = errors.New("upload batch is empty")
	ErrBatchTooLarge       = errors.New("upload batch exceeds maximum document count")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUnsupportedFileType = errors.New("unsupported file type")
)
