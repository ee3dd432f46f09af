package service

import "errors"

var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("task not found")
	ErrPersistenceRead  = errors.New("persistence read error")
	ErrPersistenceWrite = errors.New("persistence write error")
)
