package repository

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrDonorExists    = errors.New("donor record already exists")
)
