package application

import "errors"

var (
	ErrDuplicateEmail     = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnknownSubject     = errors.New("token subject not found")
	ErrDonorNotFound      = errors.New("donor not found")
	ErrDonorAlreadyExists = errors.New("donor record already exists")
	ErrBloodGroupRequired = errors.New("blood group is required for donors")
)
