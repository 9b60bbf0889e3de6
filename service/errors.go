package service

import "errors"

var (
	ErrAlreadyExists = errors.New("database already exists")
	ErrNotFound      = errors.New("database does not exist")
	ErrInvalidInput  = errors.New("invalid input")
)
