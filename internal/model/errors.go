package model

import "errors"

var (
	// Account / user related errors
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrAccountNotFound   = errors.New("account not found")
	ErrDuplicateUsername = errors.New("username already exists")

	// Token related errors
	ErrTokenNotFound = errors.New("token not found")

	// Task related errors
	ErrTaskNotFound = errors.New("task not found")

	ErrInvalidInput = errors.New("invalid input")
)
