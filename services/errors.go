package services

import "errors"

// Ошибки жизненного цикла, различимые через errors.Is.
// Обработчики мапят их на HTTP-статусы (403/400/404/400).
var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidState     = errors.New("invalid state")
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
)
