package service

import "errors"

// Ошибки бизнес-логики. Транспортный слой сопоставляет их с HTTP-статусами
// через errors.Is, конкретика (id товара и т.п.) добавляется обёрткой fmt.Errorf.
var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrForbidden          = errors.New("insufficient privileges")
	ErrInsufficientStock  = errors.New("insufficient stock")
)
