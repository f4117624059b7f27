package apperror

import "errors"

var (
	ErrMoveOutOfRange = errors.New("move is out of history range")
	ErrInvalidCell    = errors.New("invalid cell index")
)
