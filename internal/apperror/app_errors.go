package apperror

import "errors"

var (
	ErrProviderUnavailable = errors.New("wallet provider is not available")
	ErrStateUnavailable    = errors.New("contract state is unavailable")
	ErrNotConnected        = errors.New("no wallet account is connected")
	ErrInvalidCell         = errors.New("invalid cell index")
	ErrGameNotFound        = errors.New("game not found")
)
