package types

import "fmt"

// Error taxonomy types carried on AppError and echoed to the client.
const (
	ErrValidation = "validation"
	ErrNotFound   = "not_found"
	ErrConflict   = "conflict"
	ErrAuth       = "auth"
	ErrRateLimit  = "rate_limit"
	ErrStore      = "store"
)

// AppError is the error shape handlers and middleware return; the app-level
// fiber error handler maps it to the JSON envelope.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}
