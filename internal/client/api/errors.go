package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"advogados-solidarios/internal/platform/apperr"
	"advogados-solidarios/internal/platform/httpclient"
)

type Kind int

const (
	KindNetwork Kind = iota // red, timeout o 5xx
	KindValidation
	KindAuthenticationRequired
	KindPermissionDenied
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthenticationRequired:
		return "authentication_required"
	case KindPermissionDenied:
		return "permission_denied"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "network_or_server"
	}
}

// Error es lo único que devuelve el Client ante una falla del servidor o
// de la red. Message siempre es apto para mostrar al usuario.
type Error struct {
	Kind      Kind
	Status    int // 0 si no hubo respuesta
	Message   string
	Field     string
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("api: %s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("api: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is permite errors.Is(err, apperr.ErrPermissionDenied) del lado cliente.
func (e *Error) Is(target error) bool {
	switch e.Kind {
	case KindValidation:
		return target == apperr.ErrValidation
	case KindAuthenticationRequired:
		return target == apperr.ErrAuthenticationRequired
	case KindPermissionDenied:
		return target == apperr.ErrPermissionDenied
	case KindNotFound:
		return target == apperr.ErrNotFound
	case KindConflict:
		return target == apperr.ErrConflict
	}
	return false
}

func kindOf(status int) Kind {
	switch status {
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusUnauthorized:
		return KindAuthenticationRequired
	case http.StatusForbidden:
		return KindPermissionDenied
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	default:
		return KindNetwork
	}
}

func translate(err error) *Error {
	var he *httpclient.HTTPError
	if errors.As(err, &he) {
		msg := he.Message
		if msg == "" {
			msg = apperr.GenericMessage
		}
		return &Error{
			Kind:      kindOf(he.StatusCode),
			Status:    he.StatusCode,
			Message:   msg,
			Field:     he.Field,
			Retryable: he.StatusCode >= 500 || he.StatusCode == http.StatusTooManyRequests,
			Err:       err,
		}
	}
	return &Error{
		Kind:      KindNetwork,
		Message:   apperr.GenericMessage,
		Retryable: httpclient.IsTimeout(err) || !isDecodeError(err),
		Err:       err,
	}
}

func isDecodeError(err error) bool {
	var se *json.SyntaxError
	var te *json.UnmarshalTypeError
	return errors.As(err, &se) || errors.As(err, &te)
}
