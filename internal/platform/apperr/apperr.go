package apperr

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Tipos de error compartidos entre módulos.
// Cada dominio declara sus propios sentinels y los envuelve con uno de estos,
// así el router traduce a status HTTP sin conocer el dominio.
var (
	ErrValidation             = errors.New("validation error")
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrPermissionDenied       = errors.New("permission denied")
	ErrNotFound               = errors.New("not found")
	ErrInvalidState           = errors.New("invalid state")
	ErrConflict               = errors.New("conflict")
)

// GenericMessage se usa cuando no hay un mensaje apto para el usuario.
const GenericMessage = "Ocorreu um erro. Tente novamente."

// Status mapea un error a su status HTTP.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuthenticationRequired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidState), errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Body es el cuerpo de error del contrato HTTP: {"message": "..."}.
type Body struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// Fielder lo implementan los errores de validación que apuntan a un campo.
type Fielder interface {
	FieldName() string
}

// Write responde el error con el status que le corresponde.
// Los 500 nunca exponen el mensaje interno.
func Write(w http.ResponseWriter, err error) {
	status := Status(err)
	body := Body{Message: GenericMessage}
	if status != http.StatusInternalServerError {
		body.Message = err.Error()
	}
	var f Fielder
	if errors.As(err, &f) {
		body.Field = f.FieldName()
	}
	WriteMessage(w, status, body)
}

func WriteMessage(w http.ResponseWriter, status int, body Body) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// kindError lleva un mensaje para el usuario y un tipo para errors.Is.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// New crea un sentinel de dominio con mensaje propio que envuelve uno de los tipos.
func New(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}
