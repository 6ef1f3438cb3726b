// Package form modela los inputs del cliente: el texto que excede el máximo
// se recorta al tipear y el mínimo se valida al enviar.
package form

import (
	"unicode/utf8"

	"advogados-solidarios/internal/platform/fields"
)

type Input struct {
	limit fields.Limit
	value string
}

func NewInput(l fields.Limit) *Input {
	return &Input{limit: l}
}

// Type reemplaza el contenido, recortado al máximo del campo.
func (in *Input) Type(s string) {
	in.value = in.limit.Clip(s)
}

func (in *Input) Value() string { return in.value }

func (in *Input) Field() string { return in.limit.Field }

// Remaining es el contador "restam N caracteres".
func (in *Input) Remaining() int {
	if in.limit.Max <= 0 {
		return -1
	}
	return in.limit.Max - utf8.RuneCountInString(in.value)
}

// Validate devuelve el valor listo para enviar o un *fields.ValidationError.
func (in *Input) Validate() (string, error) {
	return in.limit.Normalize(in.value)
}

// Validate revisa los inputs en orden y corta en el primer error.
func Validate(inputs ...*Input) error {
	for _, in := range inputs {
		if _, err := in.Validate(); err != nil {
			return err
		}
	}
	return nil
}
