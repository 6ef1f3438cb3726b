// Package fields concentra los límites de los campos de entrada.
// Cliente y servidor usan la misma tabla: lo que excede el máximo se recorta
// al escribir, lo que no llega al mínimo se rechaza al enviar.
package fields

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"advogados-solidarios/internal/platform/apperr"
)

// Limit describe el rango permitido (en runas) de un campo.
// Min == 0 significa "sin mínimo".
type Limit struct {
	Field string
	Min   int
	Max   int
	// MinMessage es el texto que ve el usuario cuando no llega al mínimo.
	MinMessage string
	// MaxMessage se usa solo cuando el valor llega sin recortar (p.ej. API directa).
	MaxMessage string
}

var (
	Name = Limit{
		Field: "name", Min: 3, Max: 50,
		MinMessage: "Nome deve ter no mínimo 3 caracteres.",
		MaxMessage: "Nome deve ter no máximo 50 caracteres.",
	}
	Email = Limit{
		Field: "email", Max: 50,
		MinMessage: "E-mail inválido.",
		MaxMessage: "E-mail deve ter no máximo 50 caracteres.",
	}
	Password = Limit{
		Field: "password", Min: 6, Max: 50,
		MinMessage: "Senha deve ter no mínimo 6 caracteres.",
		MaxMessage: "Senha deve ter no máximo 50 caracteres.",
	}
	Search = Limit{Field: "q", Max: 50}

	CaseTitle = Limit{
		Field: "title", Min: 5, Max: 100,
		MinMessage: "Título deve ter no mínimo 5 caracteres.",
		MaxMessage: "Título deve ter no máximo 100 caracteres.",
	}
	CaseDescription = Limit{
		Field: "description", Min: 20, Max: 2000,
		MinMessage: "Descrição deve ter no mínimo 20 caracteres.",
		MaxMessage: "Descrição deve ter no máximo 2000 caracteres.",
	}
	ProposalMessage = Limit{
		Field: "mensagem", Min: 10, Max: 1000,
		MinMessage: "Mensagem deve ter no mínimo 10 caracteres.",
		MaxMessage: "Mensagem deve ter no máximo 1000 caracteres.",
	}
	OAB = Limit{
		Field: "oab", Min: 4, Max: 13,
		MinMessage: "Número da OAB inválido.",
		MaxMessage: "Número da OAB inválido.",
	}
)

// ValidationError es un error de campo, pensado para mostrarse junto al input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) FieldName() string { return e.Field }

func (e *ValidationError) Unwrap() error { return apperr.ErrValidation }

func Invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Truncate recorta s a max runas. Nunca corta una runa a la mitad.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

// Clip aplica el recorte del límite. Es lo que hace el input al tipear.
func (l Limit) Clip(s string) string {
	return Truncate(s, l.Max)
}

// Check valida sin recortar: sirve para valores que no pasaron por un input.
func (l Limit) Check(s string) error {
	n := utf8.RuneCountInString(s)
	if l.Min > 0 && n < l.Min {
		return Invalid(l.Field, l.minMessage())
	}
	if l.Max > 0 && n > l.Max {
		return Invalid(l.Field, l.maxMessage())
	}
	return nil
}

// Normalize recorta espacios, recorta al máximo y valida el mínimo.
// Es la misma capa que usa el formulario al enviar.
func (l Limit) Normalize(s string) (string, error) {
	s = l.Clip(strings.TrimSpace(s))
	if err := l.Check(s); err != nil {
		return "", err
	}
	return s, nil
}

func (l Limit) minMessage() string {
	if l.MinMessage != "" {
		return l.MinMessage
	}
	return fmt.Sprintf("%s deve ter no mínimo %d caracteres.", l.Field, l.Min)
}

func (l Limit) maxMessage() string {
	if l.MaxMessage != "" {
		return l.MaxMessage
	}
	return fmt.Sprintf("%s deve ter no máximo %d caracteres.", l.Field, l.Max)
}

// NormalizeEmail valida formato y largo. Devuelve el email en minúsculas.
func NormalizeEmail(s string) (string, error) {
	s = strings.ToLower(Email.Clip(strings.TrimSpace(s)))
	if s == "" {
		return "", Invalid(Email.Field, Email.MinMessage)
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return "", Invalid(Email.Field, Email.MinMessage)
	}
	return s, nil
}

// NormalizePassword no recorta espacios: son parte de la contraseña.
func NormalizePassword(s string) (string, error) {
	s = Password.Clip(s)
	if err := Password.Check(s); err != nil {
		return "", err
	}
	return s, nil
}

// número + seccional opcional, p.ej. "123456" o "123456/SP"
var oabPattern = regexp.MustCompile(`^[0-9]{4,10}(/[A-Z]{2})?$`)

func NormalizeOAB(s string) (string, error) {
	s = strings.ToUpper(OAB.Clip(strings.TrimSpace(s)))
	if !oabPattern.MatchString(s) {
		return "", Invalid(OAB.Field, OAB.MinMessage)
	}
	return s, nil
}
