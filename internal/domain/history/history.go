// Package history deriva las filas del histórico a partir de los casos.
// No guarda nada: cada consulta se recalcula sobre el conjunto actual.
package history

import (
	"iter"
	"slices"
	"strings"
	"time"

	"advogados-solidarios/internal/domain/cases"
	"advogados-solidarios/internal/domain/identity"
)

// Row es una fila del histórico.
type Row struct {
	CaseID    string
	Title     string
	Status    cases.Status
	CreatedAt time.Time
}

// Project devuelve las filas visibles para viewer:
// cidadão => sus casos; advogado => casos donde envió propuesta.
// La secuencia es perezosa y se puede recorrer más de una vez.
func Project(items []cases.Case, viewer identity.Identity, proposedOn []string) iter.Seq[Row] {
	return func(yield func(Row) bool) {
		for _, c := range items {
			if !visible(c, viewer, proposedOn) {
				continue
			}
			if !yield(rowOf(c)) {
				return
			}
		}
	}
}

func visible(c cases.Case, viewer identity.Identity, proposedOn []string) bool {
	switch {
	case viewer.ID == "":
		return false
	case viewer.IsCitizen():
		return c.OwnerID == viewer.ID
	case viewer.IsLawyer():
		return slices.Contains(proposedOn, c.ID)
	default:
		return false
	}
}

func rowOf(c cases.Case) Row {
	return Row{CaseID: c.ID, Title: c.Title, Status: c.Status, CreatedAt: c.CreatedAt}
}

// Filter deja pasar las filas cuyo status coincide exactamente (sin importar
// mayúsculas) con el nombre interno o el de wire. Vacío => sin filtro.
// Un status desconocido no coincide con nada.
func Filter(seq iter.Seq[Row], status string) iter.Seq[Row] {
	status = strings.TrimSpace(status)
	if status == "" {
		return seq
	}
	want, ok := cases.ParseStatus(status)
	return func(yield func(Row) bool) {
		if !ok {
			return
		}
		for r := range seq {
			if r.Status != want {
				continue
			}
			if !yield(r) {
				return
			}
		}
	}
}

// Collect materializa la secuencia, más nuevos primero.
func Collect(seq iter.Seq[Row]) []Row {
	out := slices.Collect(seq)
	if out == nil {
		out = []Row{}
	}
	slices.SortStableFunc(out, func(a, b Row) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}
