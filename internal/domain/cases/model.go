package cases

import (
	"strings"
	"time"
)

// Status del caso. El orden de declaración es el orden del ciclo de vida.
type Status string

const (
	StatusOpen         Status = "OPEN"
	StatusHasProposals Status = "HAS_PROPOSALS"
	StatusAccepted     Status = "ACCEPTED"
	StatusConcluded    Status = "CONCLUDED"
)

var lifecycle = []Status{StatusOpen, StatusHasProposals, StatusAccepted, StatusConcluded}

var wireNames = map[Status]string{
	StatusOpen:         "ABERTA",
	StatusHasProposals: "COM_PROPOSTAS",
	StatusAccepted:     "ACEITA",
	StatusConcluded:    "CONCLUIDA",
}

func (s Status) rank() int {
	for i, st := range lifecycle {
		if st == s {
			return i
		}
	}
	return -1
}

func (s Status) Valid() bool { return s.rank() >= 0 }

// WireName es el nombre que viaja en /causas/historico.
func (s Status) WireName() string { return wireNames[s] }

// CanAdvanceTo: solo hacia adelante y nunca a sí mismo.
func (s Status) CanAdvanceTo(next Status) bool {
	from, to := s.rank(), next.rank()
	return from >= 0 && to > from
}

// AcceptsProposals: se puede proponer y aceptar mientras nadie fue aceptado.
func (s Status) AcceptsProposals() bool {
	return s == StatusOpen || s == StatusHasProposals
}

// ParseStatus acepta nombre interno o de wire, sin importar mayúsculas.
func ParseStatus(raw string) (Status, bool) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	for _, st := range lifecycle {
		if raw == string(st) || raw == wireNames[st] {
			return st, true
		}
	}
	return "", false
}

// Case es un pedido de ayuda jurídica de un cidadão.
type Case struct {
	ID          string
	Title       string
	Description string

	OwnerID   string
	OwnerName string

	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Acceptance es la transición ya autorizada por el motor.
// El registro de propuestas la confirma junto con la marca de la propuesta.
type Acceptance struct {
	CaseID     string
	ProposalID string
	From       Status
	At         time.Time
}
