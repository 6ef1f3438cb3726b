package proposals

import "time"

// Proposal es la oferta de un advogado para atender un caso.
type Proposal struct {
	ID     string
	CaseID string

	LawyerID   string
	LawyerName string

	Message        string
	SuggestedValue *float64 // opcional, >= 0

	CreatedAt  time.Time
	Accepted   bool
	AcceptedAt *time.Time
}
