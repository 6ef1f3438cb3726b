package accounts

import (
	"time"

	"advogados-solidarios/internal/domain/identity"
)

// Account es el registro persistido de un cidadão o advogado.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash []byte
	Role         identity.Role

	// OAB solo para advogados, p.ej. "123456/SP".
	OAB string

	CreatedAt time.Time
}

func (a Account) Identity() identity.Identity {
	return identity.Identity{ID: a.ID, Name: a.Name, Email: a.Email, Role: a.Role}
}
