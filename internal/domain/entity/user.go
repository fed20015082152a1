package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"
	RoleSystem  = "system"
)

// User representa un actor que puede firmar movimientos del ledger.
// IsSystem marca la identidad de respaldo usada cuando no hay usuario autenticado.
type User struct {
	ID           string
	Email        string // único; clave estable de la identidad de sistema
	PasswordHash string // bcrypt hash
	Name         string
	Role         string
	IsSystem     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
