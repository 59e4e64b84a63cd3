package user

import (
	"time"

	"github.com/google/uuid"
)

// User is one account in the reporting system. The password hash never
// leaves the server.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	LastName     string    `db:"last_name" json:"last_name"`
	FirstName    string    `db:"first_name" json:"first_name"`
	Identifier   string    `db:"identifier" json:"identifier"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// FullName is the display name used in session claims.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
