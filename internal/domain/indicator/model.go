package indicator

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type is the closed enumeration of indicator categories tracked on a TLOH
// bulletin.
type Type string

const (
	TypeEndemicDisease    Type = "endemic_disease"
	TypeNeglectedTropical Type = "neglected_tropical_disease"
	TypeDeath             Type = "death"
)

// Types lists all indicator types in their fixed presentation order.
func Types() []Type {
	return []Type{TypeEndemicDisease, TypeNeglectedTropical, TypeDeath}
}

// ParseType validates a caller-supplied type string.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeEndemicDisease, TypeNeglectedTropical, TypeDeath:
		return Type(s), nil
	}
	return "", fmt.Errorf("unknown indicator type %q", s)
}

// Indicator is a named tracked condition: an endemic disease, a neglected
// tropical disease, or a death category. (name, type) is unique.
type Indicator struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Type      Type      `db:"type" json:"type"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
