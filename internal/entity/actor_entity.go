package entity

type Role string

const (
	RoleUser       Role = "user"
	RoleConsultant Role = "consultant"
	RoleAdmin      Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleConsultant, RoleAdmin:
		return true
	}
	return false
}

// Actor is the authenticated caller. Every core operation receives it explicitly.
type Actor struct {
	ID   uint
	Role Role
}

func (a Actor) Is(role Role) bool {
	return a.Role == role
}

// Recipient maps the actor onto its notification inbox. Admins have none.
func (a Actor) Recipient() (Recipient, bool) {
	switch a.Role {
	case RoleUser:
		return Recipient{Type: RecipientUser, Id: a.ID}, true
	case RoleConsultant:
		return Recipient{Type: RecipientConsultant, Id: a.ID}, true
	}
	return Recipient{}, false
}
