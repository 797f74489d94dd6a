package domain

// Role determines what an admin user may do.
type Role string

// User roles.
const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// User is an administrator account for the backend.
type User struct {
	Auditable
	Email        string `json:"email"`
	DisplayName  string `json:"display_name"`
	PasswordHash string `json:"-"` // argon2id encoded hash, never serialized
	Role         Role   `json:"role"`
}

// IsAdmin returns true for full administrators.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
