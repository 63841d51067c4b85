package models

// Role constants for portal users.
const (
	RoleSuperuser = "superuser"
	RoleModerator = "moderator"
	RoleUser      = "user"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleSuperuser, RoleModerator, RoleUser}

// IsValidRole checks if the given role is valid.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// User is a portal account. PasswordHash is a bcrypt hash and never leaves
// the server.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Firstname    string `json:"firstname"`
	Lastname     string `json:"lastname"`
	EmployeeID   string `json:"employee_id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	PasswordHash string `json:"password_hash,omitempty"`
}

// CanModerate reports whether the user may approve, reject, or delete
// submissions.
func (u *User) CanModerate() bool {
	return u.Role == RoleSuperuser || u.Role == RoleModerator
}

// Public returns a copy safe to send to clients.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}
