package user

import (
	"golang.org/x/crypto/bcrypt"
)

// Role is the access level carried by an authenticated session.
type Role string

// roles
const (
	RoleNone    Role = ""
	RoleAdmin   Role = "admin"
	RoleFaculty Role = "faculty"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleFaculty
}

// Principal is the authenticated caller handed to every gated operation.
type Principal struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Anonymous is the principal of a request without a session.
var Anonymous = Principal{Role: RoleNone}

func (p Principal) IsAuthenticated() bool { return p.Role.Valid() }

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

func (p Principal) IsFaculty() bool { return p.Role == RoleFaculty }

// Require returns ErrForbidden unless p holds role.
func (p Principal) Require(role Role) error {
	if p.Role != role {
		return ErrForbidden
	}
	return nil
}

type User struct {
	ID           int
	Username     string
	Role         Role
	PasswordHash []byte
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) Principal() Principal {
	return Principal{Username: u.Username, Role: u.Role}
}
