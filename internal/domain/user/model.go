package user

import "time"

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleReception Role = "reception"
	RoleDoctor    Role = "doctor"
	RoleBilling   Role = "billing"
)

var validRoles = map[Role]bool{
	RoleAdmin: true, RoleReception: true, RoleDoctor: true, RoleBilling: true,
}

// User maps to the users table. PasswordHash never leaves the server.
type User struct {
	UserID       string    `db:"user_id" json:"user_id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Role         Role      `db:"role" json:"role"`
	Active       bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
