// Package account describes the staff and student logins listed by the admin users endpoint.
package account

import (
	"strings"

	"rinkdesk/internal/domain/ident"
)

// Roles known to the school API.
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

var roleLabels = map[string]string{
	RoleAdmin:   "Admin",
	RoleTeacher: "Teacher",
	RoleStudent: "Student",
}

// User is a login as returned by the admin users endpoint. Records are read-only here.
type User struct {
	ID        ident.ID `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Role      string   `json:"role"`
	CreatedAt string   `json:"created_at"`
}

// DisplayName returns "First Last", falling back to the email.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name == "" {
		return u.Email
	}
	return name
}

// CanManage reports whether a role may edit schedules and lesson plans.
func CanManage(role string) bool {
	return role == RoleAdmin || role == RoleTeacher
}

// RoleLabel is the display form of a role. Roles the API adds later are
// shown with their first letter upper-cased; an empty role shows the placeholder dash.
func RoleLabel(role string) string {
	role = strings.TrimSpace(role)
	if l, ok := roleLabels[strings.ToLower(role)]; ok {
		return l
	}
	if role == "" {
		return "—"
	}
	return strings.ToUpper(role[:1]) + role[1:]
}
