package user

import (
	"errors"
	"strings"
)

type Role string

const (
	RoleFarmer   Role = "FARMER"
	RoleCustomer Role = "CUSTOMER"
	RoleRetailer Role = "RETAILER"
	RoleAdmin    Role = "ADMIN"
)

var ErrUnknownRole = errors.New("unknown role")

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", ErrUnknownRole
	}
	return r, nil
}

func (r Role) IsValid() bool {
	switch r {
	case RoleFarmer, RoleCustomer, RoleRetailer, RoleAdmin:
		return true
	default:
		return false
	}
}

// DashboardPath is the screen a role lands on after login.
func (r Role) DashboardPath() string {
	return "/" + strings.ToLower(string(r)) + "dashboard"
}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (u User) Valid() bool {
	return u.ID != "" && u.Role.IsValid()
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Name            string `json:"name" binding:"required,min=2,max=80"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password"`
	Role            string `json:"role" binding:"required,oneof=FARMER CUSTOMER RETAILER ADMIN"`
}
