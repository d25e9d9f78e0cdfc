package models

import (
	"fmt"
	"time"
)

// UserStatus is the lifecycle state of a user.
type UserStatus string

const (
	UserStatusInvited   UserStatus = "invited"
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusDisabled  UserStatus = "disabled"
)

// ValidateUserStatus returns an error unless s is a known status.
func ValidateUserStatus(s UserStatus) error {
	switch s {
	case UserStatusInvited, UserStatusActive, UserStatusSuspended, UserStatusDisabled:
		return nil
	}
	return fmt.Errorf("invalid user status %q: must be one of invited, active, suspended, disabled", s)
}

// User is an identity record stored in the internal database. AuthSubject is
// the subject claim issued by the external identity provider.
type User struct {
	UserID      string     `json:"user_id"`
	AuthSubject string     `json:"auth_subject"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	IsAdmin     bool       `json:"is_admin"`
	Status      UserStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ModifiedAt  time.Time  `json:"modified_at"`
}

// IsActive reports whether the user may use the API.
func (u *User) IsActive() bool { return u.Status == UserStatusActive }

// UserCreate is the admin create payload.
type UserCreate struct {
	AuthSubject string     `json:"auth_subject" yaml:"auth_subject"`
	Email       string     `json:"email" yaml:"email"`
	FullName    string     `json:"full_name" yaml:"full_name"`
	IsAdmin     bool       `json:"is_admin" yaml:"is_admin"`
	Status      UserStatus `json:"status" yaml:"status"`
}

// UserUpdate carries optional changes; nil fields are left untouched.
type UserUpdate struct {
	Email    *string     `json:"email,omitempty"`
	FullName *string     `json:"full_name,omitempty"`
	IsAdmin  *bool       `json:"is_admin,omitempty"`
	Status   *UserStatus `json:"status,omitempty"`
}
