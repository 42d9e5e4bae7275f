package model

import (
	"fmt"
	"strings"
	"time"
)

// Role is the closed set of account roles. Anything else is rejected at
// the boundary by ParseRole so role switches stay exhaustive.
type Role string

const (
	RoleParent Role = "PARENT"
	RoleChild  Role = "CHILD"
)

// ParseRole accepts the role in either case ("parent" and "PARENT" both
// appear on the wire) and rejects unknown values.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleParent:
		return RoleParent, nil
	case RoleChild:
		return RoleChild, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

type User struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email,omitempty"`
	Username  string     `json:"username,omitempty"`
	Password  string     `json:"-"`
	Role      Role       `json:"role"`
	Points    int        `json:"points"`
	ParentID  *int64     `json:"parentId,omitempty"`
	BirthDate *time.Time `json:"birthDate,omitempty"`
	Gender    string     `json:"gender,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// UserRef is the {id, name} projection joined onto tasks and rewards.
type UserRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
