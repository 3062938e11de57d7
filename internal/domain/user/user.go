package user

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound     = errors.New("user: not found")
	ErrNameRequired = errors.New("user: name is required")
	ErrInvalidRole  = errors.New("user: invalid role")
)

// Role separates the two registration kinds. Sellers list and manage
// products; consumers bid, buy, and review.
type Role string

const (
	RoleConsumer Role = "consumer"
	RoleSeller   Role = "seller"
)

func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleConsumer:
		return RoleConsumer, nil
	case RoleSeller:
		return RoleSeller, nil
	default:
		return "", ErrInvalidRole
	}
}

type User struct {
	ID       string
	Name     string
	Role     Role
	JoinedAt time.Time
}

func New(id, name string, role Role) (*User, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrNameRequired
	}
	if role != RoleConsumer && role != RoleSeller {
		return nil, ErrInvalidRole
	}
	return &User{
		ID:       id,
		Name:     name,
		Role:     role,
		JoinedAt: time.Now().UTC(),
	}, nil
}

func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}
