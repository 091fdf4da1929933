package models

import (
	"database/sql/driver"
	"fmt"
)

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

const DefaultRole = RoleUser

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleUser:
		return Role(s), nil
	case "":
		return DefaultRole, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Value refuses to persist anything outside the enum; the zero value stores the default.
func (r Role) Value() (driver.Value, error) {
	if r == "" {
		return string(DefaultRole), nil
	}
	if !r.Valid() {
		return nil, fmt.Errorf("unknown role %q", string(r))
	}
	return string(r), nil
}

func (r *Role) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case nil:
		raw = ""
	default:
		return fmt.Errorf("cannot scan %T into Role", src)
	}

	role, err := ParseRole(raw)
	if err != nil {
		return err
	}
	*r = role
	return nil
}
