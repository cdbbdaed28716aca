package model

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ParseRoleChoice maps the operator's menu number (1..5) to a role.
func ParseRoleChoice(n int) (CameraRole, error) {
	role := CameraRole(n)
	if !role.Valid() {
		return 0, fmt.Errorf("%w: role choice %d out of range 1-%d", ErrInvalidInput, n, len(CameraRoles))
	}
	return role, nil
}

// ParseDesignationChoice maps the operator's menu number (1..4) to a designation.
func ParseDesignationChoice(n int) (Designation, error) {
	d := Designation(n)
	if !d.Valid() {
		return 0, fmt.Errorf("%w: designation choice %d out of range 1-%d", ErrInvalidInput, n, len(Designations))
	}
	return d, nil
}

// ParseAccessChoices builds a policy from menu numbers. Every number must be
// valid; duplicates are ignored.
func ParseAccessChoices(choices []int) (AccessPolicy, error) {
	allowed := make([]Designation, 0, len(choices))
	for _, n := range choices {
		d, err := ParseDesignationChoice(n)
		if err != nil {
			return AccessPolicy{}, err
		}
		allowed = append(allowed, d)
	}
	return NewAccessPolicy(allowed...), nil
}

// ValidateName checks an identity display name before it becomes a file name.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return "", fmt.Errorf("%w: name %q is not a valid file name", ErrInvalidInput, name)
	}
	return name, nil
}
