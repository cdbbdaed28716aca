package model

import (
	"fmt"
	"strings"
)

// Designation is the category a known identity was loaded from.
type Designation int

const (
	Student Designation = iota + 1
	Admin
	Teacher
	Guest
)

// Designations lists every designation in directory load order.
var Designations = []Designation{Student, Admin, Teacher, Guest}

func (d Designation) String() string {
	switch d {
	case Student:
		return "Student"
	case Admin:
		return "Admin"
	case Teacher:
		return "Teacher"
	case Guest:
		return "Guest"
	default:
		return fmt.Sprintf("Designation(%d)", int(d))
	}
}

// Valid reports whether d is one of the defined designations.
func (d Designation) Valid() bool {
	return d >= Student && d <= Guest
}

// Category returns the directory name holding images of this designation.
func (d Designation) Category() string {
	return strings.ToLower(d.String()) + "s"
}

// ParseDesignation accepts the display name ("Teacher"), the lower-case form
// or the category directory name ("teachers").
func ParseDesignation(s string) (Designation, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, d := range Designations {
		if s == strings.ToLower(d.String()) || s == d.Category() {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown designation %q", ErrInvalidInput, s)
}

// Embedding is a face descriptor produced by the detector.
type Embedding []float32

// KnownIdentity is one enrolled face.
type KnownIdentity struct {
	Name        string
	Designation Designation
	Embedding   Embedding
}

// Identity is the outcome of resolving a face: either a known person or Unknown.
type Identity struct {
	Known       bool
	Name        string
	Designation Designation
}

// UnknownName is the label used for unresolved faces.
const UnknownName = "Unknown"

// Unknown returns the unresolved identity.
func Unknown() Identity {
	return Identity{}
}

// KnownAs returns a resolved identity.
func KnownAs(name string, d Designation) Identity {
	return Identity{Known: true, Name: name, Designation: d}
}

// DisplayName returns the name, or "Unknown" for unresolved faces.
func (i Identity) DisplayName() string {
	if !i.Known {
		return UnknownName
	}
	return i.Name
}

// Label is the overlay text drawn next to a face.
func (i Identity) Label() string {
	if !i.Known {
		return UnknownName
	}
	return fmt.Sprintf("%s (%s)", i.Name, i.Designation)
}
