package model

import (
	"sort"
	"strings"
)

// AccessPolicy tells which designations may enter restricted areas.
// The zero value denies everyone.
type AccessPolicy struct {
	allowed map[Designation]bool
}

// NewAccessPolicy returns a policy admitting exactly the given designations.
func NewAccessPolicy(allowed ...Designation) AccessPolicy {
	p := AccessPolicy{allowed: make(map[Designation]bool, len(allowed))}
	for _, d := range allowed {
		p.allowed[d] = true
	}
	return p
}

// Allows reports whether d may enter.
func (p AccessPolicy) Allows(d Designation) bool {
	return p.allowed[d]
}

// Allowed returns the admitted designations in load order.
func (p AccessPolicy) Allowed() []Designation {
	var out []Designation
	for _, d := range Designations {
		if p.allowed[d] {
			out = append(out, d)
		}
	}
	return out
}

// Clone returns an independent copy.
func (p AccessPolicy) Clone() AccessPolicy {
	return NewAccessPolicy(p.Allowed()...)
}

func (p AccessPolicy) String() string {
	allowed := p.Allowed()
	if len(allowed) == 0 {
		return "nobody"
	}
	names := make([]string, 0, len(allowed))
	for _, d := range allowed {
		names = append(names, d.String())
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
