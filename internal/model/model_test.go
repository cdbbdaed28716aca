package model

import (
	"errors"
	"testing"
)

func TestParseRoleChoice(t *testing.T) {
	tests := []struct {
		input   int
		want    CameraRole
		wantErr bool
	}{
		{1, EntryGate, false},
		{2, ExitGate, false},
		{3, RestrictedArea, false},
		{4, Classroom, false},
		{5, Ordinary, false},
		{0, 0, true},
		{6, 0, true},
		{-1, 0, true},
	}

	for _, tt := range tests {
		got, err := ParseRoleChoice(tt.input)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("ParseRoleChoice(%d) error = %v, expected ErrInvalidInput", tt.input, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseRoleChoice(%d) = %v, %v; expected %v", tt.input, got, err, tt.want)
		}
	}
}

func TestParseDesignation(t *testing.T) {
	tests := []struct {
		input string
		want  Designation
	}{
		{"Student", Student},
		{"admins", Admin},
		{" teacher ", Teacher},
		{"GUESTS", Guest},
	}

	for _, tt := range tests {
		got, err := ParseDesignation(tt.input)
		if err != nil || got != tt.want {
			t.Errorf("ParseDesignation(%q) = %v, %v; expected %v", tt.input, got, err, tt.want)
		}
	}

	if _, err := ParseDesignation("janitor"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestDesignation_Category(t *testing.T) {
	want := []string{"students", "admins", "teachers", "guests"}
	for i, d := range Designations {
		if d.Category() != want[i] {
			t.Errorf("%v.Category() = %s, expected %s", d, d.Category(), want[i])
		}
	}
}

func TestAccessPolicy_DefaultDeniesAll(t *testing.T) {
	var p AccessPolicy
	for _, d := range Designations {
		if p.Allows(d) {
			t.Errorf("Zero policy should deny %v", d)
		}
	}
}

func TestParseAccessChoices(t *testing.T) {
	p, err := ParseAccessChoices([]int{3, 1, 3})
	if err != nil {
		t.Fatalf("ParseAccessChoices failed: %v", err)
	}

	if !p.Allows(Student) || !p.Allows(Teacher) {
		t.Errorf("Expected Student and Teacher allowed, got %s", p)
	}
	if p.Allows(Admin) || p.Allows(Guest) {
		t.Errorf("Expected Admin and Guest denied, got %s", p)
	}

	for _, bad := range [][]int{{5}, {1, 0}, {-2}} {
		if _, err := ParseAccessChoices(bad); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("ParseAccessChoices(%v) error = %v, expected ErrInvalidInput", bad, err)
		}
	}
}

func TestAccessPolicy_CloneIsIndependent(t *testing.T) {
	p := NewAccessPolicy(Teacher)
	c := p.Clone()
	p.allowed[Guest] = true

	if c.Allows(Guest) {
		t.Error("Clone should not see later mutations")
	}
	if !c.Allows(Teacher) {
		t.Error("Clone should keep Teacher")
	}
}

func TestValidateName(t *testing.T) {
	valid := []string{"Alice", "Bob Smith", "  Carol "}
	for _, n := range valid {
		if _, err := ValidateName(n); err != nil {
			t.Errorf("ValidateName(%q) unexpected error: %v", n, err)
		}
	}

	invalid := []string{"", "  ", "..", "a/b", `a\b`}
	for _, n := range invalid {
		if _, err := ValidateName(n); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("ValidateName(%q) error = %v, expected ErrInvalidInput", n, err)
		}
	}
}

func TestIdentity_Label(t *testing.T) {
	if got := Unknown().Label(); got != "Unknown" {
		t.Errorf("Unknown label = %q", got)
	}
	if got := KnownAs("Alice", Student).Label(); got != "Alice (Student)" {
		t.Errorf("Known label = %q", got)
	}
}
