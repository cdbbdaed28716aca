package oracle

import (
	"math"
	"testing"

	"campusguard/internal/model"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b   model.Embedding
		want   float64
		wantOK bool
	}{
		{model.Embedding{0, 0}, model.Embedding{3, 4}, 5, true},
		{model.Embedding{1, 1, 1}, model.Embedding{1, 1, 1}, 0, true},
		{model.Embedding{1}, model.Embedding{1, 2}, 0, false},
		{nil, nil, 0, false},
	}

	for _, tt := range tests {
		got, ok := Distance(tt.a, tt.b)
		if ok != tt.wantOK || math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Distance(%v, %v) = %v, %v; expected %v, %v", tt.a, tt.b, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestDistanceOracle_Compare(t *testing.T) {
	o := NewDistanceOracle(0.6)
	known := []model.Embedding{{0, 0}, {0.5, 0}, {1, 1}, {0.7, 0}}

	got := o.Compare(known, model.Embedding{0, 0})
	want := []bool{true, true, false, false}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Compare[%d] = %v, expected %v", i, got[i], want[i])
		}
	}
}

func TestNewDistanceOracle_DefaultTolerance(t *testing.T) {
	if o := NewDistanceOracle(0); o.Tolerance != DefaultTolerance {
		t.Errorf("Expected default tolerance, got %v", o.Tolerance)
	}
}

func TestFirstMatch(t *testing.T) {
	o := NewDistanceOracle(0.1)
	known := []model.Embedding{{5, 5}, {1, 1}, {1, 1.05}}

	if got := FirstMatch(o, known, model.Embedding{1, 1}); got != 1 {
		t.Errorf("FirstMatch = %d, expected 1", got)
	}
	if got := FirstMatch(o, known, model.Embedding{9, 9}); got != -1 {
		t.Errorf("FirstMatch = %d, expected -1", got)
	}
	if AnyMatch(o, nil, model.Embedding{1, 1}) {
		t.Error("AnyMatch on empty set should be false")
	}
}
