package character

import "testing"

func TestNewCharacterSheetDefaults(t *testing.T) {
	s := NewCharacterSheet("Alice", "a traveler")
	if s.Attributes != DefaultAttributes() {
		t.Fatalf("expected default attributes, got %+v", s.Attributes)
	}
	if s.Needs != DefaultNeeds() {
		t.Fatalf("expected default needs, got %+v", s.Needs)
	}
	if s.Morale != 100 {
		t.Fatalf("expected default morale 100, got %d", s.Morale)
	}
	if s.Relationships == nil {
		t.Fatal("expected Relationships map initialized")
	}
}

func TestClampAttribute(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-5, 3}, {0, 3}, {3, 3}, {10, 10}, {18, 18}, {25, 18},
	}
	for _, tt := range tests {
		if got := ClampAttribute(tt.in); got != tt.want {
			t.Errorf("ClampAttribute(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNeedsClamp(t *testing.T) {
	n := Needs{Hunger: -10, Thirst: 150, Socialization: 50, Sleep: 0}
	n.Clamp()
	if n.Hunger != 0 || n.Thirst != 100 || n.Socialization != 50 || n.Sleep != 0 {
		t.Fatalf("expected needs clamped to [0,100], got %+v", n)
	}
}

func TestPsychosocialMatrixClamp(t *testing.T) {
	var m PsychosocialMatrix
	m[0] = -20
	m[1] = 20
	m[2] = 5
	m.Clamp()
	if m[0] != -10 || m[1] != 10 || m[2] != 5 {
		t.Fatalf("expected matrix clamped to [-10,10], got %v", m)
	}
}

func TestClampMorale(t *testing.T) {
	s := NewCharacterSheet("Bob", "")
	s.Morale = -5
	s.ClampMorale()
	if s.Morale != 0 {
		t.Fatalf("expected morale clamped to 0, got %d", s.Morale)
	}
	s.Morale = 500
	s.ClampMorale()
	if s.Morale != 100 {
		t.Fatalf("expected morale clamped to 100, got %d", s.Morale)
	}
}

func TestClampRelationship(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-500, -100}, {-100, -100}, {0, 0}, {100, 100}, {500, 100},
	}
	for _, tt := range tests {
		if got := ClampRelationship(tt.in); got != tt.want {
			t.Errorf("ClampRelationship(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
