package airport

import (
	"errors"
	"fmt"
)

var (
	ErrStandOccupied = errors.New("stand occupied")
	ErrNotOccupant   = errors.New("flight does not occupy stand")
)

// Stand is a parking position of one class. At most one flight holds it.
type Stand struct {
	Class    string `json:"class"`
	Label    string `json:"label"`
	Position Vec3   `json:"position"`

	occupant string
}

// NewStand creates a free stand.
func NewStand(class, label string, pos Vec3) *Stand {
	return &Stand{Class: class, Label: label, Position: pos}
}

func (s *Stand) Occupied() bool   { return s.occupant != "" }
func (s *Stand) Occupant() string { return s.occupant }

// Occupy marks the stand as held by flightID.
func (s *Stand) Occupy(flightID string) error {
	if s.occupant != "" {
		return fmt.Errorf("%s held by %s: %w", s.Label, s.occupant, ErrStandOccupied)
	}
	s.occupant = flightID
	return nil
}

// Vacate releases the stand. Only the occupying flight may release it.
func (s *Stand) Vacate(flightID string) error {
	if s.occupant != flightID {
		return fmt.Errorf("%s: %w", s.Label, ErrNotOccupant)
	}
	s.occupant = ""
	return nil
}
