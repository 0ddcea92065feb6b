package airport

import "fmt"

// StandManager tracks the stand pool in registration order.
type StandManager struct {
	stands []*Stand
}

// NewStandManager creates a manager over the given stands.
func NewStandManager(stands []*Stand) *StandManager {
	m := &StandManager{}
	m.RegisterStands(stands)
	return m
}

// RegisterStands replaces the tracked set.
func (m *StandManager) RegisterStands(stands []*Stand) {
	m.stands = append([]*Stand(nil), stands...)
}

// FindFree returns the first free stand whose class fits, or nil.
func (m *StandManager) FindFree(fits func(class string) bool) *Stand {
	for _, s := range m.stands {
		if !s.Occupied() && fits(s.Class) {
			return s
		}
	}
	return nil
}

// StatsForClass reports the total and free stand counts of a class.
func (m *StandManager) StatsForClass(class string) (total, free int) {
	for _, s := range m.stands {
		if s.Class != class {
			continue
		}
		total++
		if !s.Occupied() {
			free++
		}
	}
	return total, free
}

// AddStands appends n auto-labelled stands of a class and returns them.
// New stands are laid out in the row of their class on the apron.
func (m *StandManager) AddStands(class string, n int) []*Stand {
	row := m.rowOf(class)
	total, _ := m.StatsForClass(class)
	added := make([]*Stand, 0, n)
	for i := 0; i < n; i++ {
		idx := total + i
		label := fmt.Sprintf("%s-%d", standPrefix(class), idx+1)
		pos := Vec3{X: -150 + float64(idx)*standSpacing(class), Z: 80 + float64(row)*60}
		s := NewStand(class, label, pos)
		m.stands = append(m.stands, s)
		added = append(added, s)
	}
	return added
}

// Stands returns the tracked stands in registration order.
func (m *StandManager) Stands() []*Stand {
	return append([]*Stand(nil), m.stands...)
}

// Classes lists stand classes in order of first registration.
func (m *StandManager) Classes() []string {
	var out []string
	seen := map[string]bool{}
	for _, s := range m.stands {
		if !seen[s.Class] {
			seen[s.Class] = true
			out = append(out, s.Class)
		}
	}
	return out
}

// Occupied counts occupied stands across all classes.
func (m *StandManager) Occupied() int {
	n := 0
	for _, s := range m.stands {
		if s.Occupied() {
			n++
		}
	}
	return n
}

func (m *StandManager) rowOf(class string) int {
	for i, c := range m.Classes() {
		if c == class {
			return i
		}
	}
	return len(m.Classes())
}

func standPrefix(class string) string {
	switch class {
	case "ga_small":
		return "S"
	case "ga_medium":
		return "M"
	case "regional":
		return "R"
	case "narrowbody":
		return "G"
	case "widebody":
		return "W"
	case "cargo":
		return "C"
	}
	return class
}

func standSpacing(class string) float64 {
	switch class {
	case "ga_small":
		return 20
	case "ga_medium":
		return 30
	case "widebody", "cargo":
		return 80
	}
	return 50
}
