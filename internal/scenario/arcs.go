package scenario

// BuiltIn returns predefined progression arcs for autoplay runs.
func BuiltIn() map[string]Scenario {
	return map[string]Scenario{
		"grass-strip": {
			Name:        "Grass Strip",
			Description: "Grow a farm strip into a paved general aviation field.",
			Phases: []Phase{
				{
					Name:        "setup",
					Description: "Open a second apron row and start advertising.",
					Purchases:   []string{"ga_apron", "marketing"},
					Triggers:    []Trigger{{Event: EventReceived, Value: 10, Next: "growth"}},
				},
				{
					Name:        "growth",
					Description: "Pave the runway and open the FBO.",
					Purchases:   []string{"paved_runway", "fbo"},
					Triggers:    []Trigger{{Event: EventBank, Value: 1500, Next: "expansion"}},
				},
				{
					Name:        "expansion",
					Description: "Light the runway for night traffic and add medium stands.",
					Purchases:   []string{"runway_lights", "medium_apron"},
					Triggers:    []Trigger{{Event: EventDay, Value: 3, Next: "steady"}},
				},
				{
					Name:        "steady",
					Description: "Let traffic settle.",
				},
			},
		},
		"regional-hub": {
			Name:        "Regional Hub",
			Description: "Build the tower and gates needed for regional jets.",
			Phases: []Phase{
				{
					Name:        "setup",
					Description: "Pave and extend the runway.",
					Purchases:   []string{"paved_runway", "ga_apron"},
					Triggers:    []Trigger{{Event: EventReceived, Value: 20, Next: "growth"}},
				},
				{
					Name:        "growth",
					Description: "Extend the runway and build the tower.",
					Purchases:   []string{"runway_extension", "tower"},
					Triggers:    []Trigger{{Event: EventBank, Value: 8000, Next: "expansion"}},
				},
				{
					Name:        "expansion",
					Description: "Open regional gates.",
					Purchases:   []string{"regional_gates", "taxi_exit"},
					Triggers:    []Trigger{{Event: EventDay, Value: 5, Next: "steady"}},
				},
				{
					Name:        "steady",
					Description: "Regional traffic flows.",
				},
			},
		},
		"international": {
			Name:        "International",
			Description: "Pour concrete and open widebody gates on a parallel runway.",
			Phases: []Phase{
				{
					Name:        "setup",
					Description: "Concrete runway.",
					Purchases:   []string{"paved_runway", "concrete_runway"},
					Triggers:    []Trigger{{Event: EventReceived, Value: 50, Next: "growth"}},
				},
				{
					Name:        "growth",
					Description: "Narrowbody gates.",
					Purchases:   []string{"narrowbody_gates", "runway_extension"},
					Triggers:    []Trigger{{Event: EventBank, Value: 45000, Next: "expansion"}},
				},
				{
					Name:        "expansion",
					Description: "Widebody gates and a parallel runway.",
					Purchases:   []string{"widebody_gates", "parallel_runway"},
					Triggers:    []Trigger{{Event: EventDay, Value: 10, Next: "steady"}},
				},
				{
					Name:        "steady",
					Description: "Long-haul operations.",
				},
			},
		},
	}
}
