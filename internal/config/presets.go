package config

import (
	"sort"

	"github.com/san-kum/labsim/internal/boundary"
	"github.com/san-kum/labsim/internal/challenge"
	"github.com/san-kum/labsim/internal/dynamo"
)

var Presets = map[string]map[string]dynamo.Params{
	"projectile": {
		"classic": {"angle": 45, "velocity": 20, "gravity": 9.8, "mass": 1},
		"lob":     {"angle": 75, "velocity": 20, "gravity": 9.8, "mass": 1},
		"line":    {"angle": 15, "velocity": 20, "gravity": 9.8, "mass": 1},
		"moon":    {"angle": 45, "velocity": 20, "gravity": 1.6, "mass": 1},
		"cannon":  {"angle": 30, "velocity": 50, "gravity": 9.8, "mass": 10},
	},
	"pendulum": {
		"small":   {"length": 1, "gravity": 9.8, "amplitude": 8, "damping": 0, "mass": 0.5},
		"large":   {"length": 2, "gravity": 9.8, "amplitude": 80, "damping": 0, "mass": 0.5},
		"damped":  {"length": 2, "gravity": 9.8, "amplitude": 30, "damping": 0.15, "mass": 0.5},
		"seconds": {"length": 0.99, "gravity": 9.8, "amplitude": 10, "damping": 0, "mass": 1},
		"mars":    {"length": 1, "gravity": 3.7, "amplitude": 20, "damping": 0, "mass": 0.5},
	},
	"ohms-law": {
		"r10":      {"resistance": 10},
		"r47":      {"resistance": 47},
		"r100":     {"resistance": 100},
		"overload": {"voltage": 24, "resistance": 10},
		"two-amp":  {"voltage": 20, "resistance": 10},
	},
}

func GetPreset(experiment, preset string) dynamo.Params {
	byName, ok := Presets[experiment]
	if !ok {
		return nil
	}
	p, ok := byName[preset]
	if !ok {
		return nil
	}
	return p.Clone()
}

func ListPresets(experiment string) []string {
	byName, ok := Presets[experiment]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var defaultChallenges = map[string][]challenge.Spec{
	"projectile": {
		{ID: "hit_20m", Type: challenge.Target, Label: "Hit 20m target", Target: 20, Margin: 2, TimeLimit: 60},
		{ID: "hit_30m", Type: challenge.Target, Label: "Hit 30m target", Target: 30, Margin: 2, TimeLimit: 60},
		{ID: "max_height_15", Type: challenge.MaxHeight, Label: "Max height under 15m", Limit: 15, TimeLimit: 45},
		{ID: "speed_run", Type: challenge.SpeedRun, Label: "Speed run: 3 launches in 30s", Count: 3, TimeLimit: 30},
	},
	"ohms-law": {
		{ID: "target_current_2A", Type: challenge.TargetValue, Kind: boundary.ResultCurrent, Label: "Set current to exactly 2A", Target: 2, Margin: 0.1, TimeLimit: 30},
		{ID: "max_power", Type: challenge.MaxValue, Kind: boundary.ResultPower, Label: "Max power under 100W", Limit: 100, TimeLimit: 30},
	},
	"pendulum": {
		{ID: "match_period_2s", Type: challenge.TargetValue, Kind: boundary.ResultPeriod, Label: "Set period to 2.0s", Target: 2.0, Margin: 0.1, TimeLimit: 45},
		{ID: "energy_conservation", Type: challenge.Observation, Label: "Observe 10 full swings", Count: 10, TimeLimit: 60},
	},
}

// ChallengesFor returns the configured challenges, falling back to the
// built-in list.
func (c *Config) ChallengesFor(experiment string) []challenge.Spec {
	if specs, ok := c.Challenges[experiment]; ok {
		return append([]challenge.Spec(nil), specs...)
	}
	return append([]challenge.Spec(nil), defaultChallenges[experiment]...)
}

func (c *Config) Challenge(experiment, id string) (challenge.Spec, bool) {
	for _, s := range c.ChallengesFor(experiment) {
		if s.ID == id {
			return s, true
		}
	}
	return challenge.Spec{}, false
}
