package models

import (
	"fmt"
	"strings"
)

// Scenario is one projection branch.
type Scenario string

const (
	ScenarioDown Scenario = "down"
	ScenarioBase Scenario = "base"
	ScenarioUp   Scenario = "up"
)

var Scenarios = []Scenario{ScenarioDown, ScenarioBase, ScenarioUp}

// ParseScenario trims and lowercases s and accepts only down, base or up.
func ParseScenario(s string) (Scenario, error) {
	switch sc := Scenario(strings.ToLower(strings.TrimSpace(s))); sc {
	case ScenarioDown, ScenarioBase, ScenarioUp:
		return sc, nil
	default:
		return "", fmt.Errorf("invalid scenario: '%s'", strings.TrimSpace(s))
	}
}
