// Package session holds the per-visitor selection state of the dashboard.
package session

import (
	"strings"

	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/dataset"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/provname"
)

// State is the selection of one session. It is a value: transitions return a
// new State and never modify the receiver.
type State struct {
	Province string             `json:"province"` // spelling of the source that selected it
	Key      string             `json:"key"`
	Scenario dataset.ScenarioID `json:"scenario"`
}

// New returns the initial state for a session.
func New(province string, scenario dataset.ScenarioID) State {
	return State{}.SelectProvince(province).SelectScenario(scenario)
}

// SelectProvince returns s with the province replaced by name. A blank name
// or a name equal to the current one leaves the state unchanged.
func (s State) SelectProvince(name string) State {
	name = strings.TrimSpace(name)
	if name == "" || name == s.Province {
		return s
	}
	s.Province = name
	s.Key = provname.Normalize(name)
	return s
}

// SelectScenario returns s with the scenario replaced by id. An empty id
// leaves the state unchanged.
func (s State) SelectScenario(id dataset.ScenarioID) State {
	if id == "" {
		return s
	}
	s.Scenario = id
	return s
}
