package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// ScenarioID identifies a Shared Socioeconomic Pathway projection table.
type ScenarioID string

const (
	SSP1 ScenarioID = "SSP1"
	SSP2 ScenarioID = "SSP2"
	SSP3 ScenarioID = "SSP3"
	SSP4 ScenarioID = "SSP4"
	SSP5 ScenarioID = "SSP5"
)

// ErrUnknownScenario is returned for identifiers outside the loaded set.
var ErrUnknownScenario = errors.New("unknown scenario")

// Scenario describes one pathway narrative.
type Scenario struct {
	ID          ScenarioID `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
}

var pathways = []Scenario{
	{SSP1, "Sustainability: Taking the Green Road",
		"Sustainable development pathway with low challenges to mitigation and adaptation."},
	{SSP2, "Middle of the Road",
		"Moderate challenges to mitigation and adaptation."},
	{SSP3, "Regional Rivalry: A Rocky Road",
		"A fragmented world with high socio-political barriers to both mitigation and adaptation."},
	{SSP4, "Inequality: A Road Divided",
		"An unequal world where adaptation remains difficult despite relatively low mitigation barriers."},
	{SSP5, "Fossil-fuelled Development: Taking the Highway",
		"Fossil-fuel-driven economic growth with high mitigation challenges but fewer adaptation difficulties."},
}

// Pathways returns the five standard scenarios in display order.
func Pathways() []Scenario {
	out := make([]Scenario, len(pathways))
	copy(out, pathways)
	return out
}

// Describe returns the narrative for id. Identifiers outside SSP1..SSP5 get
// a bare entry titled with the identifier itself.
func Describe(id ScenarioID) Scenario {
	for _, p := range pathways {
		if p.ID == id {
			return p
		}
	}
	return Scenario{ID: id, Title: string(id)}
}

// ParseScenario parses a user-supplied identifier such as "ssp3" or " SSP3".
func ParseScenario(s string) (ScenarioID, error) {
	id := ScenarioID(strings.ToUpper(strings.TrimSpace(s)))
	if id == "" {
		return "", fmt.Errorf("%w: empty identifier", ErrUnknownScenario)
	}
	return id, nil
}
