// Package scenario maps a free-text weather description to the climate
// catastrophe it turns into.
package scenario

import "strings"

// Default is returned when no keyword matches.
const Default = "generalized climate devastation with scorched land, failing ecosystems and extreme weather damage"

type Entry struct {
	Keyword  string `json:"keyword"`
	Scenario string `json:"scenario"`
}

// Order is precedence: the first keyword found in the description wins.
var table = []Entry{
	{Keyword: "sunny", Scenario: "extreme heatwave with cracked, parched earth and withered vegetation"},
	{Keyword: "rainy", Scenario: "catastrophic flooding with submerged streets and storm debris"},
	{Keyword: "snowy", Scenario: "vanished snow cover replaced by bare mud and retreating glaciers"},
	{Keyword: "cloudy", Scenario: "thick wildfire smoke and toxic haze blotting out the sky"},
	{Keyword: "windy", Scenario: "hurricane-force winds tearing apart buildings and trees"},
	{Keyword: "foggy", Scenario: "choking smog and air pollution at hazardous levels"},
	{Keyword: "stormy", Scenario: "superstorm devastation with collapsed infrastructure and flooding"},
	{Keyword: "clear", Scenario: "relentless drought with dried riverbeds and dust storms on the horizon"},
	{Keyword: "heat", Scenario: "record-breaking temperatures with wildfires burning across the landscape"},
	{Keyword: "cold", Scenario: "erratic polar vortex with frozen crops and ice-damaged power lines"},
	{Keyword: "beach", Scenario: "rising sea levels swallowing the shoreline and bleached, dead coral"},
	{Keyword: "forest", Scenario: "charred tree stumps left behind by uncontrolled megafires"},
	{Keyword: "city", Scenario: "urban heat island collapse with abandoned, flood-damaged streets"},
}

// Map returns the scenario for the first keyword contained in description,
// ignoring case, or Default.
func Map(description string) string {
	d := strings.ToLower(description)
	for _, e := range table {
		if strings.Contains(d, e.Keyword) {
			return e.Scenario
		}
	}
	return Default
}

// Table returns a copy of the lookup table in precedence order.
func Table() []Entry {
	out := make([]Entry, len(table))
	copy(out, table)
	return out
}
