package domain

import (
	"sort"
	"strings"
)

// StateInfo describes a US state (or DC) offered in the form.
type StateInfo struct {
	Code               string `json:"code"`
	Name               string `json:"name"`
	HasSpecialPrograms bool   `json:"has_special_programs"`
}

// UKRegionInfo describes a UK region offered in the form.
type UKRegionInfo struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Nation string `json:"nation"`
}

var stateNames = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas",
	"CA": "California", "CO": "Colorado", "CT": "Connecticut", "DE": "Delaware",
	"FL": "Florida", "GA": "Georgia", "HI": "Hawaii", "ID": "Idaho",
	"IL": "Illinois", "IN": "Indiana", "IA": "Iowa", "KS": "Kansas",
	"KY": "Kentucky", "LA": "Louisiana", "ME": "Maine", "MD": "Maryland",
	"MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota", "MS": "Mississippi",
	"MO": "Missouri", "MT": "Montana", "NE": "Nebraska", "NV": "Nevada",
	"NH": "New Hampshire", "NJ": "New Jersey", "NM": "New Mexico", "NY": "New York",
	"NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio", "OK": "Oklahoma",
	"OR": "Oregon", "PA": "Pennsylvania", "RI": "Rhode Island", "SC": "South Carolina",
	"SD": "South Dakota", "TN": "Tennessee", "TX": "Texas", "UT": "Utah",
	"VT": "Vermont", "VA": "Virginia", "WA": "Washington", "WV": "West Virginia",
	"WI": "Wisconsin", "WY": "Wyoming", "DC": "District of Columbia",
}

// States with a state-level charitable credit or program.
var specialProgramStates = map[string]bool{"AZ": true, "MS": true, "VT": true, "CO": true, "NH": true}

var ukRegions = []UKRegionInfo{
	{"NORTH_EAST", "North East", "England"},
	{"NORTH_WEST", "North West", "England"},
	{"YORKSHIRE", "Yorkshire and the Humber", "England"},
	{"EAST_MIDLANDS", "East Midlands", "England"},
	{"WEST_MIDLANDS", "West Midlands", "England"},
	{"EAST_OF_ENGLAND", "East of England", "England"},
	{"LONDON", "London", "England"},
	{"SOUTH_EAST", "South East", "England"},
	{"SOUTH_WEST", "South West", "England"},
	{"WALES", "Wales", "Wales"},
	{"SCOTLAND", "Scotland", "Scotland"},
	{"NORTHERN_IRELAND", "Northern Ireland", "Northern Ireland"},
}

// States returns all supported states ordered by code.
func States() []StateInfo {
	out := make([]StateInfo, 0, len(stateNames))
	for code, name := range stateNames {
		out = append(out, StateInfo{Code: code, Name: name, HasSpecialPrograms: specialProgramStates[code]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// UKRegions returns all supported UK regions.
func UKRegions() []UKRegionInfo {
	out := make([]UKRegionInfo, len(ukRegions))
	copy(out, ukRegions)
	return out
}

// IsStateCode reports whether code names a supported state.
func IsStateCode(code string) bool {
	_, ok := stateNames[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

// IsUKRegion reports whether code names a supported UK region.
func IsUKRegion(code string) bool {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, r := range ukRegions {
		if r.Code == code {
			return true
		}
	}
	return false
}
