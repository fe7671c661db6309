package scoring

import (
	"math"
	"regexp"
	"strconv"
)

var (
	rangePattern  = regexp.MustCompile(`(?i)(\d+)[-\s]*(?:to|-)[-\s]*(\d+)`)
	singlePattern = regexp.MustCompile(`(?i)(\d+)\+?\s*(?:years?|yrs?)`)
)

const (
	experienceFull      = 20.0
	experienceUnknown   = 10.0
	experienceFloor     = 10.0
	underQualifiedStep  = 5.0
	overQualifiedStep   = 2.0
	experienceMatchMark = 10.0
)

// Requirement is the parsed experience demand of a posting.
type Requirement struct {
	Min, Max float64
	Kind     RequirementKind
}

type RequirementKind int

const (
	RequirementNone RequirementKind = iota
	RequirementRange
	RequirementAtLeast
)

// ParseRequirement reads texts such as "3-5 years", "2 to 4 Yrs" or "5+ years".
func ParseRequirement(text string) Requirement {
	if m := rangePattern.FindStringSubmatch(text); m != nil {
		lo, errLo := strconv.ParseFloat(m[1], 64)
		hi, errHi := strconv.ParseFloat(m[2], 64)
		if errLo == nil && errHi == nil {
			return Requirement{Min: lo, Max: hi, Kind: RequirementRange}
		}
	}

	if m := singlePattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.ParseFloat(m[1], 64); err == nil {
			return Requirement{Min: n, Kind: RequirementAtLeast}
		}
	}

	return Requirement{}
}

// experiencePoints rates years against the requirement on a 0..20 scale.
func experiencePoints(req Requirement, years float64) float64 {
	switch req.Kind {
	case RequirementRange:
		switch {
		case years >= req.Min && years <= req.Max:
			return experienceFull
		case years < req.Min:
			return math.Max(0, experienceFull-underQualifiedStep*(req.Min-years))
		default:
			return math.Max(experienceFloor, experienceFull-overQualifiedStep*(years-req.Max))
		}
	case RequirementAtLeast:
		if years >= req.Min {
			return experienceFull
		}
		return math.Max(0, experienceFull-underQualifiedStep*(req.Min-years))
	default:
		return experienceUnknown
	}
}
