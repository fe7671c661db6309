package resume

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Gazetteer recognises place names in free text.
type Gazetteer interface {
	Locate(text string) []string
}

var defaultCities = []string{
	"bangalore", "bengaluru", "mumbai", "delhi", "ncr", "gurgaon", "gurugram", "noida",
	"hyderabad", "chennai", "pune", "kolkata", "ahmedabad", "jaipur", "surat",
	"lucknow", "kanpur", "nagpur", "indore", "thane", "bhopal", "patna",
	"vadodara", "ghaziabad", "ludhiana", "agra", "nashik", "faridabad",
	"meerut", "rajkot", "varanasi", "srinagar", "aurangabad", "dhanbad",
	"amritsar", "allahabad", "ranchi", "howrah", "coimbatore", "vijayawada",
	"jodhpur", "madurai", "raipur", "kota", "guwahati", "chandigarh",
}

// DefaultCities lists major Indian cities, the markets the scrapers cover.
func DefaultCities() []string {
	out := make([]string, len(defaultCities))
	copy(out, defaultCities)
	return out
}

// CityGazetteer finds a fixed list of city names anywhere in the text.
type CityGazetteer struct {
	cities []string
}

func NewCityGazetteer(cities []string) *CityGazetteer {
	g := &CityGazetteer{}
	seen := make(map[string]struct{}, len(cities))
	for _, c := range cities {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		g.cities = append(g.cities, c)
	}
	return g
}

// Locate returns the title-cased cities mentioned in text, in list order.
func (g *CityGazetteer) Locate(text string) []string {
	lower := strings.ToLower(text)
	title := cases.Title(language.English)

	var found []string
	for _, c := range g.cities {
		if strings.Contains(lower, c) {
			found = append(found, title.String(c))
		}
	}
	return found
}
