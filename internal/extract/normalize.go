package extract

import (
	"strings"

	"github.com/weekender-app/weekender/internal/logger"
	"github.com/weekender-app/weekender/internal/place"
)

// defaultCategory is what a candidate gets when the extractor could not
// classify it.
const defaultCategory = "Attraction"

// Venues that serve alcohol are out of scope for a family weekend-trip
// catalog, as are national chains: both are rejected on a case-insensitive
// substring match against the candidate name or category.
var disallowedTerms = []string{
	"bar",
	"winery",
	"brewery",
}

var chainNames = []string{
	"starbucks",
	"mcdonald's",
	"mcdonalds",
	"burger king",
	"wendy's",
	"taco bell",
	"subway",
	"dunkin",
	"chipotle",
	"applebee's",
	"olive garden",
	"chili's",
	"panera",
	"kfc",
	"domino's",
	"pizza hut",
}

// Excluded reports whether a candidate name/category hits the disallowed
// venue or chain lists.
func Excluded(name, category string) bool {
	n := strings.ToLower(name)
	c := strings.ToLower(category)
	for _, term := range disallowedTerms {
		if strings.Contains(n, term) || strings.Contains(c, term) {
			return true
		}
	}
	for _, chain := range chainNames {
		if strings.Contains(n, chain) {
			return true
		}
	}
	return false
}

// Normalize coerces raw extractor output into validated place-creation
// drafts. Bad candidates are dropped and logged, never abort the batch; the
// returned slice may be empty, which is a valid result distinct from an
// extraction failure.
func Normalize(cands []Candidate, src Source, log logger.Logger) []place.Draft {
	attribution := src.Attribution()
	drafts := make([]place.Draft, 0, len(cands))
	for _, c := range cands {
		name := strings.TrimSpace(c.Name)
		if !c.Found || name == "" {
			continue
		}
		if Excluded(name, c.Category) {
			log.Info("candidate excluded",
				logger.String("name", name),
				logger.String("category", c.Category))
			continue
		}

		category := strings.TrimSpace(c.Category)
		if category == "" {
			category = defaultCategory
		}

		address := strings.TrimSpace(c.Address)
		if address == "" {
			address = composeAddress(c.City, c.State)
		}

		d := place.Draft{
			Name:     name,
			Category: place.ParseCategory(category),
			Setting:  place.SettingBoth,
			Address:  address,
			Overview: strings.TrimSpace(c.Overview),
			Image:    place.DirectImage(c.ImageURL),
			Source:   attribution,
		}
		if err := d.Validate(); err != nil {
			log.Warn("candidate dropped",
				logger.String("name", name),
				logger.Error(err))
			continue
		}
		drafts = append(drafts, d)
	}
	return drafts
}

func composeAddress(city, state string) string {
	city = strings.TrimSpace(city)
	state = strings.TrimSpace(state)
	switch {
	case city != "" && state != "":
		return city + ", " + state
	case city != "":
		return city
	case state != "":
		return state
	default:
		return ""
	}
}
