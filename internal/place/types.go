package place

import (
	"strings"
	"time"

	"github.com/weekender-app/weekender/internal/apperr"
)

type Category string

const (
	CategoryNature      Category = "nature"
	CategoryFamily      Category = "family"
	CategoryAnimals     Category = "animals"
	CategoryAdventurous Category = "adventurous"
	CategoryExercise    Category = "exercise"
	CategoryHistorical  Category = "historical"
	CategoryEducational Category = "educational"
	CategorySeasonal    Category = "seasonal"
	CategoryDining      Category = "dining"
	CategoryIndoor      Category = "indoor"
	CategoryOutdoor     Category = "outdoor"
	CategoryTheme       Category = "theme"
	CategoryBeach       Category = "beach"
	CategoryGeneral     Category = "general"
)

var knownCategories = map[Category]struct{}{
	CategoryNature: {}, CategoryFamily: {}, CategoryAnimals: {},
	CategoryAdventurous: {}, CategoryExercise: {}, CategoryHistorical: {},
	CategoryEducational: {}, CategorySeasonal: {}, CategoryDining: {},
	CategoryIndoor: {}, CategoryOutdoor: {}, CategoryTheme: {},
	CategoryBeach: {}, CategoryGeneral: {},
}

// categoryAliases folds the labels extractors tend to emit onto the enum.
var categoryAliases = map[string]Category{
	"attraction":     CategoryGeneral,
	"museum":         CategoryEducational,
	"park":           CategoryNature,
	"zoo":            CategoryAnimals,
	"aquarium":       CategoryAnimals,
	"restaurant":     CategoryDining,
	"amusement park": CategoryTheme,
	"theme park":     CategoryTheme,
}

// ParseCategory folds arbitrary extractor/UI category strings onto the enum.
// Unknown values land on "general" rather than failing the record.
func ParseCategory(raw string) Category {
	key := strings.ToLower(strings.TrimSpace(raw))
	c := Category(key)
	if _, ok := knownCategories[c]; ok {
		return c
	}
	if alias, ok := categoryAliases[key]; ok {
		return alias
	}
	return CategoryGeneral
}

type Setting string

const (
	SettingIndoor  Setting = "indoor"
	SettingOutdoor Setting = "outdoor"
	SettingBoth    Setting = "both"
)

func ParseSetting(raw string) Setting {
	switch Setting(strings.ToLower(strings.TrimSpace(raw))) {
	case SettingIndoor:
		return SettingIndoor
	case SettingOutdoor:
		return SettingOutdoor
	default:
		return SettingBoth
	}
}

type NearbyRestaurant struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Distance    *float64 `json:"distance,omitempty"`
}

type Place struct {
	ID                   int64              `json:"id"`
	Name                 string             `json:"name"`
	Category             Category           `json:"category"`
	Setting              Setting            `json:"indoorOutdoor"`
	Address              string             `json:"address,omitempty"`
	DistanceMiles        *float64           `json:"distance,omitempty"`
	DriveTimeMinutes     *int               `json:"driveTime,omitempty"`
	Rating               *float64           `json:"rating,omitempty"`
	KidFriendly          bool               `json:"kidFriendly"`
	WheelchairAccessible bool               `json:"wheelchairAccessible"`
	Favorite             bool               `json:"favorite"`
	Image                ImageRef           `json:"image"`
	Overview             string             `json:"overview,omitempty"`
	NearbyRestaurants    []NearbyRestaurant `json:"nearbyRestaurants,omitempty"`
	Source               string             `json:"source,omitempty"`
	CreatedAt            time.Time          `json:"createdAt"`
	Deleted              bool               `json:"-"`
}

// Draft is a place-creation payload: everything a Place carries except
// identity and bookkeeping. The extraction normalizer and the seed importer
// both produce Drafts; the store assigns the id on insert.
type Draft struct {
	Name                 string             `json:"name"`
	Category             Category           `json:"category"`
	Setting              Setting            `json:"indoorOutdoor"`
	Address              string             `json:"address,omitempty"`
	DistanceMiles        *float64           `json:"distance,omitempty"`
	DriveTimeMinutes     *int               `json:"driveTime,omitempty"`
	Rating               *float64           `json:"rating,omitempty"`
	KidFriendly          bool               `json:"kidFriendly"`
	WheelchairAccessible bool               `json:"wheelchairAccessible"`
	Favorite             bool               `json:"favorite"`
	Image                ImageRef           `json:"image"`
	Overview             string             `json:"overview,omitempty"`
	NearbyRestaurants    []NearbyRestaurant `json:"nearbyRestaurants,omitempty"`
	Source               string             `json:"source,omitempty"`
}

// Validate enforces the creation contract. Ratings outside 0-5 are clamped,
// not rejected; a missing name is the only hard failure.
func (d *Draft) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return apperr.ValidationField("name", "name is required")
	}
	if d.Category == "" {
		d.Category = CategoryGeneral
	} else if _, ok := knownCategories[d.Category]; !ok {
		return apperr.ValidationField("category", "unknown category "+string(d.Category))
	}
	if d.Setting == "" {
		d.Setting = SettingBoth
	} else if d.Setting != SettingIndoor && d.Setting != SettingOutdoor && d.Setting != SettingBoth {
		return apperr.ValidationField("indoorOutdoor", "must be indoor, outdoor, or both")
	}
	if d.Rating != nil {
		r := clamp(*d.Rating, 0, 5)
		d.Rating = &r
	}
	if d.DistanceMiles != nil && *d.DistanceMiles < 0 {
		return apperr.ValidationField("distance", "distance cannot be negative")
	}
	if d.DriveTimeMinutes != nil && *d.DriveTimeMinutes < 0 {
		return apperr.ValidationField("driveTime", "drive time cannot be negative")
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
