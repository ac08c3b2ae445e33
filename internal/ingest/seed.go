package ingest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/weekender-app/weekender/internal/place"
)

// SeedEntry is one place in the YAML seed file used by the bulk import.
type SeedEntry struct {
	Name                 string   `yaml:"name"`
	Category             string   `yaml:"category"`
	IndoorOutdoor        string   `yaml:"indoorOutdoor"`
	Address              string   `yaml:"address"`
	Distance             *float64 `yaml:"distance"`
	DriveTime            *int     `yaml:"driveTime"`
	Rating               *float64 `yaml:"rating"`
	KidFriendly          bool     `yaml:"kidFriendly"`
	WheelchairAccessible bool     `yaml:"wheelchairAccessible"`
	Image                string   `yaml:"image"`
	Overview             string   `yaml:"overview"`
	NearbyRestaurants    []struct {
		Name        string   `yaml:"name"`
		Description string   `yaml:"description"`
		Distance    *float64 `yaml:"distance"`
	} `yaml:"nearbyRestaurants"`
}

type seedFile struct {
	Places []SeedEntry `yaml:"places"`
}

// LoadSeedFile parses the YAML seed file into place drafts. Validation
// happens later, per draft, inside the import batch.
func LoadSeedFile(path string) ([]place.Draft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed yaml: %w", err)
	}

	drafts := make([]place.Draft, 0, len(f.Places))
	for _, e := range f.Places {
		d := place.Draft{
			Name:                 e.Name,
			Category:             place.ParseCategory(e.Category),
			Setting:              place.ParseSetting(e.IndoorOutdoor),
			Address:              e.Address,
			DistanceMiles:        e.Distance,
			DriveTimeMinutes:     e.DriveTime,
			Rating:               e.Rating,
			KidFriendly:          e.KidFriendly,
			WheelchairAccessible: e.WheelchairAccessible,
			Image:                place.DecodeImageRef(e.Image),
			Overview:             e.Overview,
			Source:               "Seed import",
		}
		for _, r := range e.NearbyRestaurants {
			d.NearbyRestaurants = append(d.NearbyRestaurants, place.NearbyRestaurant{
				Name:        r.Name,
				Description: r.Description,
				Distance:    r.Distance,
			})
		}
		drafts = append(drafts, d)
	}
	return drafts, nil
}
