package place

import (
	"strings"
)

type SortOrder string

const (
	SortNone     SortOrder = ""
	SortDistance SortOrder = "distance"
	SortRating   SortOrder = "rating"
)

// maxDistanceUnbounded is the UI's slider ceiling: at or above it the
// distance filter means "no constraint".
const maxDistanceUnbounded = 100

// RawFilter is the UI filter state as it arrives, no-op sentinels and all.
type RawFilter struct {
	Search               string
	Category             string
	Sort                 string
	KidFriendly          bool
	WheelchairAccessible bool
	IndoorOutdoor        string
	MaxDistance          *float64
	MinRating            *float64
	FavoritesOnly        bool
}

// Descriptor is the canonical query form: an absent (nil/zero) field means
// "no constraint". Sentinel values never survive normalization, so the
// matcher only ever checks structural presence.
type Descriptor struct {
	Search               string
	Category             Category
	Sort                 SortOrder
	KidFriendly          bool
	WheelchairAccessible bool
	IndoorOutdoor        Setting // "" or a concrete indoor/outdoor requirement
	MaxDistance          *float64
	MinRating            *float64
	FavoritesOnly        bool
}

// Normalize turns raw filter state into the minimal canonical descriptor.
// Pure; malformed numeric bounds are clamped to the nearest valid value,
// never rejected.
func Normalize(raw RawFilter) Descriptor {
	var d Descriptor

	if s := strings.TrimSpace(raw.Search); s != "" {
		d.Search = s
	}

	if c := strings.ToLower(strings.TrimSpace(raw.Category)); c != "" && c != "all" {
		if _, ok := knownCategories[Category(c)]; ok {
			d.Category = Category(c)
		}
	}

	switch SortOrder(strings.ToLower(strings.TrimSpace(raw.Sort))) {
	case SortDistance:
		d.Sort = SortDistance
	case SortRating:
		d.Sort = SortRating
	}

	d.KidFriendly = raw.KidFriendly
	d.WheelchairAccessible = raw.WheelchairAccessible
	d.FavoritesOnly = raw.FavoritesOnly

	switch Setting(strings.ToLower(strings.TrimSpace(raw.IndoorOutdoor))) {
	case SettingIndoor:
		d.IndoorOutdoor = SettingIndoor
	case SettingOutdoor:
		d.IndoorOutdoor = SettingOutdoor
	}

	if raw.MaxDistance != nil {
		v := *raw.MaxDistance
		if v < 0 {
			v = 0
		}
		if v < maxDistanceUnbounded {
			d.MaxDistance = &v
		}
	}

	if raw.MinRating != nil {
		v := clamp(*raw.MinRating, 0, 5)
		if v > 0 {
			d.MinRating = &v
		}
	}

	return d
}
