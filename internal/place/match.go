package place

import (
	"sort"
	"strings"
)

// Match applies a canonical descriptor to the place collection and returns
// the ordered result set. A place is included iff every present constraint
// holds. The input order is creation order; without an explicit sort it is
// preserved.
func Match(d Descriptor, places []Place) []Place {
	out := make([]Place, 0, len(places))
	for _, p := range places {
		if matches(d, p) {
			out = append(out, p)
		}
	}
	sortPlaces(d.Sort, out)
	return out
}

func matches(d Descriptor, p Place) bool {
	if d.Search != "" && !containsFold(p.Name, d.Search) && !containsFold(p.Overview, d.Search) {
		return false
	}
	if d.Category != "" && p.Category != d.Category {
		return false
	}
	if d.KidFriendly && !p.KidFriendly {
		return false
	}
	if d.WheelchairAccessible && !p.WheelchairAccessible {
		return false
	}
	if d.FavoritesOnly && !p.Favorite {
		return false
	}
	if d.IndoorOutdoor != "" && p.Setting != d.IndoorOutdoor && p.Setting != SettingBoth {
		return false
	}
	if d.MaxDistance != nil {
		// Drive time is the better "how far is this really" signal when we
		// have it; fall back to raw miles.
		switch {
		case p.DriveTimeMinutes != nil:
			if float64(*p.DriveTimeMinutes) > *d.MaxDistance {
				return false
			}
		case p.DistanceMiles != nil:
			if *p.DistanceMiles > *d.MaxDistance {
				return false
			}
		}
	}
	if d.MinRating != nil {
		if p.Rating == nil || *p.Rating < *d.MinRating {
			return false
		}
	}
	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// sortPlaces orders results deterministically: nulls last, ties broken by
// name ascending so repeated renders paginate identically.
func sortPlaces(order SortOrder, places []Place) {
	switch order {
	case SortDistance:
		sort.SliceStable(places, func(i, j int) bool {
			a, b := places[i].DistanceMiles, places[j].DistanceMiles
			switch {
			case a == nil && b == nil:
				return nameLess(places[i], places[j])
			case a == nil:
				return false
			case b == nil:
				return true
			case *a != *b:
				return *a < *b
			default:
				return nameLess(places[i], places[j])
			}
		})
	case SortRating:
		sort.SliceStable(places, func(i, j int) bool {
			a, b := places[i].Rating, places[j].Rating
			switch {
			case a == nil && b == nil:
				return nameLess(places[i], places[j])
			case a == nil:
				return false
			case b == nil:
				return true
			case *a != *b:
				return *a > *b
			default:
				return nameLess(places[i], places[j])
			}
		})
	}
}

func nameLess(a, b Place) bool {
	return strings.ToLower(a.Name) < strings.ToLower(b.Name)
}

const (
	// nearbyThresholdMinutes bounds how far apart two drive times may be for
	// places to count as a combinable trip.
	nearbyThresholdMinutes = 20
	nearbyLimit            = 4
)

// Nearby returns combine-trip suggestions for ref: other places whose drive
// time is within the threshold of ref's, ordered by ascending difference and
// capped. This buckets by similar trip length, not geographic proximity.
func Nearby(ref Place, places []Place) []Place {
	if ref.DriveTimeMinutes == nil {
		return nil
	}
	refMinutes := *ref.DriveTimeMinutes

	type scored struct {
		place Place
		diff  int
	}
	var candidates []scored
	for _, p := range places {
		if p.ID == ref.ID || p.DriveTimeMinutes == nil {
			continue
		}
		diff := *p.DriveTimeMinutes - refMinutes
		if diff < 0 {
			diff = -diff
		}
		if diff <= nearbyThresholdMinutes {
			candidates = append(candidates, scored{place: p, diff: diff})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].diff != candidates[j].diff {
			return candidates[i].diff < candidates[j].diff
		}
		return nameLess(candidates[i].place, candidates[j].place)
	})
	if len(candidates) > nearbyLimit {
		candidates = candidates[:nearbyLimit]
	}
	out := make([]Place, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.place)
	}
	return out
}
