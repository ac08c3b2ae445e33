package place

import "testing"

func intp(v int) *int { return &v }

func testPlaces() []Place {
	return []Place{
		{ID: 1, Name: "Great Falls Park", Category: CategoryNature, Setting: SettingOutdoor,
			DistanceMiles: f64(18), DriveTimeMinutes: intp(30), Rating: f64(4.8), KidFriendly: true},
		{ID: 2, Name: "National Aquarium", Category: CategoryAnimals, Setting: SettingIndoor,
			DistanceMiles: f64(39), DriveTimeMinutes: intp(55), Rating: f64(4.7), KidFriendly: true, WheelchairAccessible: true},
		{ID: 3, Name: "Harpers Ferry", Category: CategoryHistorical, Setting: SettingBoth,
			DistanceMiles: f64(65), DriveTimeMinutes: intp(75), Rating: f64(4.8), Favorite: true},
		{ID: 4, Name: "Mystery Spot", Category: CategoryGeneral, Setting: SettingBoth,
			Overview: "a roadside aquarium of oddities"},
	}
}

func ids(places []Place) []int64 {
	out := make([]int64, len(places))
	for i, p := range places {
		out[i] = p.ID
	}
	return out
}

func sameIDs(a []int64, b ...int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMatchEmptyDescriptorReturnsAllInOrder(t *testing.T) {
	got := Match(Descriptor{}, testPlaces())
	if !sameIDs(ids(got), 1, 2, 3, 4) {
		t.Fatalf("expected creation order 1..4, got %v", ids(got))
	}
}

func TestMatchSearchCoversNameAndOverview(t *testing.T) {
	got := Match(Descriptor{Search: "AQUARIUM"}, testPlaces())
	if !sameIDs(ids(got), 2, 4) {
		t.Fatalf("search should hit name and overview, got %v", ids(got))
	}
}

func TestMatchConstraintsAreConjunctive(t *testing.T) {
	got := Match(Descriptor{Search: "aquarium", WheelchairAccessible: true}, testPlaces())
	if !sameIDs(ids(got), 2) {
		t.Fatalf("expected only place 2, got %v", ids(got))
	}
}

func TestMatchSettingBothSatisfiesEitherRequirement(t *testing.T) {
	got := Match(Descriptor{IndoorOutdoor: SettingIndoor}, testPlaces())
	if !sameIDs(ids(got), 2, 3, 4) {
		t.Fatalf("both-setting places must pass an indoor filter, got %v", ids(got))
	}
}

func TestMatchMaxDistancePrefersDriveTime(t *testing.T) {
	// Place 1 is 18 miles but 30 drive minutes: a bound of 20 must exclude it
	// because drive time wins when present. Place 4 has neither signal and
	// always passes.
	got := Match(Descriptor{MaxDistance: f64(20)}, testPlaces())
	if !sameIDs(ids(got), 4) {
		t.Fatalf("expected only the unmeasured place, got %v", ids(got))
	}
}

func TestMatchMinRatingExcludesUnrated(t *testing.T) {
	got := Match(Descriptor{MinRating: f64(4.8)}, testPlaces())
	if !sameIDs(ids(got), 1, 3) {
		t.Fatalf("unrated places must fail a rating bound, got %v", ids(got))
	}
}

func TestMatchFavoritesOnly(t *testing.T) {
	got := Match(Descriptor{FavoritesOnly: true}, testPlaces())
	if !sameIDs(ids(got), 3) {
		t.Fatalf("expected only the favorite, got %v", ids(got))
	}
}

func TestSortDistanceNullsLast(t *testing.T) {
	got := Match(Descriptor{Sort: SortDistance}, testPlaces())
	if !sameIDs(ids(got), 1, 2, 3, 4) {
		t.Fatalf("expected ascending distance with nulls last, got %v", ids(got))
	}
}

func TestSortRatingDescendingWithNameTiebreak(t *testing.T) {
	// Places 1 and 3 tie at 4.8; "Great Falls Park" < "Harpers Ferry".
	got := Match(Descriptor{Sort: SortRating}, testPlaces())
	if !sameIDs(ids(got), 1, 3, 2, 4) {
		t.Fatalf("expected rating desc, ties by name, nulls last; got %v", ids(got))
	}
}

func TestMatchResultIsSubsetOfUnfiltered(t *testing.T) {
	all := testPlaces()
	got := Match(Descriptor{KidFriendly: true, MinRating: f64(1)}, all)
	seen := map[int64]bool{}
	for _, p := range all {
		seen[p.ID] = true
	}
	for _, p := range got {
		if !seen[p.ID] {
			t.Fatalf("result contains place %d not in the input", p.ID)
		}
	}
	if len(got) >= len(all) {
		t.Fatalf("adding constraints should shrink the set: %d -> %d", len(all), len(got))
	}
}

func TestNearbyOrdersByDriveTimeDifference(t *testing.T) {
	ref := Place{ID: 10, Name: "Ref", DriveTimeMinutes: intp(20)}
	others := []Place{
		ref,
		{ID: 11, Name: "Ten", DriveTimeMinutes: intp(10)},
		{ID: 12, Name: "Fifteen", DriveTimeMinutes: intp(15)},
		{ID: 13, Name: "ThirtyFive", DriveTimeMinutes: intp(35)},
		{ID: 14, Name: "TwoHundred", DriveTimeMinutes: intp(200)},
		{ID: 15, Name: "Unknown"},
	}
	got := Nearby(ref, others)
	if !sameIDs(ids(got), 12, 11, 13) {
		t.Fatalf("expected diffs 5,10,15 within threshold 20, got %v", ids(got))
	}
}

func TestNearbyCapsSuggestions(t *testing.T) {
	ref := Place{ID: 1, Name: "Ref", DriveTimeMinutes: intp(60)}
	var others []Place
	for i := int64(2); i <= 9; i++ {
		others = append(others, Place{ID: i, Name: string(rune('a' + i)), DriveTimeMinutes: intp(60 + int(i))})
	}
	got := Nearby(ref, others)
	if len(got) != 4 {
		t.Fatalf("expected at most 4 suggestions, got %d", len(got))
	}
}

func TestNearbyWithoutRefDriveTime(t *testing.T) {
	ref := Place{ID: 1, Name: "Ref"}
	got := Nearby(ref, []Place{{ID: 2, Name: "X", DriveTimeMinutes: intp(5)}})
	if got != nil {
		t.Fatalf("a ref with no drive time has no neighbors, got %v", ids(got))
	}
}
