package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/weekender-app/weekender/internal/place"
)

// placeView is the render-time shape of a Place: identical to the domain
// type except that the image field is always a client-fetchable URL. Token
// refs are rewritten to the photo proxy here and nowhere else.
type placeView struct {
	ID                   int64                    `json:"id"`
	Name                 string                   `json:"name"`
	Category             place.Category           `json:"category"`
	IndoorOutdoor        place.Setting            `json:"indoorOutdoor"`
	Address              string                   `json:"address,omitempty"`
	Distance             *float64                 `json:"distance,omitempty"`
	DriveTime            *int                     `json:"driveTime,omitempty"`
	Rating               *float64                 `json:"rating,omitempty"`
	KidFriendly          bool                     `json:"kidFriendly"`
	WheelchairAccessible bool                     `json:"wheelchairAccessible"`
	Favorite             bool                     `json:"favorite"`
	Image                string                   `json:"image,omitempty"`
	Overview             string                   `json:"overview,omitempty"`
	NearbyRestaurants    []place.NearbyRestaurant `json:"nearbyRestaurants,omitempty"`
	Source               string                   `json:"source,omitempty"`
	CreatedAt            time.Time                `json:"createdAt"`
}

func toPlaceView(p place.Place) placeView {
	return placeView{
		ID:                   p.ID,
		Name:                 p.Name,
		Category:             p.Category,
		IndoorOutdoor:        p.Setting,
		Address:              p.Address,
		Distance:             p.DistanceMiles,
		DriveTime:            p.DriveTimeMinutes,
		Rating:               p.Rating,
		KidFriendly:          p.KidFriendly,
		WheelchairAccessible: p.WheelchairAccessible,
		Favorite:             p.Favorite,
		Image:                p.Image.DisplayURL(photoProxyPath),
		Overview:             p.Overview,
		NearbyRestaurants:    p.NearbyRestaurants,
		Source:               p.Source,
		CreatedAt:            p.CreatedAt,
	}
}

func toPlaceViews(places []place.Place) []placeView {
	out := make([]placeView, 0, len(places))
	for _, p := range places {
		out = append(out, toPlaceView(p))
	}
	return out
}

// rawFilterFromQuery lifts the query string into the raw filter shape.
// Unparseable numerics behave as absent; normalization clamps the rest.
func rawFilterFromQuery(r *http.Request) place.RawFilter {
	q := r.URL.Query()
	raw := place.RawFilter{
		Search:               q.Get("search"),
		Category:             q.Get("category"),
		Sort:                 q.Get("sort"),
		KidFriendly:          queryBool(q.Get("kidFriendly")),
		WheelchairAccessible: queryBool(q.Get("wheelchairAccessible")),
		IndoorOutdoor:        q.Get("indoorOutdoor"),
		FavoritesOnly:        queryBool(q.Get("favoritesOnly")),
	}
	if v, err := strconv.ParseFloat(q.Get("maxDistance"), 64); err == nil {
		raw.MaxDistance = &v
	}
	if v, err := strconv.ParseFloat(q.Get("minRating"), 64); err == nil {
		raw.MinRating = &v
	}
	return raw
}

func queryBool(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

func (s *Server) handleListPlaces(w http.ResponseWriter, r *http.Request) {
	descriptor := place.Normalize(rawFilterFromQuery(r))
	places, err := s.store.ListPlaces(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, 200, toPlaceViews(place.Match(descriptor, places)))
}

func (s *Server) handleGetPlace(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	p, err := s.store.GetPlace(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, 200, toPlaceView(p))
}

func (s *Server) handleNearbyPlaces(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	ref, err := s.store.GetPlace(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	places, err := s.store.ListPlaces(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, 200, toPlaceViews(place.Nearby(ref, places)))
}

func (s *Server) handleCreatePlace(w http.ResponseWriter, r *http.Request) {
	var draft place.Draft
	if err := decodeJSON(r, &draft); err != nil {
		s.writeError(w, err)
		return
	}
	created, err := s.store.CreatePlace(r.Context(), draft)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, 201, toPlaceView(created))
}

// placePatch is the partial update payload: only present fields are applied.
type placePatch struct {
	Name                 *string                   `json:"name"`
	Category             *string                   `json:"category"`
	IndoorOutdoor        *string                   `json:"indoorOutdoor"`
	Address              *string                   `json:"address"`
	Distance             *float64                  `json:"distance"`
	DriveTime            *int                      `json:"driveTime"`
	Rating               *float64                  `json:"rating"`
	KidFriendly          *bool                     `json:"kidFriendly"`
	WheelchairAccessible *bool                     `json:"wheelchairAccessible"`
	Favorite             *bool                     `json:"favorite"`
	Image                *string                   `json:"image"`
	Overview             *string                   `json:"overview"`
	NearbyRestaurants    *[]place.NearbyRestaurant `json:"nearbyRestaurants"`
	Source               *string                   `json:"source"`
}

func applyPatch(p *place.Place, patch placePatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Category != nil {
		p.Category = place.Category(strings.ToLower(strings.TrimSpace(*patch.Category)))
	}
	if patch.IndoorOutdoor != nil {
		p.Setting = place.Setting(strings.ToLower(strings.TrimSpace(*patch.IndoorOutdoor)))
	}
	if patch.Address != nil {
		p.Address = *patch.Address
	}
	if patch.Distance != nil {
		p.DistanceMiles = patch.Distance
	}
	if patch.DriveTime != nil {
		p.DriveTimeMinutes = patch.DriveTime
	}
	if patch.Rating != nil {
		p.Rating = patch.Rating
	}
	if patch.KidFriendly != nil {
		p.KidFriendly = *patch.KidFriendly
	}
	if patch.WheelchairAccessible != nil {
		p.WheelchairAccessible = *patch.WheelchairAccessible
	}
	if patch.Favorite != nil {
		p.Favorite = *patch.Favorite
	}
	if patch.Image != nil {
		p.Image = place.DecodeImageRef(*patch.Image)
	}
	if patch.Overview != nil {
		p.Overview = *patch.Overview
	}
	if patch.NearbyRestaurants != nil {
		p.NearbyRestaurants = *patch.NearbyRestaurants
	}
	if patch.Source != nil {
		p.Source = *patch.Source
	}
}

// draftFromPlace reuses the creation validation for updates; the normalized
// fields are copied back onto the place afterwards.
func draftFromPlace(p place.Place) place.Draft {
	return place.Draft{
		Name:                 p.Name,
		Category:             p.Category,
		Setting:              p.Setting,
		Address:              p.Address,
		DistanceMiles:        p.DistanceMiles,
		DriveTimeMinutes:     p.DriveTimeMinutes,
		Rating:               p.Rating,
		KidFriendly:          p.KidFriendly,
		WheelchairAccessible: p.WheelchairAccessible,
		Favorite:             p.Favorite,
		Image:                p.Image,
		Overview:             p.Overview,
		NearbyRestaurants:    p.NearbyRestaurants,
		Source:               p.Source,
	}
}

func (s *Server) handleUpdatePlace(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	var patch placePatch
	if err := decodeJSON(r, &patch); err != nil {
		s.writeError(w, err)
		return
	}

	p, err := s.store.GetPlace(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	applyPatch(&p, patch)

	draft := draftFromPlace(p)
	if err := draft.Validate(); err != nil {
		s.writeError(w, err)
		return
	}
	p.Name = draft.Name
	p.Category = draft.Category
	p.Setting = draft.Setting
	p.Rating = draft.Rating

	if err := s.store.SavePlace(r.Context(), p); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, 200, toPlaceView(p))
}

func (s *Server) handleDeletePlace(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.DeletePlace(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
