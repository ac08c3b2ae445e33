package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/weekender-app/weekender/internal/apperr"
	"github.com/weekender-app/weekender/internal/place"
	"github.com/weekender-app/weekender/internal/plan"
)

// Store persists places and weekend plans in SQLite. Updates are whole-row
// writes with last-write-wins semantics; concurrent edits of the same record
// are not reconciled. Place-name uniqueness is deliberately NOT enforced
// here: the dedup gate in the ingest package is the sole line of defense.
type Store struct {
	db    *sqlx.DB
	mu    sync.Mutex
	clock func() time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS places (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	name               TEXT NOT NULL,
	category           TEXT NOT NULL DEFAULT 'general',
	setting            TEXT NOT NULL DEFAULT 'both',
	address            TEXT NOT NULL DEFAULT '',
	distance_miles     REAL,
	drive_time_minutes INTEGER,
	rating             REAL,
	kid_friendly       INTEGER NOT NULL DEFAULT 0,
	wheelchair         INTEGER NOT NULL DEFAULT 0,
	favorite           INTEGER NOT NULL DEFAULT 0,
	image              TEXT NOT NULL DEFAULT '',
	overview           TEXT NOT NULL DEFAULT '',
	nearby_restaurants TEXT NOT NULL DEFAULT '[]',
	source             TEXT NOT NULL DEFAULT '',
	created_at         TEXT NOT NULL,
	deleted            INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS plans (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	entries    TEXT NOT NULL DEFAULT '[]',
	plan_date  TEXT NOT NULL DEFAULT '',
	notes      TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL DEFAULT 'draft',
	share_code TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_plans_share_code ON plans (share_code);
`

type Option func(*Store)

// WithClock overrides the timestamp source. Used in tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

func New(dbPath string, opts ...Option) (*Store, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	s := &Store{db: db, clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) now() time.Time {
	return s.clock().UTC()
}

// --- row mapping ---

type placeRow struct {
	ID                int64           `db:"id"`
	Name              string          `db:"name"`
	Category          string          `db:"category"`
	Setting           string          `db:"setting"`
	Address           string          `db:"address"`
	DistanceMiles     sql.NullFloat64 `db:"distance_miles"`
	DriveTimeMinutes  sql.NullInt64   `db:"drive_time_minutes"`
	Rating            sql.NullFloat64 `db:"rating"`
	KidFriendly       int             `db:"kid_friendly"`
	Wheelchair        int             `db:"wheelchair"`
	Favorite          int             `db:"favorite"`
	Image             string          `db:"image"`
	Overview          string          `db:"overview"`
	NearbyRestaurants string          `db:"nearby_restaurants"`
	Source            string          `db:"source"`
	CreatedAt         string          `db:"created_at"`
	Deleted           int             `db:"deleted"`
}

func (r placeRow) toPlace() place.Place {
	p := place.Place{
		ID:                   r.ID,
		Name:                 r.Name,
		Category:             place.Category(r.Category),
		Setting:              place.Setting(r.Setting),
		Address:              r.Address,
		KidFriendly:          r.KidFriendly != 0,
		WheelchairAccessible: r.Wheelchair != 0,
		Favorite:             r.Favorite != 0,
		Image:                place.DecodeImageRef(r.Image),
		Overview:             r.Overview,
		Source:               r.Source,
		Deleted:              r.Deleted != 0,
	}
	if r.DistanceMiles.Valid {
		v := r.DistanceMiles.Float64
		p.DistanceMiles = &v
	}
	if r.DriveTimeMinutes.Valid {
		v := int(r.DriveTimeMinutes.Int64)
		p.DriveTimeMinutes = &v
	}
	if r.Rating.Valid {
		v := r.Rating.Float64
		p.Rating = &v
	}
	_ = json.Unmarshal([]byte(r.NearbyRestaurants), &p.NearbyRestaurants)
	p.CreatedAt, _ = time.Parse(time.RFC3339Nano, r.CreatedAt)
	return p
}

type planRow struct {
	ID        int64  `db:"id"`
	Entries   string `db:"entries"`
	PlanDate  string `db:"plan_date"`
	Notes     string `db:"notes"`
	Status    string `db:"status"`
	ShareCode string `db:"share_code"`
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
}

func (r planRow) toPlan() plan.WeekendPlan {
	p := plan.WeekendPlan{
		ID:        r.ID,
		PlanDate:  r.PlanDate,
		Notes:     r.Notes,
		Status:    plan.Status(r.Status),
		ShareCode: r.ShareCode,
	}
	_ = json.Unmarshal([]byte(r.Entries), &p.Entries)
	if p.Entries == nil {
		p.Entries = []plan.Entry{}
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339Nano, r.CreatedAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339Nano, r.UpdatedAt)
	return p
}

func timeToString(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func marshalJSON(v any) string {
	if v == nil {
		return "[]"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// --- places ---

// ListPlaces returns the active set in creation order.
func (s *Store) ListPlaces(ctx context.Context) ([]place.Place, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []placeRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM places WHERE deleted = 0 ORDER BY id`); err != nil {
		return nil, err
	}
	out := make([]place.Place, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toPlace())
	}
	return out, nil
}

func (s *Store) GetPlace(ctx context.Context, id int64) (place.Place, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getPlaceLocked(ctx, id)
}

func (s *Store) getPlaceLocked(ctx context.Context, id int64) (place.Place, error) {
	var row placeRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM places WHERE id = ? AND deleted = 0`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return place.Place{}, apperr.NotFound(fmt.Sprintf("place %d not found", id))
	}
	if err != nil {
		return place.Place{}, err
	}
	return row.toPlace(), nil
}

// GetPlacesByIDs fetches the active places among ids; missing and deleted
// ids are simply absent from the result, preserving no ordering guarantees.
func (s *Store) GetPlacesByIDs(ctx context.Context, ids []int64) ([]place.Place, error) {
	if len(ids) == 0 {
		return []place.Place{}, nil
	}
	query, args, err := sqlx.In(`SELECT * FROM places WHERE deleted = 0 AND id IN (?) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []placeRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	out := make([]place.Place, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toPlace())
	}
	return out, nil
}

func (s *Store) CreatePlace(ctx context.Context, d place.Draft) (place.Place, error) {
	if err := d.Validate(); err != nil {
		return place.Place{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	res, err := s.db.ExecContext(ctx, `INSERT INTO places
		(name, category, setting, address, distance_miles, drive_time_minutes, rating,
		 kid_friendly, wheelchair, favorite, image, overview, nearby_restaurants, source, created_at, deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		d.Name,
		string(d.Category),
		string(d.Setting),
		d.Address,
		nullFloat(d.DistanceMiles),
		nullInt(d.DriveTimeMinutes),
		nullFloat(d.Rating),
		boolToInt(d.KidFriendly),
		boolToInt(d.WheelchairAccessible),
		boolToInt(d.Favorite),
		d.Image.Encode(),
		d.Overview,
		marshalJSON(d.NearbyRestaurants),
		d.Source,
		timeToString(now),
	)
	if err != nil {
		return place.Place{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return place.Place{}, err
	}
	return s.getPlaceLocked(ctx, id)
}

// SavePlace writes the full row for an existing place. Last write wins.
func (s *Store) SavePlace(ctx context.Context, p place.Place) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `UPDATE places SET
		name = ?, category = ?, setting = ?, address = ?, distance_miles = ?,
		drive_time_minutes = ?, rating = ?, kid_friendly = ?, wheelchair = ?,
		favorite = ?, image = ?, overview = ?, nearby_restaurants = ?, source = ?
		WHERE id = ? AND deleted = 0`,
		p.Name,
		string(p.Category),
		string(p.Setting),
		p.Address,
		nullFloat(p.DistanceMiles),
		nullInt(p.DriveTimeMinutes),
		nullFloat(p.Rating),
		boolToInt(p.KidFriendly),
		boolToInt(p.WheelchairAccessible),
		boolToInt(p.Favorite),
		p.Image.Encode(),
		p.Overview,
		marshalJSON(p.NearbyRestaurants),
		p.Source,
		p.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound(fmt.Sprintf("place %d not found", p.ID))
	}
	return nil
}

// DeletePlace soft-deletes so plans holding the id keep a dangling weak
// reference instead of breaking.
func (s *Store) DeletePlace(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `UPDATE places SET deleted = 1 WHERE id = ? AND deleted = 0`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound(fmt.Sprintf("place %d not found", id))
	}
	return nil
}

// --- plans ---

func (s *Store) ListPlans(ctx context.Context) ([]plan.WeekendPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []planRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM plans ORDER BY id`); err != nil {
		return nil, err
	}
	out := make([]plan.WeekendPlan, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toPlan())
	}
	return out, nil
}

func (s *Store) GetPlan(ctx context.Context, id int64) (plan.WeekendPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getPlanLocked(ctx, id)
}

func (s *Store) getPlanLocked(ctx context.Context, id int64) (plan.WeekendPlan, error) {
	var row planRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM plans WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return plan.WeekendPlan{}, apperr.NotFound(fmt.Sprintf("plan %d not found", id))
	}
	if err != nil {
		return plan.WeekendPlan{}, err
	}
	return row.toPlan(), nil
}

// GetPlanByShareCode resolves a share code to its plan. Unissued codes are a
// not_found, never an empty success.
func (s *Store) GetPlanByShareCode(ctx context.Context, code string) (plan.WeekendPlan, error) {
	if code == "" {
		return plan.WeekendPlan{}, apperr.NotFound("share code not found")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var row planRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM plans WHERE share_code = ?`, code)
	if errors.Is(err, sql.ErrNoRows) {
		return plan.WeekendPlan{}, apperr.NotFound("share code not found")
	}
	if err != nil {
		return plan.WeekendPlan{}, err
	}
	return row.toPlan(), nil
}

func (s *Store) CreatePlan(ctx context.Context, p plan.WeekendPlan) (plan.WeekendPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if p.Status == "" {
		p.Status = plan.StatusDraft
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO plans
		(entries, plan_date, notes, status, share_code, created_at, updated_at)
		VALUES (?, ?, ?, ?, '', ?, ?)`,
		marshalJSON(p.Entries),
		p.PlanDate,
		p.Notes,
		string(p.Status),
		timeToString(now),
		timeToString(now),
	)
	if err != nil {
		return plan.WeekendPlan{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return plan.WeekendPlan{}, err
	}
	return s.getPlanLocked(ctx, id)
}

// SavePlan writes the full row for an existing plan. The share code column is
// written as-is; callers must never clear or rotate an issued code.
func (s *Store) SavePlan(ctx context.Context, p plan.WeekendPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `UPDATE plans SET
		entries = ?, plan_date = ?, notes = ?, status = ?, share_code = ?, updated_at = ?
		WHERE id = ?`,
		marshalJSON(p.Entries),
		p.PlanDate,
		p.Notes,
		string(p.Status),
		p.ShareCode,
		timeToString(s.now()),
		p.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound(fmt.Sprintf("plan %d not found", p.ID))
	}
	return nil
}

func (s *Store) DeletePlan(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM plans WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound(fmt.Sprintf("plan %d not found", id))
	}
	return nil
}
