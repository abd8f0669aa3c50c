package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/rjoseph-dev/crewsched/core/conflict"
	"github.com/rjoseph-dev/crewsched/core/model"
)

// crewRecord is the persisted form of a crew member.
type crewRecord struct {
	ID      string `gorm:"primaryKey"`
	Name    string
	Role    string `gorm:"index"`
	DepotID string `gorm:"index"`
	Status  string `gorm:"index"`
}

func (crewRecord) TableName() string { return "crew_members" }

// dutyRecord is the persisted form of a duty history entry.
type dutyRecord struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	CrewID      string `gorm:"index"`
	TripID      string
	StartTime   time.Time `gorm:"index"`
	EndTime     time.Time `gorm:"index"`
	Status      string    `gorm:"index"`
	DistanceKM  float64
	DurationMin int64
}

func (dutyRecord) TableName() string { return "duties" }

type routeRecord struct {
	ID      string `gorm:"primaryKey"`
	Name    string
	Number  string
	DepotID string `gorm:"index"`
	Status  string `gorm:"index"`
}

func (routeRecord) TableName() string { return "routes" }

type busRecord struct {
	ID                string `gorm:"primaryKey"`
	Number            string
	DepotID           string `gorm:"index"`
	Status            string `gorm:"index"`
	MaintenanceStatus string `gorm:"index"`
}

func (busRecord) TableName() string { return "buses" }

// tripRecord is a committed booking. Window bounds are minutes since
// midnight so the half-open overlap test stays a plain integer comparison
// in SQL.
type tripRecord struct {
	ID          string    `gorm:"primaryKey"`
	RouteID     string    `gorm:"index"`
	BusID       string    `gorm:"index"`
	DriverID    string    `gorm:"index"`
	ConductorID string    `gorm:"index"`
	ServiceDate time.Time `gorm:"index"`
	StartMinute int
	EndMinute   int
	Status      string `gorm:"index"`
}

func (tripRecord) TableName() string { return "trips" }

// GormStore implements the roster, duty, route, vehicle and booking
// sources over a relational database.
type GormStore struct {
	db *gorm.DB
}

// Open connects to the configured database and runs migrations.
func Open(cfg Config) (*GormStore, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		dialector = sqlite.Open(cfg.DSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("store: sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	if err := db.AutoMigrate(&crewRecord{}, &dutyRecord{}, &routeRecord{}, &busRecord{}, &tripRecord{}); err != nil {
		return nil, fmt.Errorf("store: automigrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// NewGormStore wraps an existing gorm connection, running migrations.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&crewRecord{}, &dutyRecord{}, &routeRecord{}, &busRecord{}, &tripRecord{}); err != nil {
		return nil, fmt.Errorf("store: automigrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ListActive returns active crew of the role, filtered by depot unless
// depot is empty.
func (s *GormStore) ListActive(ctx context.Context, role model.Role, depot model.DepotID) ([]model.CrewMember, error) {
	q := s.db.WithContext(ctx).
		Where("role = ? AND status = ?", string(role), string(model.CrewActive))
	if depot != "" {
		q = q.Where("depot_id = ?", string(depot))
	}
	var recs []crewRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("store: list crew: %w", err)
	}
	out := make([]model.CrewMember, 0, len(recs))
	for _, r := range recs {
		out = append(out, model.CrewMember{
			ID:     model.CrewID(r.ID),
			Name:   r.Name,
			Role:   model.Role(r.Role),
			Depot:  model.DepotID(r.DepotID),
			Status: model.CrewStatus(r.Status),
		})
	}
	return out, nil
}

// ListSince returns duties for the crew member starting on or after since
// with a matching status.
func (s *GormStore) ListSince(ctx context.Context, crew model.CrewID, since time.Time, statuses []model.DutyStatus) ([]model.DutyRecord, error) {
	in := make([]string, 0, len(statuses))
	for _, st := range statuses {
		in = append(in, string(st))
	}
	var recs []dutyRecord
	err := s.db.WithContext(ctx).
		Where("crew_id = ? AND start_time >= ? AND status IN ?", string(crew), since, in).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("store: list duties: %w", err)
	}
	out := make([]model.DutyRecord, 0, len(recs))
	for _, r := range recs {
		out = append(out, dutyFromRecord(r))
	}
	return out, nil
}

// MostRecentCompleted returns the completed duty with the latest end time,
// or nil when none exists.
func (s *GormStore) MostRecentCompleted(ctx context.Context, crew model.CrewID) (*model.DutyRecord, error) {
	var rec dutyRecord
	err := s.db.WithContext(ctx).
		Where("crew_id = ? AND status = ?", string(crew), string(model.DutyCompleted)).
		Order("end_time DESC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: last duty: %w", err)
	}
	d := dutyFromRecord(rec)
	return &d, nil
}

func dutyFromRecord(r dutyRecord) model.DutyRecord {
	return model.DutyRecord{
		CrewID:     model.CrewID(r.CrewID),
		TripID:     model.TripID(r.TripID),
		Start:      r.StartTime,
		End:        r.EndTime,
		Status:     model.DutyStatus(r.Status),
		DistanceKM: r.DistanceKM,
		Duration:   time.Duration(r.DurationMin) * time.Minute,
	}
}

// ListActiveRoutes returns active routes, filtered by depot unless depot
// is empty.
func (s *GormStore) ListActiveRoutes(ctx context.Context, depot model.DepotID) ([]model.Route, error) {
	q := s.db.WithContext(ctx).Where("status = ?", string(model.RouteActive))
	if depot != "" {
		q = q.Where("depot_id = ?", string(depot))
	}
	var recs []routeRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("store: list routes: %w", err)
	}
	out := make([]model.Route, 0, len(recs))
	for _, r := range recs {
		out = append(out, model.Route{
			ID:     model.RouteID(r.ID),
			Name:   r.Name,
			Number: r.Number,
			Depot:  model.DepotID(r.DepotID),
			Status: model.RouteStatus(r.Status),
		})
	}
	return out, nil
}

// ListActiveBuses returns active buses, excluding workshop vehicles when
// requested.
func (s *GormStore) ListActiveBuses(ctx context.Context, excludeMaintenance bool) ([]model.Bus, error) {
	q := s.db.WithContext(ctx).Where("status = ?", string(model.BusActive))
	if excludeMaintenance {
		q = q.Where("maintenance_status <> ?", string(model.InMaintenance))
	}
	var recs []busRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("store: list buses: %w", err)
	}
	out := make([]model.Bus, 0, len(recs))
	for _, r := range recs {
		out = append(out, model.Bus{
			ID:          model.BusID(r.ID),
			Number:      r.Number,
			Depot:       model.DepotID(r.DepotID),
			Status:      model.BusStatus(r.Status),
			Maintenance: model.MaintenanceStatus(r.MaintenanceStatus),
		})
	}
	return out, nil
}

func resourceColumn(res conflict.Resource) (string, error) {
	switch res {
	case conflict.ResourceBus:
		return "bus_id", nil
	case conflict.ResourceDriver:
		return "driver_id", nil
	case conflict.ResourceConductor:
		return "conductor_id", nil
	default:
		return "", fmt.Errorf("store: unknown resource %q", res)
	}
}

// CountOverlapping counts committed trips occupying the resource on the
// date. The interval test is half-open: [start, end) windows that merely
// touch do not overlap.
func (s *GormStore) CountOverlapping(ctx context.Context, res conflict.Resource, id string, date time.Time, window model.TimeWindow, statuses []model.TripStatus) (int, error) {
	col, err := resourceColumn(res)
	if err != nil {
		return 0, err
	}
	in := make([]string, 0, len(statuses))
	for _, st := range statuses {
		in = append(in, string(st))
	}
	var count int64
	err = s.db.WithContext(ctx).Model(&tripRecord{}).
		Where(col+" = ?", id).
		Where("service_date = ?", model.StartOfDay(date)).
		Where("status IN ?", in).
		Where("start_minute < ? AND end_minute > ?", int(window.End), int(window.Start)).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("store: count overlapping: %w", err)
	}
	return int(count), nil
}

// InsertTrips stores committed trips directly. Intended for seeding and
// for management flows outside the scheduler.
func (s *GormStore) InsertTrips(ctx context.Context, trips ...model.Trip) error {
	recs := make([]tripRecord, 0, len(trips))
	for _, t := range trips {
		id := string(t.ID)
		if id == "" {
			id = uuid.NewString()
		}
		recs = append(recs, tripRecord{
			ID:          id,
			RouteID:     string(t.Route),
			BusID:       string(t.Bus),
			DriverID:    string(t.Driver),
			ConductorID: string(t.Conductor),
			ServiceDate: model.StartOfDay(t.Date),
			StartMinute: int(t.Window.Start),
			EndMinute:   int(t.Window.End),
			Status:      string(t.Status),
		})
	}
	if len(recs) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(&recs).Error
}

// CommitSchedules turns accepted entries into committed trips inside one
// transaction, re-checking each entry against the committed state first.
// This closes the race between proposal and write: a conflicting entry
// rolls the whole batch back.
func (s *GormStore) CommitSchedules(ctx context.Context, entries []model.ScheduleEntry) ([]model.Trip, error) {
	committed := make([]model.Trip, 0, len(entries))
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txStore := &GormStore{db: tx}
		for _, e := range entries {
			for res, id := range map[conflict.Resource]string{
				conflict.ResourceBus:       string(e.Bus),
				conflict.ResourceDriver:    string(e.Driver),
				conflict.ResourceConductor: string(e.Conductor),
			} {
				n, err := txStore.CountOverlapping(ctx, res, id, e.Date, e.Window, model.BlockingTripStatuses())
				if err != nil {
					return err
				}
				if n > 0 {
					return &CommitConflictError{Entry: e}
				}
			}
			trip := model.Trip{
				ID:        model.TripID(uuid.NewString()),
				Route:     e.Route,
				Bus:       e.Bus,
				Driver:    e.Driver,
				Conductor: e.Conductor,
				Date:      model.StartOfDay(e.Date),
				Window:    e.Window,
				Status:    model.TripScheduled,
			}
			if err := txStore.InsertTrips(ctx, trip); err != nil {
				return err
			}
			committed = append(committed, trip)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return committed, nil
}
