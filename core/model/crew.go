package model

import "time"

// Typed identifiers for the entities the scheduler reads. Keeping them
// distinct avoids the object-or-id ambiguity of the upstream data model.
type (
	CrewID  string
	DepotID string
	RouteID string
	BusID   string
	TripID  string
)

// Role distinguishes the two crew variants.
type Role string

const (
	RoleDriver    Role = "driver"
	RoleConductor Role = "conductor"
)

// CrewStatus is the operational status of a crew member.
type CrewStatus string

const (
	CrewActive   CrewStatus = "active"
	CrewInactive CrewStatus = "inactive"
)

// CrewMember represents a driver or conductor attached to a depot.
// The scheduler never mutates it; duty history lives in separate records.
type CrewMember struct {
	ID     CrewID
	Name   string
	Role   Role
	Depot  DepotID
	Status CrewStatus
}

// IsActive reports whether the member can be considered for assignment.
func (c CrewMember) IsActive() bool { return c.Status == CrewActive }

// DutyStatus is the lifecycle state of a duty record.
type DutyStatus string

const (
	DutyCompleted DutyStatus = "completed"
	DutyActive    DutyStatus = "active"
	DutyCancelled DutyStatus = "cancelled"
)

// DutyRecord is a historical work record for one crew member. Records are
// immutable once completed and serve only as input to fatigue estimation.
type DutyRecord struct {
	CrewID     CrewID
	TripID     TripID // empty when the duty was not tied to a trip
	Start      time.Time
	End        time.Time
	Status     DutyStatus
	DistanceKM float64
	Duration   time.Duration // zero when no duration was recorded
}
