package model

// RouteStatus is the operational status of a route.
type RouteStatus string

const (
	RouteActive   RouteStatus = "active"
	RouteInactive RouteStatus = "inactive"
)

// Route is a service line operated out of a depot. Read-only input.
type Route struct {
	ID     RouteID
	Name   string
	Number string
	Depot  DepotID
	Status RouteStatus
}

// BusStatus is the operational status of a vehicle.
type BusStatus string

const (
	BusActive   BusStatus = "active"
	BusInactive BusStatus = "inactive"
)

// MaintenanceStatus tracks whether a bus is held in the workshop.
type MaintenanceStatus string

const (
	MaintenanceNone MaintenanceStatus = "ok"
	InMaintenance   MaintenanceStatus = "in_maintenance"
)

// Bus is a vehicle available for assignment. A bus with an empty Depot
// belongs to the shared pool and may serve any route.
type Bus struct {
	ID          BusID
	Number      string
	Depot       DepotID
	Status      BusStatus
	Maintenance MaintenanceStatus
}

// Available reports whether the bus can be scheduled.
func (b Bus) Available() bool {
	return b.Status == BusActive && b.Maintenance != InMaintenance
}

// ServesDepot reports whether the bus may operate for the given depot.
func (b Bus) ServesDepot(depot DepotID) bool {
	return b.Depot == "" || b.Depot == depot
}

// TripStatus is the lifecycle state of a committed trip booking.
type TripStatus string

const (
	TripScheduled TripStatus = "scheduled"
	TripActive    TripStatus = "active"
	TripBoarding  TripStatus = "boarding"
	TripRunning   TripStatus = "running"
	TripCompleted TripStatus = "completed"
	TripCancelled TripStatus = "cancelled"
)

// BlockingTripStatuses lists the statuses that occupy a resource for
// conflict detection purposes.
func BlockingTripStatuses() []TripStatus {
	return []TripStatus{TripScheduled, TripActive, TripBoarding, TripRunning}
}
