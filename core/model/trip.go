package model

import "time"

// Trip is a committed booking occupying a bus and a crew pair on one
// service date. The scheduler never creates trips itself; they are the
// "existing bookings" its conflict checks run against, and what the
// external commit step turns accepted ScheduleEntry values into.
type Trip struct {
	ID        TripID
	Route     RouteID
	Bus       BusID
	Driver    CrewID
	Conductor CrewID
	Date      time.Time
	Window    TimeWindow
	Status    TripStatus
}
