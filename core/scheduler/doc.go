// Package scheduler implements autonomous crew-and-vehicle schedule
// generation. For each route and service day it selects the least
// fatigued eligible crew pair and an available bus, validates the
// combination against committed bookings, and collects accepted entries
// and rejected conflicts into a single proposal for the caller to commit.
package scheduler
