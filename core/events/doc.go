// Package events defines the generation related events emitted on the
// event bus.
//
// Available event types:
//   - EntryEvent: accepted schedule entry
//   - ConflictEvent: slot rejected on a booking clash
//   - SlotSkippedEvent: slot dropped for lack of crew or buses
//   - RunCompletedEvent: per-run summary
package events
