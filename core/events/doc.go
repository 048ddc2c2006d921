// Package events defines the fleet related events emitted on the
// in-process topic and forwarded to the MQTT feed.
//
// Available event types:
//   - VehicleRegistered / VehicleDeregistered / VehicleUpdated: roster membership
//   - DutyChanged: waiting queue entry and exit
//   - TripStarted / TripCompleted: trip lifecycle
//   - DayClosed: end of day archival outcome
//   - BroadcastChanged: association wide announcement
package events
