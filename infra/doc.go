// Package infra contains technical adapters such as the MQTT feed
// publisher, the metrics sinks and the snapshot and audit stores.
// These packages should depend only on the interfaces defined in the
// core packages.
package infra
