// Package infra contains technical adapters: structured logging, the
// metrics exporters, MQTT telemetry and the run history store. These
// packages depend only on the interfaces defined under core.
package infra
