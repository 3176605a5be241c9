// Package infra contains technical adapters: the MQTT notification
// publisher, metrics sinks, distance providers and history archives. These
// packages depend only on the interfaces declared in the core packages.
package infra
