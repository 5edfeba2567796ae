// Package research defines the core types shared across subsystems: the
// result model returned by the backend, the structured error taxonomy, and
// the small interfaces (Gateway, Clock, IDGenerator) that the controller is
// wired against.
package research
