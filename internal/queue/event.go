// Package queue defines message payloads exchanged over the message broker.
package queue

// AuditQueue is the durable queue carrying entity-change events.
const AuditQueue = "record.audit"

// EntityChangedEvent is published after a successful create, update or
// delete. It carries enough information for downstream consumers to build
// an audit trail without querying the primary database.
type EntityChangedEvent struct {
    Resource string `json:"resource"`  // table name, e.g. "appointments"
    EntityID int64  `json:"entity_id"`
    Action   string `json:"action"`    // created | updated | deleted
    Actor    string `json:"actor"`     // username of the authenticated principal
    At       string `json:"at"`        // RFC3339 UTC instant
}
