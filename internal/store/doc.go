// Package store keeps recently completed audit results in memory so the
// HTTP API and the websocket feed can serve them without re-running the
// pipeline. Entries are keyed by run id and evicted after a TTL by a
// background loop; nothing is ever written to disk — audit history is
// not persisted.
package store
