// Package pollregistry implements the poll registry inside the polling
// context.
//
// The module owns poll lifecycle (create/delete/reset), the single-vote
// ballot ledger, and the popularity leaderboard read. It keeps business
// rules in application/domain layers and isolates storage and notification
// concerns behind ports and adapters.
package pollregistry
