// Package models defines the core domain models for the Swiss tournament engine.
//
// # Persisted Models
//
// The store owns these records and their integrity:
//   - Tournament: one event that players register into
//   - Player: a registered participant, immutable after registration
//   - Match: one played result (winner, loser), append-only
//
// # Derived Models
//
// These are computed on demand and never written back:
//   - Standing: wins and matches played for one player in one tournament
//   - Pairing: two players proposed to meet in the next round
//
// Relationships use integer IDs rather than pointers, so a snapshot of
// standings can be passed around without dragging the store along.
package models
