/*
Package store provides data models for persisted trained models.

A trained model is an opaque JSON parameter blob keyed by its owner (the user
it was trained for, or "default" for an anonymous corpus-wide model). The
store is the only durable state the engine owns; it bridges independent
worker processes that share no memory.
*/
package store

import (
	"errors"
	"time"
)

// DefaultOwner is the model slot used when training data carries no user ID.
const DefaultOwner = "default"

// ErrNoModel is returned when no trained model exists for the requested
// owner. Callers treat it as "no model yet", never as a failure.
var ErrNoModel = errors.New("no trained model")

// ModelRecord is a persisted trained model.
type ModelRecord struct {
	// Owner keys the model slot. A new training run for the same owner
	// atomically replaces the previous record.
	Owner string `json:"owner"`

	// Version is a unique identifier for this training run (UUID).
	Version string `json:"version"`

	// TrainedAt is when the model was trained.
	TrainedAt time.Time `json:"trained_at"`

	// Params is the opaque serialized model parameter blob.
	Params []byte `json:"params"`
}

// ModelInfo describes a stored model without its parameter blob.
type ModelInfo struct {
	Owner     string    `json:"owner"`
	Version   string    `json:"version"`
	TrainedAt time.Time `json:"trained_at"`
	SizeBytes int       `json:"size_bytes"`
}
