// Package model defines the entity records produced by the harvest pipeline.
package model

import (
	"github.com/sells-group/fgo-harvest/internal/resilience"
)

// DetailState is the lifecycle state of a record's detail payload.
type DetailState string

const (
	StatePending   DetailState = "pending"
	StatePopulated DetailState = "populated"
	StateFailed    DetailState = "failed"
)

// Failure describes why a detail payload could not be populated. Retryable
// failures carry the reference to retry with; terminal ones carry a tag.
type Failure struct {
	Kind   resilience.Kind `json:"kind"`
	Ref    string          `json:"ref,omitempty"`
	Tag    string          `json:"tag,omitempty"`
	Status int             `json:"status,omitempty"`
}

// Detail is the enrichable payload attached to a record: pending,
// populated with data, or failed.
type Detail[T any] struct {
	State   DetailState `json:"state"`
	Data    *T          `json:"data,omitempty"`
	Failure *Failure    `json:"failure,omitempty"`
}

// Pending returns a payload that has not been fetched yet.
func Pending[T any]() Detail[T] {
	return Detail[T]{State: StatePending}
}

// Populated returns a payload holding v.
func Populated[T any](v T) Detail[T] {
	return Detail[T]{State: StatePopulated, Data: &v}
}

// Retryable returns a failed payload the comb loop will re-attempt with ref.
func Retryable[T any](ref string, status int) Detail[T] {
	return Detail[T]{
		State:   StateFailed,
		Failure: &Failure{Kind: resilience.KindTransient, Ref: ref, Status: status},
	}
}

// Terminal returns a failed payload that is never retried.
func Terminal[T any](tag string, status int) Detail[T] {
	return Detail[T]{
		State:   StateFailed,
		Failure: &Failure{Kind: resilience.KindTerminal, Tag: tag, Status: status},
	}
}

// IsPending reports whether the payload has not been fetched. The zero
// value counts as pending.
func (d Detail[T]) IsPending() bool {
	return d.State == StatePending || d.State == ""
}

// IsPopulated reports whether the payload holds data.
func (d Detail[T]) IsPopulated() bool {
	return d.State == StatePopulated && d.Data != nil
}

// IsRetryable reports whether the payload failed and may be retried.
func (d Detail[T]) IsRetryable() bool {
	return d.State == StateFailed && d.Failure != nil && d.Failure.Kind == resilience.KindTransient
}

// IsTerminal reports whether the payload failed permanently.
func (d Detail[T]) IsTerminal() bool {
	return d.State == StateFailed && (d.Failure == nil || d.Failure.Kind == resilience.KindTerminal)
}
