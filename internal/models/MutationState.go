package models

import "time"

type MutationStatus string

const (
	MutationIdle    MutationStatus = "idle"
	MutationPending MutationStatus = "pending"
	MutationSuccess MutationStatus = "success"
	MutationError   MutationStatus = "error"
)

type MutationState struct {
	Status      MutationStatus
	Variables   any
	Data        any
	Error       error
	SubmittedAt time.Time
}

func IdleMutation() MutationState {
	return MutationState{Status: MutationIdle}
}

func (s MutationState) IsPending() bool {
	return s.Status == MutationPending
}
