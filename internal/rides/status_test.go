package rides

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestDecideForwardProgression(t *testing.T) {
	t.Parallel()

	driver := uuid.New()
	steps := []struct{ from, to string }{
		{StatusAssigned, StatusEnroute},
		{StatusEnroute, StatusArrived},
		{StatusArrived, StatusInProgress},
		{StatusInProgress, StatusCompleted},
	}
	for _, s := range steps {
		snap := Snapshot{Status: s.from, AssignedDriverID: &driver}
		if err := Decide(snap, driver, s.to); err != nil {
			t.Fatalf("Decide(%s -> %s): %v", s.from, s.to, err)
		}
	}
}

func TestDecideIdempotentRepost(t *testing.T) {
	t.Parallel()

	driver := uuid.New()
	for _, status := range []string{StatusAssigned, StatusEnroute, StatusArrived, StatusInProgress} {
		snap := Snapshot{Status: status, AssignedDriverID: &driver}
		if err := Decide(snap, driver, status); err != nil {
			t.Fatalf("re-posting %s rejected: %v", status, err)
		}
	}
}

func TestDecideSkipAhead(t *testing.T) {
	t.Parallel()

	driver := uuid.New()
	snap := Snapshot{Status: StatusAssigned, AssignedDriverID: &driver}
	if err := Decide(snap, driver, StatusInProgress); err != nil {
		t.Fatalf("skipping forward rejected: %v", err)
	}
}

func TestDecideErrors(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	stranger := uuid.New()

	tests := []struct {
		name      string
		snap      Snapshot
		actor     uuid.UUID
		requested string
		want      error
	}{
		{
			name:      "unknown status",
			snap:      Snapshot{Status: StatusAssigned, AssignedDriverID: &owner},
			actor:     owner,
			requested: "teleported",
			want:      ErrInvalidStatus,
		},
		{
			name:      "requested is not a driver update",
			snap:      Snapshot{Status: StatusAssigned, AssignedDriverID: &owner},
			actor:     owner,
			requested: StatusRequested,
			want:      ErrInvalidStatus,
		},
		{
			name:      "unassigned ride",
			snap:      Snapshot{Status: StatusRequested},
			actor:     owner,
			requested: StatusEnroute,
			want:      ErrNotAssigned,
		},
		{
			name:      "wrong driver",
			snap:      Snapshot{Status: StatusEnroute, AssignedDriverID: &owner},
			actor:     stranger,
			requested: StatusArrived,
			want:      ErrNotOwner,
		},
		{
			name:      "completed is terminal",
			snap:      Snapshot{Status: StatusCompleted, AssignedDriverID: &owner},
			actor:     owner,
			requested: StatusCancelled,
			want:      ErrAlreadyTerminal,
		},
		{
			name:      "cancelled is terminal",
			snap:      Snapshot{Status: StatusCancelled, AssignedDriverID: &owner},
			actor:     owner,
			requested: StatusEnroute,
			want:      ErrAlreadyTerminal,
		},
		{
			name:      "regression",
			snap:      Snapshot{Status: StatusInProgress, AssignedDriverID: &owner},
			actor:     owner,
			requested: StatusEnroute,
			want:      ErrStatusRegression,
		},
		{
			name:      "regression from completed request backwards",
			snap:      Snapshot{Status: StatusArrived, AssignedDriverID: &owner},
			actor:     owner,
			requested: StatusAssigned,
			want:      ErrStatusRegression,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := Decide(tt.snap, tt.actor, tt.requested); !errors.Is(err, tt.want) {
				t.Fatalf("Decide err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecideCancelFromAnyNonTerminal(t *testing.T) {
	t.Parallel()

	driver := uuid.New()
	for _, status := range []string{StatusAssigned, StatusEnroute, StatusArrived, StatusInProgress} {
		snap := Snapshot{Status: status, AssignedDriverID: &driver}
		if err := Decide(snap, driver, StatusCancelled); err != nil {
			t.Fatalf("cancel from %s rejected: %v", status, err)
		}
	}
}

func TestKnownStatus(t *testing.T) {
	t.Parallel()

	for _, status := range []string{StatusRequested, StatusAssigned, StatusEnroute,
		StatusArrived, StatusInProgress, StatusCompleted, StatusCancelled} {
		if !KnownStatus(status) {
			t.Fatalf("KnownStatus(%s) = false", status)
		}
	}
	if KnownStatus("pending") {
		t.Fatal("KnownStatus accepted an unknown state")
	}
}
