// Package workflow drives one photo through selection, generation and
// captioning. Transition is a pure function over Snapshot; Machine owns the
// side effects (running the pipeline and the progress ticker).
package workflow

import (
	"github.com/ds124wfegd/gradphoto/internal/entity"
)

// Snapshot is the complete workflow state at one point in time.
type Snapshot struct {
	State   entity.WorkflowState
	Source  *entity.SourceImage
	Caption string
	// PNG or model-native bytes with the caption burned in
	Final     []byte
	FinalMIME string
	Err       *entity.ErrorInfo
	// Attempt identifies the current loading episode.
	Attempt uint64
}

type EventType int

const (
	EventSelectFile EventType = iota
	EventSetCaption
	EventGenerate
	EventRetry
	EventReset
	EventSucceeded
	EventFailed
)

type Event struct {
	Type EventType

	Source  *entity.SourceImage // EventSelectFile
	Caption string              // EventSetCaption, EventReset (default caption)

	Attempt   uint64 // EventSucceeded, EventFailed
	Final     []byte
	FinalMIME string
	Err       *entity.ErrorInfo
}

func Initial(defaultCaption string) Snapshot {
	return Snapshot{State: entity.StateInitial, Caption: defaultCaption}
}

// Transition applies e to s. Events that are not valid in the current state
// return s unchanged.
func Transition(s Snapshot, e Event) Snapshot {
	switch e.Type {
	case EventSelectFile:
		if e.Source == nil {
			return s
		}
		s.State = entity.StateInitial
		s.Source = e.Source
		s.Final, s.FinalMIME = nil, ""
		s.Err = nil
		return s

	case EventSetCaption:
		if s.State != entity.StateInitial {
			return s
		}
		s.Caption = e.Caption
		return s

	case EventGenerate:
		if s.State != entity.StateInitial || s.Source == nil {
			return s
		}
		return startLoading(s)

	case EventRetry:
		if s.State != entity.StateError || s.Source == nil {
			return s
		}
		return startLoading(s)

	case EventReset:
		return Snapshot{
			State:   entity.StateInitial,
			Caption: e.Caption,
			Attempt: s.Attempt,
		}

	case EventSucceeded:
		if !current(s, e) {
			return s
		}
		s.State = entity.StateResult
		s.Final, s.FinalMIME = e.Final, e.FinalMIME
		return s

	case EventFailed:
		if !current(s, e) {
			return s
		}
		s.State = entity.StateError
		s.Err = e.Err
		if s.Err == nil {
			s.Err = entity.NewErrorInfo(nil)
		}
		return s
	}
	return s
}

func startLoading(s Snapshot) Snapshot {
	s.State = entity.StateLoading
	s.Attempt++
	s.Final, s.FinalMIME = nil, ""
	s.Err = nil
	return s
}

// current reports whether a completion belongs to the running loading episode.
func current(s Snapshot, e Event) bool {
	return s.State == entity.StateLoading && s.Attempt == e.Attempt
}
