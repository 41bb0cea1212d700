package testutil

import (
	"sync"

	"github.com/lockstep-dev/lockstep/internal/explore"
)

// Fault describes an injected nondeterminism: instances produced by a
// FlakyFactory alternate the target of (State, Event) between the wrapped
// candidate's answer and Alternate.
type Fault struct {
	State     string
	Event     string
	Alternate string
}

// FlakyFactory wraps a candidate factory and injects a per-instantiation
// alternating fault, so two replicas probing the same (state, event) pair
// observe different targets. Used to exercise NONDETERMINISM detection.
type FlakyFactory struct {
	inner explore.Factory
	fault Fault

	mu      sync.Mutex
	created int
}

// NewFlakyFactory wraps inner with the given fault.
func NewFlakyFactory(inner explore.Factory, fault Fault) *FlakyFactory {
	return &FlakyFactory{inner: inner, fault: fault}
}

// Events implements explore.Factory.
func (f *FlakyFactory) Events() []string {
	return f.inner.Events()
}

// New implements explore.Factory. Every second instance diverges on the
// fault's (state, event) pair.
func (f *FlakyFactory) New() (explore.Artifact, error) {
	a, err := f.inner.New()
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.created++
	diverge := f.created%2 == 0
	f.mu.Unlock()
	return &flakyArtifact{inner: a, fault: f.fault, diverge: diverge}, nil
}

type flakyArtifact struct {
	inner   explore.Artifact
	fault   Fault
	diverge bool
	jammed  bool
}

func (a *flakyArtifact) State() string {
	if a.jammed {
		return a.fault.Alternate
	}
	return a.inner.State()
}

func (a *flakyArtifact) Fire(event string) (bool, error) {
	if a.jammed {
		return false, nil
	}
	if a.diverge && event == a.fault.Event && a.inner.State() == a.fault.State {
		a.jammed = true
		return true, nil
	}
	return a.inner.Fire(event)
}

// RejectingMutator wraps a factory so that firing Event in State reports
// rejection but still mutates the observed state. Exercises the explorer's
// rejected-yet-moved nondeterminism check.
type RejectingMutator struct {
	Inner explore.Factory
	State string
	Event string
	Moved string
}

// Events implements explore.Factory.
func (f *RejectingMutator) Events() []string {
	return f.Inner.Events()
}

// New implements explore.Factory.
func (f *RejectingMutator) New() (explore.Artifact, error) {
	a, err := f.Inner.New()
	if err != nil {
		return nil, err
	}
	return &rejectingArtifact{inner: a, factory: f}, nil
}

type rejectingArtifact struct {
	inner   explore.Artifact
	factory *RejectingMutator
	moved   bool
}

func (a *rejectingArtifact) State() string {
	if a.moved {
		return a.factory.Moved
	}
	return a.inner.State()
}

func (a *rejectingArtifact) Fire(event string) (bool, error) {
	if a.moved {
		return false, nil
	}
	if event == a.factory.Event && a.inner.State() == a.factory.State {
		a.moved = true
		return false, nil
	}
	return a.inner.Fire(event)
}

// PanickyFactory produces artifacts that panic on the first Fire call.
// Exercises the verdict reporter's panic capture.
type PanickyFactory struct {
	Inner explore.Factory
}

// Events implements explore.Factory.
func (f *PanickyFactory) Events() []string {
	return f.Inner.Events()
}

// New implements explore.Factory.
func (f *PanickyFactory) New() (explore.Artifact, error) {
	a, err := f.Inner.New()
	if err != nil {
		return nil, err
	}
	return &panickyArtifact{inner: a}, nil
}

type panickyArtifact struct {
	inner explore.Artifact
}

func (a *panickyArtifact) State() string { return a.inner.State() }

func (a *panickyArtifact) Fire(event string) (bool, error) {
	panic("artifact fault injected for " + event)
}
