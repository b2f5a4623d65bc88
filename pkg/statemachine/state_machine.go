// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package statemachine

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
)

// ErrInvalidTransition is matched by every TransitionError.
var ErrInvalidTransition = errors.New("invalid transition")

// Event names the reason of a transition. It is carried to hooks and validators.
type Event string

// TransitionHook is triggered after a transition passed validation.
type TransitionHook[T comparable] func(from, to T, event Event) error

// TransitionValidator can veto a transition that the table allows.
type TransitionValidator[T comparable] func(from, to T, event Event) error

// TransitionError reports a transition that is not in the table.
type TransitionError[T comparable] struct {
	From T
	To   T
}

func (e *TransitionError[T]) Error() string {
	return fmt.Sprintf("invalid transition: %v → %v", e.From, e.To)
}

func (e *TransitionError[T]) Is(target error) bool {
	return target == ErrInvalidTransition
}

// StateMachine is a transition table shared by many aggregates.
// It holds no current state: the caller owns the state (usually a database row)
// and asks the machine whether a move is legal.
//
// The StateMachine is safe for concurrent use.
type StateMachine[T comparable] struct {
	mu sync.RWMutex

	initial     T
	transitions map[T][]T

	onTransition []TransitionHook[T]
	validators   []TransitionValidator[T]
}

// New creates a StateMachine whose aggregates start in initial.
func New[T comparable](initial T) *StateMachine[T] {
	return &StateMachine[T]{
		initial:     initial,
		transitions: make(map[T][]T),
	}
}

// Allow registers the valid targets of from.
func (sm *StateMachine[T]) Allow(from T, to ...T) *StateMachine[T] {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if _, ok := sm.transitions[from]; !ok {
		sm.transitions[from] = nil
	}
	for _, target := range to {
		if !slices.Contains(sm.transitions[from], target) {
			sm.transitions[from] = append(sm.transitions[from], target)
		}
		if _, ok := sm.transitions[target]; !ok {
			sm.transitions[target] = nil
		}
	}
	return sm
}

// Initial returns the state new aggregates start in.
func (sm *StateMachine[T]) Initial() T {
	return sm.initial
}

// CanTransition reports whether from → to is in the table.
func (sm *StateMachine[T]) CanTransition(from, to T) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return slices.Contains(sm.transitions[from], to)
}

// NextStates returns a copy of the valid targets of from.
func (sm *StateMachine[T]) NextStates(from T) []T {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return slices.Clone(sm.transitions[from])
}

// IsKnown reports whether state appears anywhere in the table.
func (sm *StateMachine[T]) IsKnown(state T) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	_, ok := sm.transitions[state]
	return ok
}

// IsTerminal reports whether state is known and has no outgoing transition.
func (sm *StateMachine[T]) IsTerminal(state T) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	targets, ok := sm.transitions[state]
	return ok && len(targets) == 0
}

// OnTransition registers a hook called for every accepted transition.
func (sm *StateMachine[T]) OnTransition(h TransitionHook[T]) *StateMachine[T] {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.onTransition = append(sm.onTransition, h)
	return sm
}

// AddValidator registers a validator run after the table check.
func (sm *StateMachine[T]) AddValidator(v TransitionValidator[T]) *StateMachine[T] {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.validators = append(sm.validators, v)
	return sm
}

// Transition validates from → to and runs validators and hooks.
// It returns a *TransitionError when the table does not allow the move.
func (sm *StateMachine[T]) Transition(from, to T, event Event) error {
	sm.mu.RLock()
	allowed := slices.Contains(sm.transitions[from], to)
	validators := slices.Clone(sm.validators)
	hooks := slices.Clone(sm.onTransition)
	sm.mu.RUnlock()

	if !allowed {
		return &TransitionError[T]{From: from, To: to}
	}

	for _, validator := range validators {
		if err := validator(from, to, event); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}

	for _, h := range hooks {
		if err := h(from, to, event); err != nil {
			return fmt.Errorf("transition hook failed: %w", err)
		}
	}
	return nil
}

// ToDot exports the table as a Graphviz DOT string with stable ordering.
func (sm *StateMachine[T]) ToDot(name string) string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	var b strings.Builder
	fmt.Fprintf(&b, "digraph %s {\n", name)
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=circle];\n")
	b.WriteString("  start [shape=point];\n")
	fmt.Fprintf(&b, "  start -> \"%v\";\n", sm.initial)

	edges := make([]string, 0)
	for from, tos := range sm.transitions {
		if len(tos) == 0 {
			edges = append(edges, fmt.Sprintf("  \"%v\" [shape=doublecircle];\n", from))
			continue
		}
		for _, to := range tos {
			edges = append(edges, fmt.Sprintf("  \"%v\" -> \"%v\";\n", from, to))
		}
	}
	sort.Strings(edges)
	for _, e := range edges {
		b.WriteString(e)
	}
	b.WriteString("}\n")
	return b.String()
}
