package statemachine

import (
	"errors"
	"strings"
	"testing"
)

type lightStatus string

const (
	lightRed    lightStatus = "RED"
	lightGreen  lightStatus = "GREEN"
	lightYellow lightStatus = "YELLOW"
	lightOff    lightStatus = "OFF"
)

func newLight() *StateMachine[lightStatus] {
	return New(lightRed).
		Allow(lightRed, lightGreen, lightOff).
		Allow(lightGreen, lightYellow).
		Allow(lightYellow, lightRed)
}

func TestStateMachine_CanTransition(t *testing.T) {
	sm := newLight()

	if !sm.CanTransition(lightRed, lightGreen) {
		t.Error("RED → GREEN should be allowed")
	}
	if sm.CanTransition(lightGreen, lightRed) {
		t.Error("GREEN → RED should not be allowed")
	}
	if !sm.IsTerminal(lightOff) {
		t.Error("OFF has no targets and should be terminal")
	}
	if sm.IsTerminal(lightStatus("BLUE")) {
		t.Error("unknown state must not be terminal")
	}
	if sm.Initial() != lightRed {
		t.Errorf("Initial() = %s", sm.Initial())
	}
}

func TestStateMachine_NextStatesIsCopy(t *testing.T) {
	sm := newLight()
	next := sm.NextStates(lightRed)
	next[0] = lightYellow

	if !sm.CanTransition(lightRed, lightGreen) {
		t.Error("mutating NextStates result changed the table")
	}
}

func TestStateMachine_ValidatorAndHook(t *testing.T) {
	sm := newLight()
	veto := errors.New("maintenance")
	var seen []string

	sm.AddValidator(func(from, to lightStatus, event Event) error {
		if event == "maintenance" {
			return veto
		}
		return nil
	})
	sm.OnTransition(func(from, to lightStatus, event Event) error {
		seen = append(seen, string(from)+">"+string(to))
		return nil
	})

	if err := sm.Transition(lightRed, lightGreen, "tick"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := sm.Transition(lightGreen, lightYellow, "maintenance")
	if !errors.Is(err, veto) {
		t.Errorf("expected veto error, got %v", err)
	}
	if len(seen) != 1 || seen[0] != "RED>GREEN" {
		t.Errorf("hook calls = %v", seen)
	}
}

func TestStateMachine_ToDot(t *testing.T) {
	dot := newLight().ToDot("light")
	for _, want := range []string{
		"digraph light {",
		"start -> \"RED\";",
		"\"RED\" -> \"GREEN\";",
		"\"OFF\" [shape=doublecircle];",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("dot output missing %q:\n%s", want, dot)
		}
	}
}
