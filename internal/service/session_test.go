package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gymbro/gymbro-api/internal/domain"
)

func collectEvents(t *testing.T, ch <-chan GenerationEvent) []GenerationEvent {
	t.Helper()
	var events []GenerationEvent
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatalf("session did not close; events so far: %+v", events)
		}
	}
}

func TestSessionEmitsRoutineTerminal(t *testing.T) {
	f := newRoutineFixture(t, nil)

	events := collectEvents(t, f.svc.StartSession(context.Background(), f.userID, generateReq()))
	if len(events) < 2 {
		t.Fatalf("expected progress plus terminal, got %+v", events)
	}

	terminal := events[len(events)-1]
	if terminal.Name != "routine" {
		t.Fatalf("terminal event = %s, want routine", terminal.Name)
	}
	resp, ok := terminal.Data.(*domain.GenerateRoutineResponse)
	if !ok || resp.Source != domain.RoutineSourceAI {
		t.Fatalf("unexpected terminal payload: %+v", terminal.Data)
	}

	terminals := 0
	for _, ev := range events {
		switch ev.Name {
		case "routine", "error":
			terminals++
		case "progress":
			p, ok := ev.Data.(ProgressData)
			if !ok {
				t.Fatalf("progress payload: %+v", ev.Data)
			}
			// Only the terminal event completes the bar.
			if p.Pct < 0 || p.Pct > 99 {
				t.Errorf("progress pct = %d, must stay within [0,99]: %+v", p.Pct, events)
			}
		}
	}
	if terminals != 1 {
		t.Errorf("terminal events = %d, want exactly 1", terminals)
	}
}

func TestSessionEmitsErrorTerminal(t *testing.T) {
	f := newRoutineFixture(t, nil)
	f.generator.err = errors.New("provider exploded")

	events := collectEvents(t, f.svc.StartSession(context.Background(), f.userID, generateReq()))
	if len(events) == 0 {
		t.Fatalf("expected at least one event")
	}

	terminal := events[len(events)-1]
	if terminal.Name != "error" {
		t.Fatalf("terminal event = %s, want error", terminal.Name)
	}
	payload, ok := terminal.Data.(ErrorData)
	if !ok || payload.Message == "" {
		t.Fatalf("unexpected error payload: %+v", terminal.Data)
	}
	// Unknown errors are masked
	if payload.Message != "routine generation failed" {
		t.Errorf("message = %q, internal detail leaked", payload.Message)
	}
}

func TestSessionStopsOnCancel(t *testing.T) {
	f := newRoutineFixture(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch := f.svc.StartSession(ctx, f.userID, generateReq())

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return // closed without hanging
			}
		case <-deadline:
			t.Fatalf("session did not close after cancellation")
		}
	}
}

func TestProgressAt(t *testing.T) {
	if p := progressAt(0); p.Pct < 1 || p.Stage != "validating" {
		t.Errorf("at start: %+v", p)
	}
	if p := progressAt(progressHorizon / 2); p.Stage != "generating plan" {
		t.Errorf("mid-flight: %+v", p)
	}
	if p := progressAt(10 * progressHorizon); p.Pct != 99 {
		t.Errorf("pct must cap at 99 before completion, got %d", p.Pct)
	}
}
