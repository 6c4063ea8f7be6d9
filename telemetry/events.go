// Package telemetry records trial outcomes and derives population statistics.
package telemetry

import "github.com/pthm-cable/ecosim/components"

// EventType identifies telemetry events.
type EventType uint8

const (
	EventPopulation EventType = iota
	EventBirth
	EventDeath
)

func (t EventType) String() string {
	switch t {
	case EventPopulation:
		return "population"
	case EventBirth:
		return "birth"
	case EventDeath:
		return "death"
	default:
		return "unknown"
	}
}

// Event represents a single telemetry event.
type Event struct {
	Type EventType
	Step int

	// Optional fields depending on event type
	Population int              // end-of-step population
	Cause      components.Cause // death cause
}

// NewPopulationEvent creates an end-of-step population snapshot.
func NewPopulationEvent(step, population int) Event {
	return Event{
		Type:       EventPopulation,
		Step:       step,
		Population: population,
	}
}

// NewBirthEvent creates a birth event.
func NewBirthEvent(step int) Event {
	return Event{
		Type: EventBirth,
		Step: step,
	}
}

// NewDeathEvent creates a death event.
func NewDeathEvent(step int, cause components.Cause) Event {
	return Event{
		Type:  EventDeath,
		Step:  step,
		Cause: cause,
	}
}
