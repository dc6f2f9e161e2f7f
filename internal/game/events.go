package game

import "log"

type EventType int

const (
	EventBeatCrossed EventType = iota
	EventSegmentChanged
	EventLaneActivated
	EventLoudnessPulse
	EventPowerupSpawned
	EventTelemetry
)

// Event carries the fire-and-forget notifications the scheduler emits.
// Only the fields relevant to the event type are populated.
type Event struct {
	Type    EventType
	Beat    Beat      // EventBeatCrossed
	Index   int       // EventBeatCrossed: beat index that was crossed
	Segment string    // EventSegmentChanged
	Note    string    // EventLaneActivated, EventPowerupSpawned
	Energy  float64   // EventLaneActivated, EventLoudnessPulse
	Stats   Telemetry // EventTelemetry
}

type EventHandler func(Event)

type EventBus struct {
	handlers map[EventType][]EventHandler
}

func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[EventType][]EventHandler),
	}
}

func (eb *EventBus) Subscribe(t EventType, fn EventHandler) {
	eb.handlers[t] = append(eb.handlers[t], fn)
}

// Emit delivers the event to every subscribed handler synchronously.
// A panicking handler is contained and logged; the tick must keep going
// no matter what a sink does.
func (eb *EventBus) Emit(e Event) {
	for _, fn := range eb.handlers[e.Type] {
		eb.dispatch(fn, e)
	}
}

func (eb *EventBus) dispatch(fn EventHandler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("event sink failed (type %d): %v", e.Type, r)
		}
	}()
	fn(e)
}
