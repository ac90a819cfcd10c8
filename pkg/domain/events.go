package domain

import "time"

// EventType defines the category of the event.
type EventType string

const (
	EventStep      EventType = "step"
	EventDecision  EventType = "decision"
	EventIteration EventType = "iteration"
	EventControl   EventType = "control"
)

// Control names the operation that triggered a control event.
type Control string

const (
	ControlStart    Control = "start"
	ControlContinue Control = "continue"
	ControlPause    Control = "pause"
	ControlReset    Control = "reset"
	ControlSelect   Control = "select"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// StepEvent is emitted every time the clock advances.
type StepEvent struct {
	EventBase
	Step    int    `json:"step"`
	StageID string `json:"stage_id,omitempty"`
}

// DecisionEvent is emitted when the decision stage is entered.
type DecisionEvent struct {
	EventBase
	RandomDraw float64 `json:"random_draw"`
	Epsilon    float64 `json:"epsilon"`
	Warmup     bool    `json:"warmup"`
	Exploring  bool    `json:"exploring"`
}

// IterationEvent is emitted when the iteration-check stage is entered.
type IterationEvent struct {
	EventBase
	Iteration   int  `json:"iteration"`
	Warmup      bool `json:"warmup"`
	WarmupEnded bool `json:"warmup_ended,omitempty"`
}

// ControlEvent is emitted by start, pause, reset and selection changes.
type ControlEvent struct {
	EventBase
	Control Control `json:"control"`
	State   State   `json:"state"`
}

// LifecycleHooks defines callbacks for sequencer observability.
// Hooks run synchronously on the caller of the engine operation and must not
// call back into the engine.
type LifecycleHooks struct {
	OnStep      func(*StepEvent)
	OnDecision  func(*DecisionEvent)
	OnIteration func(*IterationEvent)
	OnControl   func(*ControlEvent)
}
