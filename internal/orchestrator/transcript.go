package orchestrator

import "time"

// EventKind is the closed set of transcript event kinds.
type EventKind string

const (
	EventMessage     EventKind = "message"
	EventStageStart  EventKind = "stage_start"
	EventStageEnd    EventKind = "stage_end"
	EventProbeStart  EventKind = "probe_start"
	EventProbeEnd    EventKind = "probe_end"
	EventNote        EventKind = "note"
	EventReliability EventKind = "reliability"
	EventFinalAnswer EventKind = "final_answer"
)

// Actor is the closed set of internal actors. Actor is never shown in
// the human render mode — only debug mode surfaces it.
type Actor string

const (
	ActorTranslator Actor = "translator"
	ActorJunior     Actor = "junior"
	ActorSenior     Actor = "senior"
	ActorAnnad      Actor = "annad"
)

// Event is one append-only transcript entry for a request.
type Event struct {
	Seq       int
	Actor     Actor
	Kind      EventKind
	ElapsedMS int64
	Payload   map[string]any
}

// Transcript is the append-only, monotonic event log for one request.
type Transcript struct {
	requestStart time.Time
	events       []Event
	seq          int
}

// NewTranscript starts a transcript anchored at requestStart; ElapsedMS on
// every appended event is measured from this instant.
func NewTranscript(requestStart time.Time) *Transcript {
	return &Transcript{requestStart: requestStart}
}

// Append records ev at the next sequence number, stamping ElapsedMS from
// the transcript's anchor instant (now - requestStart).
func (t *Transcript) Append(actor Actor, kind EventKind, now time.Time, payload map[string]any) Event {
	t.seq++
	ev := Event{
		Seq:       t.seq,
		Actor:     actor,
		Kind:      kind,
		ElapsedMS: now.Sub(t.requestStart).Milliseconds(),
		Payload:   payload,
	}
	t.events = append(t.events, ev)
	return ev
}

// Events returns a defensive copy of the recorded events.
func (t *Transcript) Events() []Event {
	out := make([]Event, len(t.events))
	copy(out, t.events)
	return out
}

// RenderMode selects how much of the transcript a client sees.
type RenderMode string

const (
	RenderHuman RenderMode = "human"
	RenderDebug RenderMode = "debug"
)

// Render filters events for the given mode: human mode hides internal
// actors, tool names, evidence ids, and planning detail, surfacing only
// Message/Note/Reliability/FinalAnswer; debug mode returns everything.
func (t *Transcript) Render(mode RenderMode) []Event {
	if mode == RenderDebug {
		return t.Events()
	}
	var out []Event
	for _, ev := range t.events {
		switch ev.Kind {
		case EventMessage, EventNote, EventReliability, EventFinalAnswer:
			out = append(out, Event{Seq: ev.Seq, Kind: ev.Kind, ElapsedMS: ev.ElapsedMS, Payload: ev.Payload})
		}
	}
	return out
}
