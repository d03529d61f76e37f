package chat

import (
	"context"
	"strings"

	"github.com/iksnae/agent-chat/internal"
	"github.com/iksnae/agent-chat/internal/agent"
	"github.com/iksnae/agent-chat/internal/metrics"
)

// ErrorReply is shown in place of the agent's answer when a turn fails
const ErrorReply = "Sorry, I encountered an error. Please try again."

// EmptyReply stands in for a reply with no text
const EmptyReply = "..."

// Outcome is the result of a completed turn
type Outcome struct {
	Reply   internal.Message
	Session *internal.Session // the record as persisted
	Err     error             // agent fault, nil on success
}

// Failed reports whether the agent service could not answer
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Orchestrator runs turns for the manager's active session
type Orchestrator struct {
	manager *Manager
}

// NewOrchestrator creates an orchestrator bound to m
func NewOrchestrator(m *Manager) *Orchestrator {
	return &Orchestrator{manager: m}
}

// SendTurn sends text as the next user message of the active session.
// It returns ErrEmptyInput, ErrNoActiveSession or ErrTurnInFlight without
// side effects. Otherwise the turn always completes: an agent failure is
// recorded as an error reply in the transcript and reported in Outcome.Err.
func (o *Orchestrator) SendTurn(ctx context.Context, text string) (Outcome, error) {
	c := o.manager.active

	if strings.TrimSpace(text) == "" {
		metrics.TurnRejected("empty")
		return Outcome{}, internal.ErrEmptyInput
	}
	if c.State() == Uninitialized {
		metrics.TurnRejected("no_session")
		return Outcome{}, internal.ErrNoActiveSession
	}
	if !c.tryBegin() {
		metrics.TurnRejected("in_flight")
		return Outcome{}, internal.ErrTurnInFlight
	}
	defer c.end()

	t, ok := c.beginTurn(internal.UserMessage(text))
	if !ok {
		metrics.TurnRejected("no_session")
		return Outcome{}, internal.ErrNoActiveSession
	}

	start := o.manager.now()
	reply, err := o.manager.agent.Run(ctx, agent.RunRequest{
		UserID:     t.record.UserID,
		SessionID:  t.record.ID,
		History:    append([]internal.Message(nil), t.record.Messages...),
		NewMessage: text,
	})
	finished := o.manager.now()
	metrics.ObserveTurn(err == nil, internal.FaultClass(err), finished.Sub(start))

	var answer internal.Message
	if err != nil {
		internal.LogError("Turn failed for session %s (%s): %v", t.record.ID, internal.FaultClass(err), err)
		answer = internal.AssistantMessage(ErrorReply)
	} else {
		if reply == "" {
			reply = EmptyReply
		}
		answer = internal.AssistantMessage(reply)
	}

	record, active := c.finishTurn(t, answer, finished)
	if !active {
		if _, stored := o.manager.store.Get(record.ID); !stored {
			internal.LogDebug("Session %s was closed during the turn, not persisting", record.ID)
			return Outcome{Reply: answer, Session: record, Err: err}, nil
		}
	}
	o.manager.store.Save(record)

	return Outcome{Reply: answer, Session: record, Err: err}, nil
}
