package core

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// listenerBuffer is the headroom each subscriber gets beyond the replayed history.
const listenerBuffer = 32

// Session is one import run. Its events are recorded so that late
// subscribers see the full log, and fanned out to live subscribers.
type Session struct {
	ID        string
	Request   Request
	StartedAt time.Time

	mu        sync.Mutex
	percent   int
	history   []Event
	listeners []chan Event
	result    *Result
	err       error
	done      chan struct{}
}

func newSession(id string, req Request) *Session {
	return &Session{
		ID:        id,
		Request:   req,
		StartedAt: time.Now(),
		percent:   -1,
		done:      make(chan struct{}),
	}
}

// SessionStatus is a point-in-time view of a session.
type SessionStatus struct {
	ID        string       `json:"id"`
	Phase     SessionPhase `json:"phase"`
	Percent   int          `json:"percent"`
	StartedAt time.Time    `json:"startedAt"`
	Request   Request      `json:"request"`
	Result    *Result      `json:"result,omitempty"`
}

// Status returns the session's current state.
func (s *Session) Status() SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := SessionStatus{
		ID:        s.ID,
		Phase:     PhaseRunning,
		Percent:   max(s.percent, 0),
		StartedAt: s.StartedAt,
		Request:   s.Request,
		Result:    s.result,
	}
	if s.result != nil {
		st.Phase = s.result.Phase
	}
	return st
}

// Done is closed when the session has finished.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the session finishes or ctx is done.
func (s *Session) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-s.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.err
}

// Subscribe returns a channel that replays every event so far and then
// receives live ones. The channel is closed after the done event.
func (s *Session) Subscribe() <-chan Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Event, len(s.history)+listenerBuffer)
	for _, ev := range s.history {
		ch <- ev
	}
	if s.result != nil {
		close(ch)
		return ch
	}
	s.listeners = append(s.listeners, ch)
	return ch
}

// publish records ev and sends it to every listener. A listener whose
// buffer is full misses the event.
func (s *Session) publish(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev.Seq = len(s.history)
	s.history = append(s.history, ev)
	for _, ch := range s.listeners {
		select {
		case ch <- ev:
		default:
			// Listener is slow, skip this update
		}
	}
}

// finish stores the outcome, delivers the done event and closes all
// listeners. The done event always reaches a listener: if its buffer is
// full the oldest pending event is dropped to make room.
func (s *Session) finish(res *Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.result, s.err = res, err
	ev := Event{Seq: len(s.history), Type: EventDone, Time: time.Now(), Percent: max(s.percent, 0), Result: res}
	s.history = append(s.history, ev)

	for _, ch := range s.listeners {
		select {
		case ch <- ev:
		default:
			select {
			case <-ch:
			default:
			}
			// Only this goroutine sends, so the freed slot is still free.
			ch <- ev
		}
		close(ch)
	}
	s.listeners = nil
	close(s.done)
}

// sessionReporter forwards pipeline output to the session stream and the log.
type sessionReporter struct {
	session *Session
	logger  *slog.Logger
}

// Progress publishes percent if it advances the session.
func (r *sessionReporter) Progress(percent int) {
	s := r.session
	s.mu.Lock()
	if percent <= s.percent {
		s.mu.Unlock()
		return
	}
	s.percent = percent
	s.mu.Unlock()

	s.publish(Event{Type: EventProgress, Time: time.Now(), Percent: percent})
}

// Log writes msg to the structured log and publishes it as a log event.
func (r *sessionReporter) Log(level slog.Level, msg string) {
	r.logger.Log(context.Background(), level, msg)
	r.session.publish(Event{
		Type:    EventLog,
		Time:    time.Now(),
		Level:   strings.ToLower(level.String()),
		Message: msg,
	})
}
