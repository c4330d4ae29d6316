package cursor

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// SessionInfo holds the metadata announced by the system init message.
type SessionInfo struct {
	SessionID string
	Model     string
	CWD       string
}

// Session is the event-based layer over a one-shot cursor-agent run.
// It owns the CLI process and translates the message stream into
// higher-level events for consumers that want deltas rather than raw
// messages.
type Session struct {
	events    chan Event
	done      chan struct{}
	process   *processManager
	info      *SessionInfo
	prompt    string
	opts      Options
	closeOnce sync.Once
	mu        sync.RWMutex
	started   bool
	stopped   bool
}

// NewSession creates a session for the given prompt. The CLI process is
// not spawned until Start.
func NewSession(prompt string, opts ...Option) *Session {
	options := buildOptions(opts)
	return &Session{
		prompt: prompt,
		opts:   options,
		events: make(chan Event, options.EventBufferSize),
		done:   make(chan struct{}),
	}
}

// Start spawns the CLI process and begins reading events. Spawn
// failures are returned synchronously; everything after that arrives on
// Events.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}

	s.process = newProcessManager(s.prompt, s.opts)
	if err := s.process.Start(ctx); err != nil {
		return err
	}

	go s.readLoop(ctx)

	s.started = true
	return nil
}

// Events returns the read-only event channel. It is closed when the
// session ends or Stop is called.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Info returns session metadata, available after ReadyEvent.
func (s *Session) Info() *SessionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info
}

// Stop terminates the session and the underlying process. Idempotent.
// The event channel is closed by the read loop once it observes the
// teardown, so in-flight emits cannot race a close.
func (s *Session) Stop() error {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	s.mu.Unlock()

	close(s.done)
	s.process.Stop()
	return nil
}

func (s *Session) closeEvents() {
	s.closeOnce.Do(func() { close(s.events) })
}

// readLoop consumes stdout records until EOF or error and dispatches
// events. Runs in its own goroutine for the session's lifetime.
func (s *Session) readLoop(ctx context.Context) {
	defer s.closeEvents()

	var textBuilder strings.Builder

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		default:
		}

		line, err := s.process.ReadLine()
		if err != nil {
			if s.isStopped() {
				return
			}
			if finalErr := translateReadError(ctx, s.process, err); finalErr != nil {
				s.emit(ErrorEvent{Error: finalErr, Context: "read"})
			}
			return
		}

		s.handleLine(line, &textBuilder)
	}
}

// handleLine classifies one record and emits the matching events.
func (s *Session) handleLine(line []byte, textBuilder *strings.Builder) {
	msg, err := ParseMessage(line)
	if err != nil {
		s.emit(ErrorEvent{Error: err, Context: "parse"})
		return
	}
	if msg == nil {
		return
	}

	switch m := msg.(type) {
	case *SystemMessage:
		s.handleSystem(m)
	case *AssistantMessage:
		s.handleAssistant(m, textBuilder)
	case *ResultMessage:
		s.handleResult(m)
	case *UserMessage:
		// Prompt echo carries nothing the consumer did not already have.
	}
}

func (s *Session) handleSystem(msg *SystemMessage) {
	if msg.Subtype != "init" {
		return
	}

	s.mu.Lock()
	s.info = &SessionInfo{
		SessionID: msg.SessionID(),
		Model:     msg.Model(),
		CWD:       msg.CWD(),
	}
	s.mu.Unlock()

	s.emit(ReadyEvent{
		SessionID: msg.SessionID(),
		Model:     msg.Model(),
		CWD:       msg.CWD(),
	})
}

func (s *Session) handleAssistant(msg *AssistantMessage, textBuilder *strings.Builder) {
	for _, block := range msg.Content {
		switch b := block.(type) {
		case *TextBlock:
			textBuilder.WriteString(b.Text)
			s.emit(TextEvent{Text: b.Text, FullText: textBuilder.String()})
		case *ToolUseBlock:
			s.emit(ToolStartEvent{ID: b.ID, Name: b.Name, Input: b.Input})
		case *ToolResultBlock:
			isError := b.IsError != nil && *b.IsError
			s.emit(ToolCompleteEvent{ID: b.ToolUseID, Result: b.Content, IsError: isError})
		}
	}
}

func (s *Session) handleResult(msg *ResultMessage) {
	var resultErr error
	if msg.IsError {
		resultErr = fmt.Errorf("%s", msg.Result)
	}

	s.emit(TurnCompleteEvent{
		Success:       !msg.IsError,
		SessionID:     msg.SessionID,
		DurationMs:    msg.DurationMs,
		DurationAPIMs: msg.DurationAPIMs,
		Error:         resultErr,
	})
}

// emit sends an event unless the session has been stopped. A full
// channel drops the event rather than blocking the read loop.
func (s *Session) emit(event Event) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.events <- event:
	case <-s.done:
	default:
		s.opts.Logger.Debug("event channel full, dropping event", "type", event.Type())
	}
}

func (s *Session) isStopped() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stopped
}

// QueryStream sends a one-shot prompt and returns an event channel.
// The caller should range over the channel until it closes; the process
// is torn down when the turn completes or ctx is canceled.
func QueryStream(ctx context.Context, prompt string, opts ...Option) (<-chan Event, error) {
	session := NewSession(prompt, opts...)
	if err := session.Start(ctx); err != nil {
		return nil, err
	}

	out := make(chan Event, session.opts.EventBufferSize)
	go func() {
		defer close(out)
		defer session.Stop()
		for evt := range session.Events() {
			select {
			case out <- evt:
			case <-ctx.Done():
				return
			}
			if _, ok := evt.(TurnCompleteEvent); ok {
				return
			}
		}
	}()

	return out, nil
}
