package workflow

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ds124wfegd/gradphoto/internal/entity"
	"github.com/ds124wfegd/gradphoto/internal/pkg/codec"
	"github.com/ds124wfegd/gradphoto/internal/pkg/compositor"
	"github.com/ds124wfegd/gradphoto/internal/pkg/generation"
	"github.com/sirupsen/logrus"
)

const captionedMIME = "image/png"

// Notifier receives the outcome of every generation attempt that is applied.
type Notifier interface {
	Publish(ctx context.Context, event entity.WorkflowEvent) error
}

type Options struct {
	SessionID        string
	DefaultCaption   string
	ProgressMessages []string
	ProgressInterval time.Duration
	// forward the caption to the model as well as compositing it
	ModelCaption bool
	Notifier     Notifier
}

// Machine serialises workflow transitions for one session. Generation runs on
// its own goroutine and reports back through the stale-response guard in
// Transition.
type Machine struct {
	generator  generation.Generator
	compositor compositor.TextCompositor
	opts       Options

	mu       sync.Mutex
	snap     Snapshot
	progress *Progress
	closed   bool

	inflight sync.WaitGroup
}

func NewMachine(generator generation.Generator, compositor compositor.TextCompositor, opts Options) *Machine {
	return &Machine{
		generator:  generator,
		compositor: compositor,
		opts:       opts,
		snap:       Initial(opts.DefaultCaption),
	}
}

func (m *Machine) log() *logrus.Entry {
	return logrus.WithField("session_id", m.opts.SessionID)
}

// applyLocked runs Transition and keeps the progress ticker in step with the
// loading state. m.mu must be held.
func (m *Machine) applyLocked(e Event) Snapshot {
	prev := m.snap
	next := Transition(prev, e)
	m.snap = next

	wasLoading := prev.State == entity.StateLoading
	isLoading := next.State == entity.StateLoading

	if wasLoading && (!isLoading || next.Attempt != prev.Attempt) {
		m.progress.Cancel()
		m.progress = nil
	}
	if isLoading && (!wasLoading || next.Attempt != prev.Attempt) && !m.closed {
		m.progress = StartProgress(m.opts.ProgressMessages, m.opts.ProgressInterval)
	}
	return next
}

func (m *Machine) SelectFile(src entity.SourceImage) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.applyLocked(Event{Type: EventSelectFile, Source: &src})
	m.log().WithFields(logrus.Fields{
		"filename":  src.Filename,
		"mime_type": src.MIMEType,
		"bytes":     len(src.Data),
	}).Info("Source image selected")
}

// SetCaption edits the caption; it only takes effect in the initial state.
func (m *Machine) SetCaption(caption string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.applyLocked(Event{Type: EventSetCaption, Caption: caption})
	return next.Caption == caption && next.State == entity.StateInitial
}

// Generate starts a generation if the workflow is initial with a source
// image. It reports whether a new attempt was started.
func (m *Machine) Generate() bool {
	return m.start(Event{Type: EventGenerate})
}

// Retry restarts the whole pipeline after a failed attempt.
func (m *Machine) Retry() bool {
	return m.start(Event{Type: EventRetry})
}

func (m *Machine) start(e Event) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}

	prev := m.snap
	next := m.applyLocked(e)
	if next.State != entity.StateLoading || next.Attempt == prev.Attempt {
		m.mu.Unlock()
		return false
	}

	src, caption, attempt := *next.Source, next.Caption, next.Attempt
	m.inflight.Add(1)
	m.mu.Unlock()

	m.log().WithField("attempt", attempt).Info("Generation started")
	go m.run(attempt, src, caption)
	return true
}

// Reset returns to the initial state with the default caption. An in-flight
// generation keeps running but its result is discarded.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.applyLocked(Event{Type: EventReset, Caption: m.opts.DefaultCaption})
	m.log().Info("Workflow reset")
}

func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

// ProgressMessage is the status line shown while loading, "" otherwise.
func (m *Machine) ProgressMessage() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.progressMessageLocked()
}

// View returns the snapshot and its progress message from the same episode.
func (m *Machine) View() (Snapshot, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap, m.progressMessageLocked()
}

func (m *Machine) progressMessageLocked() string {
	if m.snap.State != entity.StateLoading {
		return ""
	}
	return m.progress.Current()
}

// Close stops the progress ticker. Later generations are refused.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.progress.Cancel()
	m.progress = nil
}

// Wait blocks until every started attempt has reported back.
func (m *Machine) Wait() {
	m.inflight.Wait()
}

func (m *Machine) run(attempt uint64, src entity.SourceImage, caption string) {
	defer m.inflight.Done()

	entry := m.log().WithField("attempt", attempt)
	start := time.Now()

	final, mimeType, err := m.pipeline(context.Background(), src, caption)

	e := Event{Attempt: attempt}
	if err != nil {
		entry.WithField("kind", entity.KindOf(err)).Errorf("Generation failed: %v", err)
		e.Type = EventFailed
		e.Err = entity.NewErrorInfo(err)
	} else {
		e.Type = EventSucceeded
		e.Final, e.FinalMIME = final, mimeType
	}

	m.mu.Lock()
	prev := m.snap
	next := m.applyLocked(e)
	m.mu.Unlock()

	if prev.State != entity.StateLoading || prev.Attempt != attempt {
		entry.WithField("state", prev.State).Warn("Discarding stale generation response")
		return
	}

	entry.WithFields(logrus.Fields{
		"state":    next.State,
		"duration": time.Since(start),
	}).Info("Generation finished")
	m.notify(attempt, next, src.Filename)
}

func (m *Machine) pipeline(ctx context.Context, src entity.SourceImage, caption string) ([]byte, string, error) {
	payload, err := codec.Encode(src)
	if err != nil {
		return nil, "", err
	}

	modelCaption := ""
	if m.opts.ModelCaption {
		modelCaption = caption
	}

	generated, err := m.generator.Generate(ctx, payload, modelCaption)
	if err != nil {
		return nil, "", err
	}

	if strings.TrimSpace(caption) == "" {
		return generated.Data, generated.MIMEType, nil
	}

	final, err := m.compositor.Compose(generated.Data, caption)
	if err != nil {
		return nil, "", err
	}
	return final, captionedMIME, nil
}

func (m *Machine) notify(attempt uint64, snap Snapshot, filename string) {
	if m.opts.Notifier == nil {
		return
	}

	event := entity.WorkflowEvent{
		SessionID: m.opts.SessionID,
		Attempt:   attempt,
		State:     snap.State,
		Filename:  filename,
		Time:      time.Now(),
	}
	if snap.Err != nil {
		event.ErrorKind = snap.Err.Kind
	}

	if err := m.opts.Notifier.Publish(context.Background(), event); err != nil {
		m.log().Errorf("Failed to publish workflow event: %v", err)
	}
}
