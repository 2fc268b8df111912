package studio

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagestudio/internal/domain"
)

// --- Fakes ---

type recordingGenerator struct {
	mu    sync.Mutex
	calls []domain.GenerationRequest
	ref   domain.ImageRef
	err   error
}

func (g *recordingGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (domain.ImageRef, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, req)
	return g.ref, g.err
}

func (g *recordingGenerator) Calls() []domain.GenerationRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]domain.GenerationRequest(nil), g.calls...)
}

// gatedGenerator blocks each call until its result is released.
type gatedGenerator struct {
	started chan domain.GenerationRequest
	release map[uint64]chan result
	mu      sync.Mutex
}

type result struct {
	ref domain.ImageRef
	err error
}

func newGatedGenerator() *gatedGenerator {
	return &gatedGenerator{started: make(chan domain.GenerationRequest, 8), release: make(map[uint64]chan result)}
}

func (g *gatedGenerator) gate(seq uint64) chan result {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.release[seq]
	if !ok {
		ch = make(chan result, 1)
		g.release[seq] = ch
	}
	return ch
}

func (g *gatedGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (domain.ImageRef, error) {
	ch := g.gate(req.Seq)
	g.started <- req
	select {
	case r := <-ch:
		return r.ref, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func newTestOrchestrator(t *testing.T, gen Generator, prompt string) *Orchestrator {
	t.Helper()
	o, err := New(gen, Options{Prompt: prompt})
	require.NoError(t, err)
	return o
}

func assertExclusive(t *testing.T, s domain.State) {
	t.Helper()
	_, hasErr := s.Err()
	_, hasImage := s.Image()
	n := 0
	for _, b := range []bool{s.IsLoading(), hasErr, hasImage} {
		if b {
			n++
		}
	}
	assert.LessOrEqual(t, n, 1, "state variants must be exclusive: %+v", s)
}

// --- Tests ---

func TestNewDefaults(t *testing.T) {
	o := newTestOrchestrator(t, &recordingGenerator{}, "")
	snap := o.Snapshot()
	assert.Equal(t, domain.DefaultAspectRatio, snap.AspectRatio)
	assert.Equal(t, domain.PhaseEmpty, snap.State.Phase())

	_, err := New(nil, Options{})
	assert.Error(t, err)

	_, err = New(&recordingGenerator{}, Options{AspectRatio: "2:1"})
	assert.ErrorIs(t, err, domain.ErrUnknownAspectRatio)
}

func TestSubmitEmptyPromptNeverCallsRemote(t *testing.T) {
	for _, prompt := range []string{"", "   ", "\n\t"} {
		gen := &recordingGenerator{ref: "data:image/png;base64,AA"}
		o := newTestOrchestrator(t, gen, prompt)

		state := o.Submit(context.Background())

		msg, ok := state.Err()
		require.True(t, ok)
		assert.Equal(t, "Please enter a prompt.", msg)
		assert.Empty(t, gen.Calls())
		assert.Equal(t, state, o.Snapshot().State)
	}
}

func TestSubmitSuccess(t *testing.T) {
	gen := &recordingGenerator{ref: "data:image/jpeg;base64,R"}
	o := newTestOrchestrator(t, gen, "a lighthouse")

	state := o.Submit(context.Background())

	ref, ok := state.Image()
	require.True(t, ok)
	assert.Equal(t, domain.ImageRef("data:image/jpeg;base64,R"), ref)
	assert.False(t, state.IsLoading())
	_, hasErr := state.Err()
	assert.False(t, hasErr)
	assert.Equal(t, state, o.Snapshot().State)
}

func TestSubmitFailureMessage(t *testing.T) {
	gen := &recordingGenerator{err: errors.New("quota exceeded")}
	o := newTestOrchestrator(t, gen, "a lighthouse")

	state := o.Submit(context.Background())

	msg, ok := state.Err()
	require.True(t, ok)
	assert.Equal(t, "quota exceeded", msg)
	_, hasImage := state.Image()
	assert.False(t, hasImage)
	assert.False(t, state.IsLoading())
}

type emptyError struct{}

func (emptyError) Error() string { return "" }

func TestSubmitFailureWithoutMessage(t *testing.T) {
	gen := &recordingGenerator{err: emptyError{}}
	o := newTestOrchestrator(t, gen, "a lighthouse")

	msg, ok := o.Submit(context.Background()).Err()
	require.True(t, ok)
	assert.Equal(t, "An unknown error occurred.", msg)
}

func TestSubmitRecoversGeneratorPanic(t *testing.T) {
	gen := GeneratorFunc(func(ctx context.Context, req domain.GenerationRequest) (domain.ImageRef, error) {
		panic("boom")
	})
	o := newTestOrchestrator(t, gen, "a lighthouse")

	state := o.Submit(context.Background())
	assert.False(t, state.IsLoading())
	msg, _ := state.Err()
	assert.Equal(t, domain.UnknownErrorMessage, msg)
	assert.False(t, o.Snapshot().State.IsLoading())
}

func TestSubmitSnapshotsFormFields(t *testing.T) {
	gen := newGatedGenerator()
	o := newTestOrchestrator(t, gen, "first prompt")
	require.NoError(t, o.SetAspectRatio(domain.AspectLandscape16x9))

	done := o.Start(context.Background())
	req := <-gen.started

	assert.True(t, o.Snapshot().State.IsLoading())
	o.SetPrompt("edited later")
	require.NoError(t, o.SetAspectRatio(domain.AspectSquare))

	gen.gate(req.Seq) <- result{ref: "data:image/png;base64,X"}
	<-done

	assert.Equal(t, "first prompt", req.Prompt)
	assert.Equal(t, domain.AspectLandscape16x9, req.AspectRatio)
	snap := o.Snapshot()
	assert.Equal(t, "edited later", snap.Prompt)
	assert.Equal(t, domain.AspectSquare, snap.AspectRatio)
}

func TestSubmitClearsPreviousTerminalState(t *testing.T) {
	gen := newGatedGenerator()
	o := newTestOrchestrator(t, gen, "")
	o.Submit(context.Background())
	_, hasErr := o.Snapshot().State.Err()
	require.True(t, hasErr)

	o.SetPrompt("now valid")
	done := o.Start(context.Background())
	req := <-gen.started

	state := o.Snapshot().State
	assert.True(t, state.IsLoading())
	assertExclusive(t, state)

	gen.gate(req.Seq) <- result{err: errors.New("denied")}
	<-done
}

func TestLatestSubmissionWins(t *testing.T) {
	gen := newGatedGenerator()
	o := newTestOrchestrator(t, gen, "prompt")

	firstDone := o.Start(context.Background())
	first := <-gen.started
	secondDone := o.Start(context.Background())
	second := <-gen.started
	require.Less(t, first.Seq, second.Seq)

	gen.gate(second.Seq) <- result{ref: "data:image/png;base64,SECOND"}
	<-secondDone
	gen.gate(first.Seq) <- result{ref: "data:image/png;base64,FIRST"}
	firstState := <-firstDone

	ref, ok := o.Snapshot().State.Image()
	require.True(t, ok)
	assert.Equal(t, domain.ImageRef("data:image/png;base64,SECOND"), ref)

	stale, _ := firstState.Image()
	assert.Equal(t, domain.ImageRef("data:image/png;base64,FIRST"), stale)
}

func TestStaleResultCannotOverwriteValidationError(t *testing.T) {
	gen := newGatedGenerator()
	o := newTestOrchestrator(t, gen, "prompt")

	done := o.Start(context.Background())
	req := <-gen.started

	o.SetPrompt(" ")
	o.Submit(context.Background())

	gen.gate(req.Seq) <- result{ref: "data:image/png;base64,OLD"}
	<-done

	msg, ok := o.Snapshot().State.Err()
	require.True(t, ok)
	assert.Equal(t, domain.ErrEmptyPrompt.Error(), msg)
}

func TestSubmitTimeout(t *testing.T) {
	gen := newGatedGenerator()
	o, err := New(gen, Options{Prompt: "slow", Timeout: 20 * time.Millisecond})
	require.NoError(t, err)

	state := o.Submit(context.Background())
	msg, ok := state.Err()
	require.True(t, ok)
	assert.Contains(t, msg, "deadline exceeded")
}

func TestSubscribeReceivesTransitions(t *testing.T) {
	gen := newGatedGenerator()
	o := newTestOrchestrator(t, gen, "prompt")
	updates, cancel := o.Subscribe()
	defer cancel()

	initial := <-updates
	assert.Equal(t, domain.PhaseEmpty, initial.State.Phase())

	done := o.Start(context.Background())
	req := <-gen.started
	loading := <-updates
	assert.True(t, loading.State.IsLoading())

	gen.gate(req.Seq) <- result{ref: "data:image/png;base64,Z"}
	<-done
	final := <-updates
	assert.Equal(t, domain.PhaseSucceeded, final.State.Phase())
	for _, s := range []domain.State{initial.State, loading.State, final.State} {
		assertExclusive(t, s)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	o := newTestOrchestrator(t, &recordingGenerator{}, "prompt")
	updates, cancel := o.Subscribe()
	<-updates
	cancel()
	cancel()

	_, open := <-updates
	assert.False(t, open)
	o.SetPrompt("after unsubscribe")
}

func TestSetAspectRatioRejectsUnknown(t *testing.T) {
	o := newTestOrchestrator(t, &recordingGenerator{}, "prompt")
	err := o.SetAspectRatio("5:4")
	assert.ErrorIs(t, err, domain.ErrUnknownAspectRatio)
	assert.Equal(t, domain.DefaultAspectRatio, o.Snapshot().AspectRatio)
}

func TestStartIssuesSynchronously(t *testing.T) {
	gen := newGatedGenerator()
	o := newTestOrchestrator(t, gen, "prompt")

	done := o.Start(context.Background())
	assert.True(t, o.Snapshot().State.IsLoading())
	req := <-gen.started
	gen.gate(req.Seq) <- result{ref: "data:image/png;base64,A"}
	<-done

	o.SetPrompt("")
	state, ok := <-o.Start(context.Background())
	require.True(t, ok)
	msg, _ := state.Err()
	assert.Equal(t, domain.ErrEmptyPrompt.Error(), msg)
	snapMsg, _ := o.Snapshot().State.Err()
	assert.Equal(t, msg, snapMsg)
}

type countingMetrics struct {
	mu        sync.Mutex
	rejected  int
	submitted int
	settled   int
	discarded int
	phases    []domain.Phase
}

func (m *countingMetrics) Rejected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected++
}

func (m *countingMetrics) Submitted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitted++
}

func (m *countingMetrics) Discarded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.discarded++
}

func (m *countingMetrics) Settled(phase domain.Phase, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settled++
	m.phases = append(m.phases, phase)
}

func TestMetricsObserveLifecycle(t *testing.T) {
	gen := newGatedGenerator()
	m := &countingMetrics{}
	o, err := New(gen, Options{Prompt: "prompt", Metrics: m})
	require.NoError(t, err)

	firstDone := o.Start(context.Background())
	first := <-gen.started
	secondDone := o.Start(context.Background())
	second := <-gen.started

	gen.gate(second.Seq) <- result{err: errors.New("nope")}
	<-secondDone
	gen.gate(first.Seq) <- result{ref: "data:image/png;base64,OLD"}
	<-firstDone

	o.SetPrompt("")
	o.Submit(context.Background())

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Equal(t, 2, m.submitted)
	assert.Equal(t, 1, m.settled)
	assert.Equal(t, []domain.Phase{domain.PhaseFailed}, m.phases)
	assert.Equal(t, 1, m.discarded)
	assert.Equal(t, 1, m.rejected)
}
