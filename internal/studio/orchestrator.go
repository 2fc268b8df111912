// Package studio owns the lifecycle of image generation requests for a single
// user session.
package studio

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"imagestudio/internal/domain"
)

// Generator is the remote image capability.
type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (domain.ImageRef, error)
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func(ctx context.Context, req domain.GenerationRequest) (domain.ImageRef, error)

func (f GeneratorFunc) Generate(ctx context.Context, req domain.GenerationRequest) (domain.ImageRef, error) {
	return f(ctx, req)
}

// Metrics observes the request lifecycle.
type Metrics interface {
	// Rejected counts submissions that failed validation without a call.
	Rejected()
	Submitted()
	// Settled reports a call whose result was applied.
	Settled(phase domain.Phase, took time.Duration)
	// Discarded reports a call whose result lost to a newer submission.
	Discarded()
}

type nopMetrics struct{}

func (nopMetrics) Rejected() {}

func (nopMetrics) Submitted() {}

func (nopMetrics) Settled(domain.Phase, time.Duration) {}

func (nopMetrics) Discarded() {}

// Options configures an Orchestrator.
type Options struct {
	Logger      *zerolog.Logger
	Metrics     Metrics
	Prompt      string
	AspectRatio domain.AspectRatio
	// Timeout bounds each remote call. Zero means no bound.
	Timeout time.Duration
}

// Orchestrator holds the form fields and the generation state of one session.
// Every submission gets a sequence number; a settlement is applied only when
// it belongs to the latest submission.
type Orchestrator struct {
	gen     Generator
	logger  zerolog.Logger
	metrics Metrics
	timeout time.Duration

	mu     sync.Mutex
	prompt string
	ratio  domain.AspectRatio
	state  domain.State
	seq    uint64
	subs   map[uint64]chan domain.Snapshot
	nextID uint64
}

// New constructs an Orchestrator in the empty state.
func New(gen Generator, opts Options) (*Orchestrator, error) {
	if gen == nil {
		return nil, fmt.Errorf("studio: generator is required")
	}
	ratio := opts.AspectRatio
	if ratio == "" {
		ratio = domain.DefaultAspectRatio
	}
	if !ratio.Valid() {
		return nil, fmt.Errorf("studio: %w: %q", domain.ErrUnknownAspectRatio, ratio)
	}
	logger := zerolog.New(io.Discard)
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	var metrics Metrics = nopMetrics{}
	if opts.Metrics != nil {
		metrics = opts.Metrics
	}
	return &Orchestrator{
		gen:     gen,
		logger:  logger,
		metrics: metrics,
		timeout: opts.Timeout,
		prompt:  opts.Prompt,
		ratio:   ratio,
		state:   domain.EmptyState(),
		subs:    make(map[uint64]chan domain.Snapshot),
	}, nil
}

// SetPrompt replaces the prompt text. It never affects a call already issued.
func (o *Orchestrator) SetPrompt(prompt string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.prompt == prompt {
		return
	}
	o.prompt = prompt
	o.publishLocked()
}

// SetAspectRatio selects exactly one ratio.
func (o *Orchestrator) SetAspectRatio(r domain.AspectRatio) error {
	if !r.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownAspectRatio, r)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ratio == r {
		return nil
	}
	o.ratio = r
	o.publishLocked()
	return nil
}

// Snapshot returns the current form fields and state.
func (o *Orchestrator) Snapshot() domain.Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// Submit issues a generation request built from the current form fields and
// blocks until it settles. The returned state is the one this submission
// settled into; it is visible to observers only if no newer submission was
// issued in the meantime.
func (o *Orchestrator) Submit(ctx context.Context) domain.State {
	req, ok := o.begin()
	if !ok {
		return domain.FailedState(domain.ErrEmptyPrompt.Error())
	}

	start := time.Now()
	result := o.call(ctx, req)
	o.settle(req, result, time.Since(start))
	return result
}

// Start issues the request synchronously, so a Snapshot taken right after it
// returns already shows loading or the validation error, and runs the remote
// call in the background. The channel receives the settled state and is then
// closed.
func (o *Orchestrator) Start(ctx context.Context) <-chan domain.State {
	done := make(chan domain.State, 1)
	req, ok := o.begin()
	if !ok {
		done <- domain.FailedState(domain.ErrEmptyPrompt.Error())
		close(done)
		return done
	}
	go func() {
		defer close(done)
		start := time.Now()
		result := o.call(ctx, req)
		o.settle(req, result, time.Since(start))
		done <- result
	}()
	return done
}

// Subscribe returns a channel carrying the latest snapshot after every change.
// Slow readers only miss intermediate snapshots, never the latest one.
func (o *Orchestrator) Subscribe() (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, 1)
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.subs[id] = ch
	ch <- o.snapshotLocked()
	o.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.subs, id)
			o.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (o *Orchestrator) begin() (domain.GenerationRequest, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.seq++
	if strings.TrimSpace(o.prompt) == "" {
		o.state = domain.FailedState(domain.ErrEmptyPrompt.Error())
		o.logger.Debug().Uint64("seq", o.seq).Msg("studio: rejected empty prompt")
		o.metrics.Rejected()
		o.publishLocked()
		return domain.GenerationRequest{}, false
	}

	req := domain.GenerationRequest{Seq: o.seq, Prompt: o.prompt, AspectRatio: o.ratio}
	o.state = domain.LoadingState()
	o.logger.Info().Uint64("seq", req.Seq).Str("aspect_ratio", req.AspectRatio.String()).Msg("studio: generation submitted")
	o.metrics.Submitted()
	o.publishLocked()
	return req, true
}

func (o *Orchestrator) call(ctx context.Context, req domain.GenerationRequest) (state domain.State) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error().Uint64("seq", req.Seq).Interface("panic", r).Msg("studio: generator panicked")
			state = domain.FailedState(domain.UnknownErrorMessage)
		}
	}()

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	ref, err := o.gen.Generate(ctx, req)
	if err != nil {
		o.logger.Warn().Err(err).Uint64("seq", req.Seq).Msg("studio: generation failed")
		return domain.FailedState(domain.FailureMessage(err))
	}
	return domain.SucceededState(ref)
}

func (o *Orchestrator) settle(req domain.GenerationRequest, result domain.State, took time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if req.Seq != o.seq {
		o.logger.Debug().Uint64("seq", req.Seq).Uint64("latest", o.seq).Msg("studio: discarded stale settlement")
		o.metrics.Discarded()
		return
	}
	o.state = result
	o.logger.Info().Uint64("seq", req.Seq).Str("phase", result.Phase().String()).Dur("took", took).Msg("studio: generation settled")
	o.metrics.Settled(result.Phase(), took)
	o.publishLocked()
}

func (o *Orchestrator) snapshotLocked() domain.Snapshot {
	return domain.Snapshot{Prompt: o.prompt, AspectRatio: o.ratio, State: o.state, Seq: o.seq}
}

func (o *Orchestrator) publishLocked() {
	snap := o.snapshotLocked()
	for _, ch := range o.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
