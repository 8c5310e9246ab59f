// Package analyze turns a natural-language question into a structured
// decomposition by prompting a primary generation provider and falling back
// to a secondary one.
package analyze

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/querysmith/internal/exemplar"
	"github.com/ppiankov/querysmith/internal/llm"
	"github.com/ppiankov/querysmith/internal/logging"
	"github.com/ppiankov/querysmith/internal/model"
	"github.com/ppiankov/querysmith/internal/worker"
)

// ErrProvidersUnavailable is returned when neither provider produced a
// usable decomposition
var ErrProvidersUnavailable = errors.New("both AI providers are unavailable")

// State is a step of the generation state machine
type State int

const (
	StateTryPrimary State = iota
	StateTrySecondary
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateTryPrimary:
		return "try_primary"
	case StateTrySecondary:
		return "try_secondary"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SleepFunc pauses for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Options configures an Analyzer. Only Primary is required.
type Options struct {
	Primary   llm.Provider
	Secondary llm.Provider

	// Corpus defaults to the embedded exemplar corpus
	Corpus []model.Exemplar
	K      int

	MaxTokens       int
	Temperature     float64
	PrimaryAttempts int
	Backoff         time.Duration

	Sleep   SleepFunc
	Limiter *worker.Limiter
	Logger  *zap.SugaredLogger
}

// Analysis is a successful decomposition plus how it was obtained
type Analysis struct {
	Result    *model.GenerationResult
	Provider  string
	Attempts  int
	RequestID string
	Exemplars []string
}

// Analyzer runs the primary/secondary generation protocol
type Analyzer struct {
	primary     llm.Provider
	secondary   llm.Provider
	corpus      []model.Exemplar
	k           int
	maxTokens   int
	temperature float64
	attempts    int
	backoff     time.Duration
	sleep       SleepFunc
	limiter     *worker.Limiter
	logger      *zap.SugaredLogger
}

// New creates an Analyzer from opts, filling defaults from model.DefaultConfig
func New(opts Options) (*Analyzer, error) {
	if opts.Primary == nil {
		return nil, errors.WithHint(errors.New("no primary generation provider configured"),
			"set generation.primary.provider and its API key")
	}

	def := model.DefaultConfig().Generation
	a := &Analyzer{
		primary:     opts.Primary,
		secondary:   opts.Secondary,
		corpus:      opts.Corpus,
		k:           opts.K,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
		attempts:    opts.PrimaryAttempts,
		backoff:     opts.Backoff,
		sleep:       opts.Sleep,
		limiter:     opts.Limiter,
		logger:      logging.Component(opts.Logger, "analyze"),
	}
	if a.corpus == nil {
		corpus, err := exemplar.Corpus()
		if err != nil {
			return nil, err
		}
		a.corpus = corpus
	}
	if a.k <= 0 {
		a.k = exemplar.DefaultK
	}
	if a.maxTokens <= 0 {
		a.maxTokens = def.MaxTokens
	}
	if a.attempts <= 0 {
		a.attempts = def.PrimaryAttempts
	}
	if a.backoff <= 0 {
		a.backoff = def.Backoff
	}
	if a.sleep == nil {
		a.sleep = sleepContext
	}
	return a, nil
}

// Prompt returns the rendered prompt for question and the exemplars chosen
// for it
func (a *Analyzer) Prompt(question string, intent model.Intent) (string, []model.Exemplar, error) {
	demos := exemplar.Select(question, intent, a.corpus, a.k)
	prompt, err := RenderPrompt(question, intent, demos)
	if err != nil {
		return "", nil, err
	}
	return prompt, demos, nil
}

// Analyze decomposes question. The primary provider is tried up to the
// configured number of attempts, pausing for the backoff only after an
// overload. Any other failure, including an unparseable answer, moves on to
// the secondary provider, which gets a single attempt.
func (a *Analyzer) Analyze(ctx context.Context, question string, intent model.Intent) (*Analysis, error) {
	requestID := uuid.NewString()
	ctx = logging.WithRequestID(ctx, requestID)
	logger := logging.FromContext(ctx, a.logger)

	prompt, demos, err := a.Prompt(question, intent)
	if err != nil {
		return nil, err
	}

	out := &Analysis{RequestID: requestID, Exemplars: exemplar.IDs(demos)}
	var lastErr error
	state := StateTryPrimary

	for {
		switch state {
		case StateTryPrimary:
			out.Attempts++
			res, err := a.call(ctx, a.primary, prompt)
			if err == nil {
				out.Result, out.Provider = res, a.primary.Name()
				state = StateDone
				continue
			}
			lastErr = err
			logger.Warnw("primary provider failed",
				logging.FieldProvider, a.primary.Name(),
				logging.FieldAttempt, out.Attempts,
				logging.FieldError, err)

			if llm.IsOverloaded(err) && out.Attempts < a.attempts {
				if err := a.sleep(ctx, a.backoff); err != nil {
					return nil, errors.Wrap(err, "waiting to retry primary provider")
				}
				continue
			}
			state = StateTrySecondary

		case StateTrySecondary:
			if a.secondary == nil {
				state = StateFailed
				continue
			}
			logger.Infow("falling back to secondary provider",
				logging.FieldProvider, a.secondary.Name(),
				logging.FieldState, state)
			res, err := a.call(ctx, a.secondary, prompt)
			if err == nil {
				out.Result, out.Provider = res, a.secondary.Name()
				state = StateDone
				continue
			}
			lastErr = err
			logger.Warnw("secondary provider failed",
				logging.FieldProvider, a.secondary.Name(),
				logging.FieldError, err)
			state = StateFailed

		case StateDone:
			if out.Result.Intent == "" {
				out.Result.Intent = intent
			}
			logger.Debugw("analysis complete",
				logging.FieldProvider, out.Provider,
				logging.FieldAttempt, out.Attempts,
				logging.FieldIntent, out.Result.Intent)
			return out, nil

		case StateFailed:
			err := errors.WithSecondaryError(ErrProvidersUnavailable, lastErr)
			return nil, errors.WithHint(err, "try again later")
		}
	}
}

func (a *Analyzer) call(ctx context.Context, p llm.Provider, prompt string) (*model.GenerationResult, error) {
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx, "llm://"+p.Name()); err != nil {
			return nil, err
		}
	}
	resp, err := p.Complete(ctx, llm.CompletionRequest{
		Prompt:      prompt,
		MaxTokens:   a.maxTokens,
		Temperature: a.temperature,
	})
	if err != nil {
		return nil, err
	}
	return llm.ParseResult(resp.Text)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
