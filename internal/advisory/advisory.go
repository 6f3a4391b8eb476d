// Package advisory turns derived metrics into natural-language advice from an
// external chat-completion service.
//
// Advise never fails from the caller's point of view: any transport,
// authentication or response problem yields the configured fallback text and
// the underlying reason is only logged. Nothing is cached; every call issues
// exactly one completion request.
package advisory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kanna-karuppasamy/solarwaterflow/internal/models"
)

// DefaultFallback is returned when no fallback text is configured.
const DefaultFallback = "AI advice is unavailable right now. The computed metrics above are still valid."

var (
	// ErrEmptyCompletion is reported when the service answers with no text.
	ErrEmptyCompletion = errors.New("empty completion")
	// ErrNoCompleter is reported when the client was built without a transport.
	ErrNoCompleter = errors.New("no completer configured")
)

// Completer is the transport to a text-completion service.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// State is the lifecycle of one advisory request.
type State int

const (
	StatePending State = iota
	StateSucceeded
	StateFailedFallback
)

func (s State) String() string {
	switch s {
	case StateSucceeded:
		return "succeeded"
	case StateFailedFallback:
		return "failed_fallback"
	default:
		return "pending"
	}
}

// Result is either generated text or the fallback. Reason is set only for
// StateFailedFallback and must not be shown to end users.
type Result struct {
	State  State
	Text   string
	Reason error
}

// OK reports whether the text came from the model.
func (r Result) OK() bool { return r.State == StateSucceeded }

// Advice converts the result to its display form.
func (r Result) Advice() models.Advice {
	source := models.AdviceFromModel
	if !r.OK() {
		source = models.AdviceFromFallback
	}
	return models.Advice{Text: r.Text, Source: source}
}

// Options tune a Client.
type Options struct {
	Timeout         time.Duration
	ExtendedMetrics bool
	Fallback        string
	MaxPromptChars  int
}

// Client is the advisory front end over a Completer.
type Client struct {
	completer Completer
	opts      Options
	logger    *zap.Logger
}

// NewClient creates a client. Zero-valued options take defaults.
func NewClient(completer Completer, opts Options, logger *zap.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Fallback == "" {
		opts.Fallback = DefaultFallback
	}
	if opts.MaxPromptChars <= 0 {
		opts.MaxPromptChars = DefaultMaxPromptChars
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{completer: completer, opts: opts, logger: logger}
}

// Fallback returns the text used when the service is unavailable.
func (c *Client) Fallback() string { return c.opts.Fallback }

// Advise requests advice for m. It blocks until the service answers, the
// timeout expires or ctx is cancelled.
func (c *Client) Advise(ctx context.Context, m models.DerivedMetrics) Result {
	prompt := BuildPrompt(m, c.opts.ExtendedMetrics, c.opts.MaxPromptChars)

	start := time.Now()
	text, err := c.complete(ctx, prompt)
	if err != nil {
		c.logger.Warn("advisory unavailable, using fallback",
			zap.Error(err),
			zap.Duration("elapsed", time.Since(start)))
		return Result{State: StateFailedFallback, Text: c.opts.Fallback, Reason: err}
	}

	c.logger.Debug("advisory generated",
		zap.Int("prompt_chars", len(prompt)),
		zap.Int("advice_chars", len(text)),
		zap.Duration("elapsed", time.Since(start)))
	return Result{State: StateSucceeded, Text: text}
}

func (c *Client) complete(ctx context.Context, prompt string) (text string, err error) {
	if c.completer == nil {
		return "", ErrNoCompleter
	}

	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("completer panicked: %v", r)
		}
	}()

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	text, err = c.completer.Complete(ctx, SystemPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("advisory completion: %w", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
