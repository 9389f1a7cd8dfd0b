// Package builder is the enhancement call site of each tool: it picks the
// instruction, guards against re-entrant calls and writes the result back to
// the prompt store.
package builder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/leofalp/promptcraft/core/prompt"
)

// Enhancer rewrites a prompt following an instruction. *client.Client
// implements it.
type Enhancer interface {
	Enhance(ctx context.Context, promptText, instructionText string) (string, error)
}

// Builder runs enhancements for one tool. At most one call is in flight at a
// time; distinct builders run independently.
type Builder struct {
	tool     prompt.ToolID
	store    *prompt.Store
	enhancer Enhancer
	logger   *slog.Logger
	busy     atomic.Bool
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used to report failed calls.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// New returns a Builder for tool.
func New(tool prompt.ToolID, store *prompt.Store, enhancer Enhancer, opts ...Option) (*Builder, error) {
	if _, ok := store.Shape(tool); !ok {
		return nil, fmt.Errorf("%w: %q", prompt.ErrUnknownTool, tool)
	}
	if enhancer == nil {
		return nil, fmt.Errorf("enhancer is required")
	}

	b := &Builder{tool: tool, store: store, enhancer: enhancer, logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Tool returns the builder's tool.
func (b *Builder) Tool() prompt.ToolID { return b.tool }

// Busy reports whether a call is in flight.
func (b *Builder) Busy() bool { return b.busy.Load() }

// Enhance rewrites the tool's main prompt and stores the result as the new
// main prompt. Failures are returned as *EnhanceError, except ErrEmptyPrompt
// and ErrBusy, and leave the prompt untouched.
func (b *Builder) Enhance(ctx context.Context) (string, error) {
	shape, _ := b.store.Shape(b.tool)
	main := shape.MainText()

	var tone prompt.Tone
	if grok, ok := shape.(prompt.ConversationalShape); ok {
		tone = grok.EffectiveTone()
	}

	return b.run(ctx, main, Instruction(b.tool, tone), prompt.FieldMain)
}

// AutoNegative asks the provider for a negative prompt matching the main
// prompt and stores it. Only comfy and a1111 have a negative prompt.
func (b *Builder) AutoNegative(ctx context.Context) (string, error) {
	shape, _ := b.store.Shape(b.tool)
	if _, ok := shape.(prompt.DiffusionShape); !ok {
		return "", fmt.Errorf("%w: %s", ErrNoNegative, b.tool)
	}
	return b.run(ctx, shape.MainText(), negativeInstruction, prompt.FieldNegative)
}

func (b *Builder) run(ctx context.Context, input, instruction string, field prompt.Field) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", ErrEmptyPrompt
	}
	if !b.busy.CompareAndSwap(false, true) {
		return "", ErrBusy
	}
	defer b.busy.Store(false)

	text, err := b.enhancer.Enhance(ctx, input, instruction)
	if err != nil {
		enhanceErr := newEnhanceError(err)
		b.logger.WarnContext(ctx, "enhancement failed",
			slog.String("tool", string(b.tool)),
			slog.String("field", string(field)),
			slog.String("error_kind", enhanceErr.Kind.String()),
			slog.String("error", err.Error()),
		)
		return "", enhanceErr
	}

	text = strings.TrimSpace(text)
	if _, err := b.store.Update(b.tool, field, text); err != nil {
		return "", fmt.Errorf("error storing enhanced prompt: %w", err)
	}
	return text, nil
}

// Set holds one Builder per tool.
type Set struct {
	builders map[prompt.ToolID]*Builder
}

// NewSet creates a Builder for every tool.
func NewSet(store *prompt.Store, enhancer Enhancer, opts ...Option) (*Set, error) {
	set := &Set{builders: make(map[prompt.ToolID]*Builder, len(prompt.Tools))}
	for _, tool := range prompt.Tools {
		b, err := New(tool, store, enhancer, opts...)
		if err != nil {
			return nil, err
		}
		set.builders[tool] = b
	}
	return set, nil
}

// Get returns the builder for tool.
func (s *Set) Get(tool prompt.ToolID) (*Builder, bool) {
	b, ok := s.builders[tool]
	return b, ok
}
