package oracle

import (
	"time"

	"github.com/m-mizutani/oracle/pkg/adapter"
	"github.com/m-mizutani/oracle/pkg/policy"
)

const (
	DefaultInterpretTimeout = 60 * time.Second
	DefaultSynthesisTimeout = 120 * time.Second
)

// UseCase is the oracle request pipeline: one interpret call, then an
// image synthesis call for IMAGE answers. It keeps no state between
// submissions.
type UseCase struct {
	gemini    adapter.Gemini
	persona   *Persona
	admission *policy.Admission

	interpretTimeout time.Duration
	synthesisTimeout time.Duration
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithPersona replaces the built-in persona
func WithPersona(p *Persona) Option {
	return func(uc *UseCase) {
		if p != nil {
			uc.persona = p
		}
	}
}

// WithAdmission sets the policy consulted before any remote call
func WithAdmission(a *policy.Admission) Option {
	return func(uc *UseCase) {
		uc.admission = a
	}
}

// WithInterpretTimeout bounds the interpret call. Zero disables the bound.
func WithInterpretTimeout(d time.Duration) Option {
	return func(uc *UseCase) {
		uc.interpretTimeout = d
	}
}

// WithSynthesisTimeout bounds the image call. Zero disables the bound.
func WithSynthesisTimeout(d time.Duration) Option {
	return func(uc *UseCase) {
		uc.synthesisTimeout = d
	}
}

// New creates a new oracle UseCase instance
func New(gemini adapter.Gemini, opts ...Option) *UseCase {
	uc := &UseCase{
		gemini:           gemini,
		persona:          DefaultPersona(),
		interpretTimeout: DefaultInterpretTimeout,
		synthesisTimeout: DefaultSynthesisTimeout,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}
