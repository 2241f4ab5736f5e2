package domain

import (
	"context"
	"time"
)

type Span struct {
	Name    string    `json:"name"`
	startTs time.Time `json:"-"`

	Elapsed *int64 `json:"elapsed"`
}

type contextKey string

const ContextProfileKey contextKey = "performanceProfile"

// GetProfile pulls the run profile off the context. Callers that never seeded
// one get a detached profile so pipeline stages can record spans
// unconditionally.
func GetProfile(ctx context.Context) (profile *Profile, endProfile func()) {
	if p, ok := ctx.Value(ContextProfileKey).(*Profile); ok {
		return p, p.End
	}
	detached, end := NewProfile()
	return detached, end
}

// Profile is simply a list of spans
type Profile struct {
	Spans   []*Span `json:"spans"`
	startTs time.Time
	TotalMs *int64 `json:"totalMs"`
}

func (p *Profile) End() {
	t := time.Since(p.startTs).Milliseconds()
	if p.TotalMs == nil {
		p.TotalMs = &t
	}
}

func (s *Span) End() {
	if s.Elapsed == nil {
		t := time.Since(s.startTs).Milliseconds()
		s.Elapsed = &t
	}
}

func NewProfile() (newProfile *Profile, endNewProfile func()) {
	newProfile = &Profile{
		Spans:   []*Span{},
		startTs: time.Now(),
	}

	return newProfile, newProfile.End
}

func NewCtxWithProfile(ctx context.Context) (context.Context, *Profile) {
	newProfile, _ := NewProfile()
	return context.WithValue(ctx, ContextProfileKey, newProfile), newProfile
}

// StartNewSpan ends the last span and begins a new one
// not thread safe
func (p *Profile) StartNewSpan(name string) (newSpan *Span, endSpan func()) {
	newSpan = &Span{
		Name:    name,
		startTs: time.Now(),
	}
	if len(p.Spans) > 0 {
		p.Spans[len(p.Spans)-1].End()
	}
	p.Spans = append(p.Spans, newSpan)
	return newSpan, newSpan.End
}
