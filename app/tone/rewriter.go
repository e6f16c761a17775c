package tone

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	DefaultModel = "keyword-v1"

	maxConcurrentRewrites = 4
)

// ServiceError reports a failed call to a rewrite service.
type ServiceError struct {
	Model string
	Err   error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("rewrite service %s: %v", e.Model, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

var ErrEmptyText = errors.New("empty text")

// Rewriter turns a status line into leadership-friendly wording.
type Rewriter interface {
	Rewrite(ctx context.Context, text string) (string, error)
}

var _ Rewriter = (*KeywordRewriter)(nil)

type keywordRule struct {
	keywords []string
	sentence string
}

var keywordRules = []keywordRule{
	{[]string{"api", "backend"}, "Backend API successfully deployed with enhanced authentication protocols."},
	{[]string{"delay", "miss"}, "Project timeline requires adjustment due to third-party integration delays."},
	{[]string{"complete", "finish"}, "Milestone completed ahead of schedule, enabling accelerated testing phase."},
	{[]string{"issue", "problem"}, "Critical system vulnerability identified; remediation plan in progress."},
}

const defaultSentence = "Task progressing as planned with no significant deviations from timeline."

// KeywordRewriter stands in for a language-model rewrite service. It swaps
// the input for a fixed leadership sentence picked by keyword.
type KeywordRewriter struct {
	Model   string
	Latency time.Duration
}

func NewKeywordRewriter(latency time.Duration) *KeywordRewriter {
	return &KeywordRewriter{Model: DefaultModel, Latency: latency}
}

func (r *KeywordRewriter) Rewrite(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", &ServiceError{Model: r.Model, Err: ErrEmptyText}
	}

	if r.Latency > 0 {
		timer := time.NewTimer(r.Latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", &ServiceError{Model: r.Model, Err: ctx.Err()}
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return "", &ServiceError{Model: r.Model, Err: err}
	}

	lowered := cases.Lower(language.Und).String(text)
	for _, rule := range keywordRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lowered, keyword) {
				return rule.sentence, nil
			}
		}
	}
	return defaultSentence, nil
}

// RewriteEach rewrites texts concurrently and returns results in input
// order. A text whose rewrite fails is returned unchanged; the failures are
// joined into the returned error.
func RewriteEach(ctx context.Context, r Rewriter, texts []string) ([]string, error) {
	results := make([]string, len(texts))
	failures := make([]error, len(texts))

	var g errgroup.Group
	g.SetLimit(maxConcurrentRewrites)
	for i, text := range texts {
		g.Go(func() error {
			rewritten, err := r.Rewrite(ctx, text)
			if err != nil {
				results[i] = text
				failures[i] = fmt.Errorf("failed to rewrite text %d: %w", i, err)
				return nil
			}
			results[i] = rewritten
			return nil
		})
	}
	_ = g.Wait()

	return results, errors.Join(failures...)
}
