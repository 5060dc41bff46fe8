// Package enrich runs the per-dimension enrichment passes: scan for
// articles missing a dimension's row, invoke the model, persist exactly
// once. Dimensions are independent and run over the same raw text, so the
// orchestrator parallelizes freely; the unique constraints on the
// enrichment tables make concurrent duplicate inserts harmless.
package enrich

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"veritascope/internal/models"
	"veritascope/internal/topics"
)

// Dimension is one enrichment pass: keywords, topics, sentiment or
// entities. Pending scans the store for articles without this dimension's
// row; EnrichOne computes and persists it for a single article.
type Dimension interface {
	Name() string
	Pending() ([]models.Article, error)
	EnrichOne(ctx context.Context, article models.Article) error
}

// Orchestrator drives all enrichment dimensions.
type Orchestrator struct {
	dimensions []Dimension
	workers    int
	timeout    time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithWorkers bounds per-dimension parallelism.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithTimeout bounds each per-article model invocation.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// NewOrchestrator creates an orchestrator over the given dimensions.
func NewOrchestrator(dimensions []Dimension, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		dimensions: dimensions,
		workers:    4,
		timeout:    30 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RunAll runs every dimension once. Dimensions are independent, so one
// failing never blocks the others.
func (o *Orchestrator) RunAll(ctx context.Context) {
	for _, dim := range o.dimensions {
		if ctx.Err() != nil {
			return
		}
		o.RunDimension(ctx, dim)
	}
}

// RunDimension runs one pass of a single dimension: scan, then enrich each
// pending article with bounded parallelism.
func (o *Orchestrator) RunDimension(ctx context.Context, dim Dimension) {
	pending, err := o.scan(dim)
	if err != nil {
		log.Printf("❌ %s: scan failed: %v", dim.Name(), err)
		return
	}
	if len(pending) == 0 {
		return
	}

	log.Printf("🔄 %s: enriching %d articles...", dim.Name(), len(pending))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		done    int
		failed  int
		aborted bool
	)
	jobs := make(chan models.Article)

	for w := 0; w < o.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for article := range jobs {
				callCtx, cancel := context.WithTimeout(ctx, o.timeout)
				err := dim.EnrichOne(callCtx, article)
				cancel()

				mu.Lock()
				switch {
				case err == nil:
					done++
				case errors.Is(err, topics.ErrModelNotFound):
					// Training has not run; nothing in this pass can succeed.
					if !aborted {
						log.Printf("%s: model not found, skipping pass (run training first)", dim.Name())
						aborted = true
					}
				default:
					failed++
					log.Printf("%s: article %s: %v", dim.Name(), article.ID, err)
				}
				mu.Unlock()
			}
		}()
	}

feed:
	for _, article := range pending {
		mu.Lock()
		stop := aborted
		mu.Unlock()
		if stop || ctx.Err() != nil {
			break feed
		}
		select {
		case jobs <- article:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if done > 0 || failed > 0 {
		log.Printf("✅ %s: %d enriched, %d failed", dim.Name(), done, failed)
	}
}

// scan retries once, since a pending scan only touches the store and a
// transient connection error is worth one more attempt.
func (o *Orchestrator) scan(dim Dimension) ([]models.Article, error) {
	pending, err := dim.Pending()
	if err == nil {
		return pending, nil
	}
	time.Sleep(100 * time.Millisecond)
	return dim.Pending()
}
