package worker

import (
	"context"
	"log"
	"sync"
	"time"

	"veritascope/internal/enrich"
	"veritascope/internal/ingest"
)

// WorkerService runs the periodic pull-and-enrich loop in the background:
// fetch fresh headlines, then sweep every enrichment dimension over
// whatever is still unenriched.
type WorkerService struct {
	ingestService *ingest.Service
	orchestrator  *enrich.Orchestrator
	interval      time.Duration

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	running   bool
	startedAt time.Time
	lastPass  time.Time
	mu        sync.RWMutex
}

// NewWorkerService creates a worker that pulls and enriches every
// interval.
func NewWorkerService(ingestService *ingest.Service, orchestrator *enrich.Orchestrator, interval time.Duration) *WorkerService {
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerService{
		ingestService: ingestService,
		orchestrator:  orchestrator,
		interval:      interval,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Start launches the background loop. Calling Start on a running service
// is a no-op.
func (ws *WorkerService) Start() error {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.running {
		return nil
	}

	log.Println("Starting background enrichment worker...")

	ws.wg.Add(1)
	go func() {
		defer ws.wg.Done()
		ws.run()
	}()

	ws.running = true
	ws.startedAt = time.Now()
	log.Println("Background enrichment worker started")
	return nil
}

// Stop signals the loop to exit and waits for the in-flight pass to
// finish.
func (ws *WorkerService) Stop() {
	ws.mu.Lock()
	if !ws.running {
		ws.mu.Unlock()
		return
	}
	log.Println("Stopping background enrichment worker...")
	ws.cancel()
	ws.mu.Unlock()

	// Wait with the mutex released: an in-flight pass takes it to record
	// lastPass and must not block against a waiting Stop.
	ws.wg.Wait()

	ws.mu.Lock()
	ws.running = false
	ws.mu.Unlock()
	log.Println("Background enrichment worker stopped")
}

// IsRunning returns whether the worker loop is active.
func (ws *WorkerService) IsRunning() bool {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return ws.running
}

func (ws *WorkerService) run() {
	// One pass right away so a fresh deployment has data before the
	// first tick.
	ws.runPass()

	ticker := time.NewTicker(ws.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ws.ctx.Done():
			log.Println("Enrichment loop stopped")
			return
		case <-ticker.C:
			ws.runPass()
		}
	}
}

// RunPassNow triggers a pull-and-enrich pass outside the schedule.
func (ws *WorkerService) RunPassNow(ctx context.Context) {
	ws.runPassCtx(ctx)
}

func (ws *WorkerService) runPass() {
	ws.runPassCtx(ws.ctx)
}

func (ws *WorkerService) runPassCtx(ctx context.Context) {
	if ws.ingestService != nil {
		if _, err := ws.ingestService.PullLatest(ctx); err != nil {
			log.Printf("⚠️ Headline pull failed: %v", err)
		}
	}
	ws.orchestrator.RunAll(ctx)

	ws.mu.Lock()
	ws.lastPass = time.Now()
	ws.mu.Unlock()
}

// GetStatus reports the worker state for the health endpoint.
func (ws *WorkerService) GetStatus() map[string]interface{} {
	ws.mu.RLock()
	defer ws.mu.RUnlock()

	status := map[string]interface{}{
		"running":  ws.running,
		"interval": ws.interval.String(),
	}
	if ws.running {
		status["uptime"] = time.Since(ws.startedAt).String()
	}
	if !ws.lastPass.IsZero() {
		status["last_pass"] = ws.lastPass.Format(time.RFC3339)
	}
	return status
}
