package analytics

import (
	"LinkPulse-Backend/internal/config"
	"LinkPulse-Backend/internal/domain"
	"LinkPulse-Backend/internal/geoip"
	"LinkPulse-Backend/internal/metrics"
	"LinkPulse-Backend/internal/repository"
	"LinkPulse-Backend/pkg/referrer"
	"LinkPulse-Backend/pkg/useragent"
	"context"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const storedFieldLimit = 500 // user agent and referer are truncated to bound row size

// ClickJob carries the request data needed to record one click.
type ClickJob struct {
	LinkID    string
	ShortCode string
	IPAddress string
	UserAgent string
	Referer   string
	ClickedAt time.Time
}

// Tracker records clicks asynchronously: the redirect response never
// waits on classification, geolocation or the storage write. Tracking is
// best-effort by contract — failed or dropped jobs are logged and
// discarded, never retried.
type Tracker struct {
	config   config.Tracking
	storage  repository.Storage
	resolver geoip.Resolver
	log      *zap.Logger
	jobQueue chan *ClickJob
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	started  bool
	mu       sync.RWMutex
}

// NewTracker creates a click tracker.
func NewTracker(storage repository.Storage, resolver geoip.Resolver, log *zap.Logger, cfg config.Tracking) *Tracker {
	ctx, cancel := context.WithCancel(context.Background())

	return &Tracker{
		config:   cfg,
		storage:  storage,
		resolver: resolver,
		log:      log,
		jobQueue: make(chan *ClickJob, cfg.BufferSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the worker goroutines.
func (t *Tracker) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return fmt.Errorf("tracker already started")
	}

	t.log.Info("starting click tracker",
		zap.Int("workers", t.config.Workers),
		zap.Int("buffer_size", t.config.BufferSize),
	)

	for i := 0; i < t.config.Workers; i++ {
		t.wg.Add(1)
		go t.worker(i)
	}

	t.started = true
	return nil
}

// Stop gracefully shuts down the tracker, draining queued jobs until the
// configured timeout.
func (t *Tracker) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.started {
		return fmt.Errorf("tracker not started")
	}

	t.log.Info("stopping click tracker")

	close(t.jobQueue)

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.log.Info("click tracker stopped gracefully")
	case <-time.After(t.config.ShutdownTimeout):
		t.cancel()
		t.log.Warn("click tracker shutdown timeout reached")
		return fmt.Errorf("shutdown timeout reached")
	}

	t.cancel()
	t.started = false
	return nil
}

// Submit queues a click for recording. When the queue is full the job is
// dropped: losing a click is preferable to delaying a redirect.
func (t *Tracker) Submit(job *ClickJob) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.started {
		return fmt.Errorf("tracker not started")
	}

	select {
	case t.jobQueue <- job:
		return nil
	case <-t.ctx.Done():
		return fmt.Errorf("tracker is shutting down")
	default:
		metrics.ClicksDropped.Inc()
		t.log.Error("tracking queue is full, dropping click",
			zap.String("short_code", job.ShortCode),
			zap.Int("queue_size", len(t.jobQueue)),
		)
		return fmt.Errorf("tracking queue is full")
	}
}

func (t *Tracker) worker(workerID int) {
	defer t.wg.Done()

	log := t.log.With(zap.Int("worker_id", workerID))
	log.Debug("tracking worker started")

	for job := range t.jobQueue {
		t.process(log, job)
	}

	log.Debug("tracking worker stopped")
}

// process builds and stores one click record. Every failure here is
// logged and swallowed: the visitor was already redirected.
func (t *Tracker) process(log *zap.Logger, job *ClickJob) {
	// Derived from the tracker context so a forced shutdown interrupts
	// in-flight jobs stuck in the resolver or the database.
	ctx, cancel := context.WithTimeout(t.ctx, 30*time.Second)
	defer cancel()

	device := useragent.Classify(job.UserAgent)
	source := referrer.Classify(job.Referer)

	location, err := t.resolver.ResolveByIP(ctx, job.IPAddress)
	if err != nil {
		metrics.GeoLookupFailures.Inc()
		log.Debug("geolocation lookup failed",
			zap.String("short_code", job.ShortCode),
			zap.Error(err))
		location = domain.Location{Source: domain.LocationSourceIP}
	}

	// A fresh session id is minted per request, so unique_clicks always
	// tracks total_clicks until visitor cookies carry a persistent id.
	click := &domain.Click{
		ID:        uuid.NewString(),
		LinkID:    job.LinkID,
		ShortCode: job.ShortCode,
		Timestamp: job.ClickedAt,
		IPAddress: job.IPAddress,
		UserAgent: truncate(job.UserAgent, storedFieldLimit),
		SessionID: uuid.NewString(),
		Location:  location,
		Device: domain.DeviceInfo{
			Type:           device.Type,
			Browser:        device.Browser,
			BrowserVersion: device.BrowserVersion,
			OS:             device.OS,
			OSVersion:      device.OSVersion,
		},
	}
	if job.Referer != "" {
		ref := truncate(job.Referer, storedFieldLimit)
		click.Referer = &ref
	}

	if err := t.storage.InsertClick(ctx, click); err != nil {
		metrics.TrackingFailures.Inc()
		log.Error("failed to record click",
			zap.String("short_code", job.ShortCode),
			zap.Error(err))
		return
	}

	metrics.ClicksTracked.Inc()
	log.Debug("click recorded",
		zap.String("short_code", job.ShortCode),
		zap.String("device_type", device.Type),
		zap.String("traffic_source", source.SourceType),
	)
}

// truncate cuts s to at most limit bytes, backing up to a rune boundary
// so the stored value stays valid UTF-8.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
