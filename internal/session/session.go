package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"cryptocheckout/internal/feed"
	"cryptocheckout/internal/logger"
	"cryptocheckout/internal/metrics"
	"cryptocheckout/internal/models"
	"cryptocheckout/internal/store"
)

// Navigation targets for terminal statuses.
const (
	TargetSuccess = "/payment/payment-success"
	TargetFailure = "/payment/payment-failure"
)

type EventKind string

const (
	EventRecord   EventKind = "record"
	EventTick     EventKind = "tick"
	EventAlert    EventKind = "alert"
	EventNavigate EventKind = "navigate"
)

// Event is what a detail view receives over the session stream.
type Event struct {
	Kind      EventKind              `json:"kind"`
	Target    string                 `json:"target,omitempty"`
	Alert     *models.Alert          `json:"alert,omitempty"`
	Remaining int                    `json:"remaining,omitempty"`
	Display   string                 `json:"display,omitempty"`
	Record    *models.CombinedRecord `json:"record,omitempty"`
}

// DetailFetcher is the slice of the payments gateway the session needs.
type DetailFetcher interface {
	OrderInfo(ctx context.Context, identifier string) (models.OrderDetail, error)
}

// Feed is the live status subscription. Frames stop after Close.
type Feed interface {
	Frames() <-chan feed.Frame
	Close()
}

type Config struct {
	Identifier string
	Orders     store.OrderRepository
	Deadlines  store.DeadlineStore
	Details    DetailFetcher
	Feed       Feed // nil when the feed could not be opened
	Countdown  time.Duration
	Location   *time.Location
	Now        func() time.Time
}

// Session drives one payment detail view: it reconciles the local record with
// the server detail, runs the countdown against a persisted deadline, and
// applies live feed frames through the status state machine. All state
// mutation happens on the session goroutine.
type Session struct {
	cfg      Config
	deadline time.Time

	mu        sync.RWMutex
	record    *models.CombinedRecord
	remaining int
	subs      map[chan Event]struct{}
	closed    bool

	fetched  chan fetchResult
	done     chan struct{}
	stopOnce sync.Once
}

type fetchResult struct {
	detail models.OrderDetail
	local  models.OrderRecord
	err    error
}

func New(cfg Config) *Session {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Session{
		cfg:     cfg,
		subs:    make(map[chan Event]struct{}),
		fetched: make(chan fetchResult, 1),
		done:    make(chan struct{}),
	}
}

// Start resolves the persisted deadline, kicks off the detail fetch and runs
// the event loop until Stop or a terminal status.
func (s *Session) Start(ctx context.Context) {
	s.deadline = s.resolveDeadline(ctx)
	s.mu.Lock()
	s.remaining = s.timeLeft(s.cfg.Now())
	s.mu.Unlock()

	metrics.ActiveSessions.Inc()
	go s.fetch(ctx)
	go s.run(ctx)
}

// Stop tears the session down: the feed closes, the ticker stops, and no
// events are delivered afterwards. Safe to call more than once.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.cfg.Feed != nil {
			s.cfg.Feed.Close()
		}
		metrics.ActiveSessions.Dec()
	})
}

// Done closes when the session has been stopped.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Subscribe attaches an event channel. The returned cancel detaches it; the
// channel also closes when the session ends.
func (s *Session) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Snapshot returns the current combined record (nil while still loading) and
// the seconds remaining on the countdown.
func (s *Session) Snapshot() (*models.CombinedRecord, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.record == nil {
		return nil, s.remaining
	}
	rec := *s.record
	return &rec, s.remaining
}

func (s *Session) resolveDeadline(ctx context.Context) time.Time {
	now := s.cfg.Now()
	if s.cfg.Deadlines != nil {
		deadline, found, err := s.cfg.Deadlines.Get(ctx, s.cfg.Identifier)
		if err != nil {
			logger.Log.Warn("deadline load failed",
				zap.String("order", s.cfg.Identifier),
				zap.Error(err))
		} else if found {
			return deadline
		}
	}

	deadline := now.Add(s.cfg.Countdown)
	if s.cfg.Deadlines != nil {
		if err := s.cfg.Deadlines.Put(ctx, s.cfg.Identifier, deadline); err != nil {
			logger.Log.Warn("deadline persist failed",
				zap.String("order", s.cfg.Identifier),
				zap.Error(err))
		}
	}
	return deadline
}

func (s *Session) fetch(ctx context.Context) {
	local := models.OrderRecord{}
	if s.cfg.Orders != nil {
		record, found, err := s.cfg.Orders.Load(ctx, s.cfg.Identifier)
		if err != nil {
			logger.Log.Warn("order record load failed",
				zap.String("order", s.cfg.Identifier),
				zap.Error(err))
		} else if found {
			local = record
		}
	}

	detail, err := s.cfg.Details.OrderInfo(ctx, s.cfg.Identifier)
	select {
	case s.fetched <- fetchResult{detail: detail, local: local, err: err}:
	case <-s.done:
		// A slow response after teardown is dropped.
	}
}

func (s *Session) run(ctx context.Context) {
	defer s.closeSubs()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	tick := ticker.C

	var frames <-chan feed.Frame
	if s.cfg.Feed != nil {
		frames = s.cfg.Feed.Frames()
	}

	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			s.Stop()
			return
		case res := <-s.fetched:
			if res.err != nil {
				// The view stays loading; no retry.
				logger.Log.Error("order detail fetch failed",
					zap.String("order", s.cfg.Identifier),
					zap.Error(res.err))
				continue
			}
			rec := models.BuildCombined(res.local, res.detail, s.cfg.Location)
			s.mu.Lock()
			s.record = &rec
			s.mu.Unlock()
			s.publish(Event{Kind: EventRecord, Record: &rec})
		case frame, open := <-frames:
			if !open {
				metrics.FeedErrorsTotal.Inc()
				frames = nil
				continue
			}
			select {
			case <-s.done:
				return
			default:
			}
			if terminal := s.apply(frame); terminal {
				s.Stop()
				return
			}
		case <-tick:
			remaining := s.timeLeft(s.cfg.Now())
			s.mu.Lock()
			s.remaining = remaining
			s.mu.Unlock()
			s.publish(Event{Kind: EventTick, Remaining: remaining, Display: FormatRemaining(remaining)})
			if remaining == 0 {
				// Expiry itself is only signaled by the feed; the ticker
				// just stops counting.
				ticker.Stop()
				tick = nil
			}
		}
	}
}

// apply merges one feed frame and evaluates the status transition. Returns
// true when the status is terminal and the session should end.
func (s *Session) apply(frame feed.Frame) bool {
	s.mu.Lock()
	if s.record == nil {
		s.record = &models.CombinedRecord{}
	}
	models.ApplyUpdate(s.record, frame.Fields, s.cfg.Location)
	rec := *s.record
	s.mu.Unlock()

	s.publish(Event{Kind: EventRecord, Record: &rec})

	if frame.Status == "" {
		return false
	}
	if !frame.Status.Known() {
		metrics.UnknownStatusTotal.Inc()
		logger.Log.Info("unknown payment status ignored",
			zap.String("order", s.cfg.Identifier),
			zap.String("status", string(frame.Status)))
		return false
	}

	metrics.StatusTransitionsTotal.WithLabelValues(string(frame.Status)).Inc()
	switch frame.Status.Outcome() {
	case models.OutcomeSuccess:
		s.publish(Event{Kind: EventNavigate, Target: TargetSuccess})
		return true
	case models.OutcomeFailure:
		s.publish(Event{Kind: EventNavigate, Target: TargetFailure})
		return true
	case models.OutcomeAlert:
		if alert, ok := frame.Status.Alert(); ok {
			s.publish(Event{Kind: EventAlert, Alert: &alert})
		}
	}
	return false
}

func (s *Session) timeLeft(now time.Time) int {
	left := int(s.deadline.Sub(now) / time.Second)
	if left < 0 {
		return 0
	}
	return left
}

func (s *Session) publish(ev Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.subs {
		select {
		case ch <- ev:
		default:
			// Slow subscriber drops events rather than blocking the loop.
		}
	}
}

func (s *Session) closeSubs() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for ch := range s.subs {
		close(ch)
	}
	s.subs = nil
}

// FormatRemaining renders seconds as mm:ss.
func FormatRemaining(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
