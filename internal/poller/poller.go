// FILE: internal/poller/poller.go
package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"userlens-be/internal/pkg/logger"

	"github.com/google/uuid"
)

var ErrAlreadyPolling = errors.New("session is already being polled")

// Policy holds the tunable limits of the polling loop. Production values
// come from configuration; tests shrink them to milliseconds.
type Policy struct {
	Interval      time.Duration
	MaxPollTime   time.Duration
	MaxErrorCount int
}

func DefaultPolicy() Policy {
	return Policy{
		Interval:      30 * time.Second,
		MaxPollTime:   24 * time.Hour,
		MaxErrorCount: 50,
	}
}

// Session identifies one meeting-bot session to poll.
type Session struct {
	Id         uuid.UUID
	WebhookURL string
}

// SessionState is the persisted slice of a session the tick decisions
// depend on.
type SessionState struct {
	IsPolling  bool
	ErrorCount int
	StartedAt  time.Time
}

// SessionStore persists poll bookkeeping. Every method must be a single
// atomic update on the session row so concurrent writers cannot lose
// log entries or counter increments.
type SessionStore interface {
	State(ctx context.Context, id uuid.UUID) (*SessionState, error)
	MarkPollAttempt(ctx context.Context, id uuid.UUID, at time.Time) error
	AppendPollingLog(ctx context.Context, id uuid.UUID, logType, message string) error
	IncrementErrorCount(ctx context.Context, id uuid.UUID, message string) (int, error)
	ResetErrorCount(ctx context.Context, id uuid.UUID) error
	StopWithLog(ctx context.Context, id uuid.UUID, logType, message string) error
	StopWithError(ctx context.Context, id uuid.UUID, message string) error
}

type WebhookResult struct {
	Event string `json:"event"`
}

// WebhookCaller performs one poll round-trip against a session's webhook URL.
type WebhookCaller interface {
	Poll(ctx context.Context, url string) (*WebhookResult, error)
}

const (
	logTypeError    = "poll_error"
	logTypeRetry    = "poll_retry"
	logTypeComplete = "poll_complete"

	eventComplete = "complete"
)

// Poller runs one background goroutine per active session, each waking on
// its own ticker. StartPolling rejects a session that already has a live
// goroutine; the persisted is_polling flag is the source of truth across
// restarts.
type Poller struct {
	policy  Policy
	store   SessionStore
	webhook WebhookCaller
	log     logger.ILogger

	mu     sync.Mutex
	active map[uuid.UUID]context.CancelFunc
}

func NewPoller(policy Policy, store SessionStore, webhook WebhookCaller, log logger.ILogger) *Poller {
	return &Poller{
		policy:  policy,
		store:   store,
		webhook: webhook,
		log:     log,
		active:  make(map[uuid.UUID]context.CancelFunc),
	}
}

func (p *Poller) StartPolling(session Session) error {
	p.mu.Lock()
	if _, ok := p.active[session.Id]; ok {
		p.mu.Unlock()
		return ErrAlreadyPolling
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.active[session.Id] = cancel
	p.mu.Unlock()

	p.log.Info("poller", "polling started", map[string]interface{}{
		"session_id": session.Id.String(),
		"interval":   p.policy.Interval.String(),
	})

	go p.run(ctx, session)
	return nil
}

// StopPolling cancels the session's goroutine if one is running. It does
// not touch persisted state; callers clear the is_polling flag themselves.
func (p *Poller) StopPolling(id uuid.UUID) {
	p.mu.Lock()
	cancel, ok := p.active[id]
	p.mu.Unlock()
	if ok {
		cancel()
	}
}

func (p *Poller) IsActive(id uuid.UUID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.active[id]
	return ok
}

func (p *Poller) ActiveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.active)
}

// Shutdown cancels every active session goroutine.
func (p *Poller) Shutdown() {
	p.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(p.active))
	for _, cancel := range p.active {
		cancels = append(cancels, cancel)
	}
	p.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

func (p *Poller) run(ctx context.Context, session Session) {
	defer func() {
		p.mu.Lock()
		delete(p.active, session.Id)
		p.mu.Unlock()
	}()

	ticker := time.NewTicker(p.policy.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if stop := p.tick(ctx, session); stop {
				return
			}
		}
	}
}

// tick runs one poll attempt. It returns true when the loop must end.
func (p *Poller) tick(ctx context.Context, session Session) bool {
	state, err := p.store.State(ctx, session.Id)
	if err != nil {
		p.log.Error("poller", "failed to load session state", map[string]interface{}{
			"session_id": session.Id.String(),
			"error":      err.Error(),
		})
		return false
	}
	if state == nil || !state.IsPolling {
		// Stopped externally, e.g. by the webhook handler. End silently.
		return true
	}

	if state.ErrorCount >= p.policy.MaxErrorCount {
		p.stopWithError(ctx, session.Id, "error threshold reached")
		return true
	}

	// Age is measured from session creation so a restart cannot extend
	// the window.
	if time.Since(state.StartedAt) > p.policy.MaxPollTime {
		p.stopWithLog(ctx, session.Id, logTypeComplete, "max poll time exceeded, polling stopped")
		return true
	}

	if err := p.store.MarkPollAttempt(ctx, session.Id, time.Now()); err != nil {
		p.log.Error("poller", "failed to record poll attempt", map[string]interface{}{
			"session_id": session.Id.String(),
			"error":      err.Error(),
		})
	}

	result, err := p.webhook.Poll(ctx, session.WebhookURL)
	if err != nil {
		return p.handlePollError(ctx, session, err)
	}

	if result.Event == eventComplete {
		p.stopWithLog(ctx, session.Id, logTypeComplete, "meeting completed")
		return true
	}

	if err := p.store.ResetErrorCount(ctx, session.Id); err != nil {
		p.log.Error("poller", "failed to reset error count", map[string]interface{}{
			"session_id": session.Id.String(),
			"error":      err.Error(),
		})
	}
	return false
}

// handlePollError counts the failure, stops at the threshold, and otherwise
// retries once within the same tick. A retry success is not a full success:
// the error counter stays as is until a first-attempt success resets it, and
// the retry body is ignored even when it carries a terminal event. The next
// tick's first attempt observes completion.
func (p *Poller) handlePollError(ctx context.Context, session Session, pollErr error) bool {
	count, err := p.store.IncrementErrorCount(ctx, session.Id, pollErr.Error())
	if err != nil {
		p.log.Error("poller", "failed to increment error count", map[string]interface{}{
			"session_id": session.Id.String(),
			"error":      err.Error(),
		})
		return false
	}

	if count >= p.policy.MaxErrorCount {
		p.stopWithError(ctx, session.Id, "error threshold reached")
		return true
	}

	if err := p.store.AppendPollingLog(ctx, session.Id, logTypeRetry, "retrying after failed poll"); err != nil {
		p.log.Error("poller", "failed to append retry log", map[string]interface{}{
			"session_id": session.Id.String(),
			"error":      err.Error(),
		})
	}

	if _, retryErr := p.webhook.Poll(ctx, session.WebhookURL); retryErr != nil {
		if err := p.store.AppendPollingLog(ctx, session.Id, logTypeError, retryErr.Error()); err != nil {
			p.log.Error("poller", "failed to append error log", map[string]interface{}{
				"session_id": session.Id.String(),
				"error":      err.Error(),
			})
		}
	}
	return false
}

func (p *Poller) stopWithLog(ctx context.Context, id uuid.UUID, logType, message string) {
	if err := p.store.StopWithLog(ctx, id, logType, message); err != nil {
		p.log.Error("poller", "failed to stop session", map[string]interface{}{
			"session_id": id.String(),
			"error":      err.Error(),
		})
		return
	}
	p.log.Info("poller", "polling stopped", map[string]interface{}{
		"session_id": id.String(),
		"reason":     message,
	})
}

func (p *Poller) stopWithError(ctx context.Context, id uuid.UUID, message string) {
	if err := p.store.StopWithError(ctx, id, message); err != nil {
		p.log.Error("poller", "failed to stop session with error", map[string]interface{}{
			"session_id": id.String(),
			"error":      err.Error(),
		})
		return
	}
	p.log.Warn("poller", "polling stopped with error", map[string]interface{}{
		"session_id": id.String(),
		"reason":     message,
	})
}
