package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type logEntry struct {
	Type    string
	Message string
}

// fakeStore is an in-memory SessionStore with the same observable behavior
// as the database-backed one.
type fakeStore struct {
	mu sync.Mutex

	isPolling  bool
	errorCount int
	startedAt  time.Time

	lastPollTime *time.Time
	pollingLogs  []logEntry

	stoppedWithError bool
	stopMessage      string
	resetCalls       int

	stateErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{isPolling: true, startedAt: time.Now()}
}

func (s *fakeStore) State(ctx context.Context, id uuid.UUID) (*SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stateErr != nil {
		return nil, s.stateErr
	}
	return &SessionState{
		IsPolling:  s.isPolling,
		ErrorCount: s.errorCount,
		StartedAt:  s.startedAt,
	}, nil
}

func (s *fakeStore) MarkPollAttempt(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPollTime = &at
	s.pollingLogs = append(s.pollingLogs, logEntry{Type: "poll_attempt", Message: "polling attempt"})
	return nil
}

func (s *fakeStore) AppendPollingLog(ctx context.Context, id uuid.UUID, logType, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pollingLogs = append(s.pollingLogs, logEntry{Type: logType, Message: message})
	return nil
}

func (s *fakeStore) IncrementErrorCount(ctx context.Context, id uuid.UUID, message string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errorCount++
	s.pollingLogs = append(s.pollingLogs, logEntry{Type: "poll_error", Message: message})
	return s.errorCount, nil
}

func (s *fakeStore) ResetErrorCount(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errorCount = 0
	s.resetCalls++
	return nil
}

func (s *fakeStore) StopWithLog(ctx context.Context, id uuid.UUID, logType, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isPolling = false
	s.pollingLogs = append(s.pollingLogs, logEntry{Type: logType, Message: message})
	return nil
}

func (s *fakeStore) StopWithError(ctx context.Context, id uuid.UUID, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isPolling = false
	s.stoppedWithError = true
	s.stopMessage = message
	return nil
}

func (s *fakeStore) snapshot() (bool, int, []logEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	logs := make([]logEntry, len(s.pollingLogs))
	copy(logs, s.pollingLogs)
	return s.isPolling, s.errorCount, logs, s.stoppedWithError
}

func (s *fakeStore) logCount(logType string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, l := range s.pollingLogs {
		if l.Type == logType {
			n++
		}
	}
	return n
}

// fakeWebhook replays a scripted sequence of results; the last step repeats
// once the script is exhausted.
type fakeWebhook struct {
	mu     sync.Mutex
	script []func() (*WebhookResult, error)
	calls  int
}

func (w *fakeWebhook) Poll(ctx context.Context, url string) (*WebhookResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	idx := w.calls
	if idx >= len(w.script) {
		idx = len(w.script) - 1
	}
	w.calls++
	return w.script[idx]()
}

func (w *fakeWebhook) callCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.calls
}

func pending() (*WebhookResult, error) { return &WebhookResult{Event: "bot.status_change"}, nil }
func complete() (*WebhookResult, error) {
	return &WebhookResult{Event: "complete"}, nil
}
func failing() (*WebhookResult, error) { return nil, errors.New("status 500") }

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func testPolicy() Policy {
	return Policy{
		Interval:      5 * time.Millisecond,
		MaxPollTime:   time.Minute,
		MaxErrorCount: 3,
	}
}

func TestPollingStopsOnComplete(t *testing.T) {
	store := newFakeStore()
	webhook := &fakeWebhook{script: []func() (*WebhookResult, error){pending, pending, complete}}
	p := NewPoller(testPolicy(), store, webhook, nopLogger{})

	id := uuid.New()
	require.NoError(t, p.StartPolling(Session{Id: id, WebhookURL: "http://localhost/api/bot/webhook/abc"}))

	require.Eventually(t, func() bool {
		polling, _, _, _ := store.snapshot()
		return !polling
	}, time.Second, time.Millisecond)

	// The goroutine must deregister itself once the session completes.
	require.Eventually(t, func() bool { return !p.IsActive(id) }, time.Second, time.Millisecond)

	callsAtStop := webhook.callCount()
	time.Sleep(5 * testPolicy().Interval)
	assert.Equal(t, callsAtStop, webhook.callCount(), "no polls after completion")

	assert.Equal(t, 1, store.logCount("poll_complete"))
	assert.Equal(t, 3, store.logCount("poll_attempt"))
	_, _, _, stoppedWithError := store.snapshot()
	assert.False(t, stoppedWithError)
}

func TestErrorThresholdStopsPolling(t *testing.T) {
	store := newFakeStore()
	webhook := &fakeWebhook{script: []func() (*WebhookResult, error){failing}}
	p := NewPoller(testPolicy(), store, webhook, nopLogger{})

	id := uuid.New()
	require.NoError(t, p.StartPolling(Session{Id: id, WebhookURL: "http://localhost/api/bot/webhook/abc"}))

	require.Eventually(t, func() bool {
		_, _, _, stopped := store.snapshot()
		return stopped
	}, time.Second, time.Millisecond)

	require.Eventually(t, func() bool { return !p.IsActive(id) }, time.Second, time.Millisecond)

	_, errorCount, _, _ := store.snapshot()
	assert.Equal(t, 3, errorCount)
	assert.Equal(t, "error threshold reached", store.stopMsg())

	// Ticks 1 and 2 fail, retry, and fail again. Tick 3 hits the threshold
	// right after the increment, so no retry log is written for it.
	assert.Equal(t, 3, store.logCount("poll_attempt"))
	assert.Equal(t, 2, store.logCount("poll_retry"))
	assert.Equal(t, 5, store.logCount("poll_error"))
}

func TestExternalStopEndsLoopSilently(t *testing.T) {
	store := newFakeStore()
	webhook := &fakeWebhook{script: []func() (*WebhookResult, error){pending}}
	p := NewPoller(testPolicy(), store, webhook, nopLogger{})

	id := uuid.New()
	require.NoError(t, p.StartPolling(Session{Id: id, WebhookURL: "http://localhost/api/bot/webhook/abc"}))

	require.Eventually(t, func() bool { return webhook.callCount() >= 1 }, time.Second, time.Millisecond)

	// The webhook handler cleared the flag out of band.
	store.mu.Lock()
	store.isPolling = false
	store.mu.Unlock()

	require.Eventually(t, func() bool { return !p.IsActive(id) }, time.Second, time.Millisecond)

	logsBefore := store.logCount("poll_attempt")
	time.Sleep(5 * testPolicy().Interval)
	assert.Equal(t, logsBefore, store.logCount("poll_attempt"))
	assert.Equal(t, 0, store.logCount("poll_complete"))
}

func TestFirstAttemptSuccessResetsErrorCount(t *testing.T) {
	store := newFakeStore()
	// Tick 1 fails twice (attempt + retry), tick 2 succeeds outright.
	webhook := &fakeWebhook{script: []func() (*WebhookResult, error){failing, failing, pending}}
	p := NewPoller(testPolicy(), store, webhook, nopLogger{})

	id := uuid.New()
	require.NoError(t, p.StartPolling(Session{Id: id, WebhookURL: "http://localhost/api/bot/webhook/abc"}))

	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return store.resetCalls >= 1
	}, time.Second, time.Millisecond)

	_, errorCount, _, stopped := store.snapshot()
	assert.Equal(t, 0, errorCount)
	assert.False(t, stopped)

	p.StopPolling(id)
}

func TestRetrySuccessDoesNotResetErrorCount(t *testing.T) {
	store := newFakeStore()
	// Tick 1: attempt fails, retry succeeds. The counter keeps the failure.
	webhook := &fakeWebhook{script: []func() (*WebhookResult, error){failing, pending}}
	p := NewPoller(testPolicy(), store, webhook, nopLogger{})

	id := uuid.New()
	require.NoError(t, p.StartPolling(Session{Id: id, WebhookURL: "http://localhost/api/bot/webhook/abc"}))

	require.Eventually(t, func() bool { return webhook.callCount() >= 2 }, time.Second, time.Millisecond)

	store.mu.Lock()
	errorCount, resets := store.errorCount, store.resetCalls
	store.mu.Unlock()
	assert.Equal(t, 1, errorCount)
	assert.Equal(t, 0, resets)

	p.StopPolling(id)
}

func TestRetryCompleteIsObservedOnNextTick(t *testing.T) {
	store := newFakeStore()
	// Tick 1: attempt fails, retry reports completion. The retry body is
	// ignored, so the stop happens on tick 2's first attempt.
	webhook := &fakeWebhook{script: []func() (*WebhookResult, error){failing, complete}}
	p := NewPoller(testPolicy(), store, webhook, nopLogger{})

	id := uuid.New()
	require.NoError(t, p.StartPolling(Session{Id: id, WebhookURL: "http://localhost/api/bot/webhook/abc"}))

	require.Eventually(t, func() bool {
		polling, _, _, _ := store.snapshot()
		return !polling
	}, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return !p.IsActive(id) }, time.Second, time.Millisecond)

	assert.Equal(t, 3, webhook.callCount(), "failed attempt, retry, then next tick's attempt")
	assert.Equal(t, 2, store.logCount("poll_attempt"))
	assert.Equal(t, 1, store.logCount("poll_retry"))
	assert.Equal(t, 1, store.logCount("poll_complete"))

	_, errorCount, _, stoppedWithError := store.snapshot()
	assert.Equal(t, 1, errorCount, "retry success never resets the counter")
	assert.False(t, stoppedWithError)
}

func TestDuplicateStartIsRejected(t *testing.T) {
	store := newFakeStore()
	webhook := &fakeWebhook{script: []func() (*WebhookResult, error){pending}}
	p := NewPoller(testPolicy(), store, webhook, nopLogger{})

	session := Session{Id: uuid.New(), WebhookURL: "http://localhost/api/bot/webhook/abc"}
	require.NoError(t, p.StartPolling(session))

	err := p.StartPolling(session)
	assert.ErrorIs(t, err, ErrAlreadyPolling)
	assert.Equal(t, 1, p.ActiveCount())

	p.StopPolling(session.Id)
	require.Eventually(t, func() bool { return p.ActiveCount() == 0 }, time.Second, time.Millisecond)

	// A fresh start is allowed once the first goroutine is gone.
	assert.NoError(t, p.StartPolling(session))
	p.StopPolling(session.Id)
}

func TestMaxPollTimeStopsWithoutErrorStatus(t *testing.T) {
	store := newFakeStore()
	store.startedAt = time.Now().Add(-2 * time.Minute)
	webhook := &fakeWebhook{script: []func() (*WebhookResult, error){pending}}
	p := NewPoller(testPolicy(), store, webhook, nopLogger{})

	id := uuid.New()
	require.NoError(t, p.StartPolling(Session{Id: id, WebhookURL: "http://localhost/api/bot/webhook/abc"}))

	require.Eventually(t, func() bool {
		polling, _, _, _ := store.snapshot()
		return !polling
	}, time.Second, time.Millisecond)

	_, _, logs, stoppedWithError := store.snapshot()
	assert.False(t, stoppedWithError, "timeout is not an error stop")
	assert.Equal(t, 0, webhook.callCount(), "timed-out session is never polled")
	require.Len(t, logs, 1)
	assert.Equal(t, "poll_complete", logs[0].Type)
	assert.Contains(t, logs[0].Message, "max poll time")
}

func TestStateErrorKeepsLoopAlive(t *testing.T) {
	store := newFakeStore()
	store.stateErr = errors.New("connection refused")
	webhook := &fakeWebhook{script: []func() (*WebhookResult, error){pending}}
	p := NewPoller(testPolicy(), store, webhook, nopLogger{})

	id := uuid.New()
	require.NoError(t, p.StartPolling(Session{Id: id, WebhookURL: "http://localhost/api/bot/webhook/abc"}))

	time.Sleep(5 * testPolicy().Interval)
	assert.True(t, p.IsActive(id), "transient store failures must not kill the loop")
	assert.Equal(t, 0, webhook.callCount())

	// Once the store recovers the loop polls again.
	store.mu.Lock()
	store.stateErr = nil
	store.mu.Unlock()

	require.Eventually(t, func() bool { return webhook.callCount() >= 1 }, time.Second, time.Millisecond)
	p.StopPolling(id)
}

func (s *fakeStore) stopMsg() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopMessage
}
