package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"userlens-be/internal/entity"
	"userlens-be/internal/poller"
	"userlens-be/internal/repository/contract"
	"userlens-be/internal/repository/specification"
	"userlens-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// In-memory repository fakes. Specifications are interpreted by type so the
// fakes answer the same queries the gorm implementations do.

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type fakeFactory struct {
	uow *fakeUow
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type fakeUow struct {
	projects    *fakeProjectRepo
	transcripts *fakeTranscriptRepo
	texts       *fakeTextRepo
	questions   *fakeQuestionRepo
	responses   *fakeResponseRepo
	botSessions *fakeBotSessionRepo
}

func newFakeUow() *fakeUow {
	return &fakeUow{
		projects:    &fakeProjectRepo{rows: map[uuid.UUID]*entity.Project{}},
		transcripts: &fakeTranscriptRepo{rows: map[uuid.UUID]*entity.Transcript{}},
		texts:       &fakeTextRepo{rows: map[uuid.UUID]*entity.TranscriptText{}},
		questions:   &fakeQuestionRepo{},
		responses:   &fakeResponseRepo{},
		botSessions: &fakeBotSessionRepo{rows: map[uuid.UUID]*entity.BotSession{}},
	}
}

func (u *fakeUow) Begin(ctx context.Context) error { return nil }
func (u *fakeUow) Commit() error                   { return nil }
func (u *fakeUow) Rollback() error                 { return nil }

func (u *fakeUow) UserRepository() contract.UserRepository             { return nil }
func (u *fakeUow) ProjectRepository() contract.ProjectRepository       { return u.projects }
func (u *fakeUow) TranscriptRepository() contract.TranscriptRepository { return u.transcripts }

func (u *fakeUow) TranscriptTextRepository() contract.TranscriptTextRepository {
	return u.texts
}

func (u *fakeUow) QuestionRepository() contract.QuestionRepository       { return u.questions }
func (u *fakeUow) ResponseRepository() contract.ResponseRepository       { return u.responses }
func (u *fakeUow) ChatSessionRepository() contract.ChatSessionRepository { return nil }
func (u *fakeUow) BotSessionRepository() contract.BotSessionRepository   { return u.botSessions }

func matchProject(p *entity.Project, specs []specification.Specification) bool {
	for _, s := range specs {
		switch sp := s.(type) {
		case specification.ByID:
			if p.Id != sp.ID {
				return false
			}
		case specification.UserOwnedBy:
			if p.UserId != sp.UserID {
				return false
			}
		}
	}
	return true
}

type fakeProjectRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*entity.Project
}

func (r *fakeProjectRepo) Create(ctx context.Context, p *entity.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[p.Id] = p
	return nil
}

func (r *fakeProjectRepo) Update(ctx context.Context, p *entity.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[p.Id] = p
	return nil
}

func (r *fakeProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *fakeProjectRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.rows {
		if matchProject(p, specs) {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakeProjectRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Project
	for _, p := range r.rows {
		if matchProject(p, specs) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProjectRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func (r *fakeProjectRepo) RecordQuestionGeneration(ctx context.Context, id uuid.UUID, at time.Time, transcriptCount int, archived []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok {
		return errors.New("project not found")
	}
	p.QuestionsCreatedAt = &at
	p.TranscriptCountWhenQuestions = transcriptCount
	p.PastQuestions = append(p.PastQuestions, archived...)
	return nil
}

func matchTranscript(t *entity.Transcript, specs []specification.Specification) bool {
	for _, s := range specs {
		switch sp := s.(type) {
		case specification.ByID:
			if t.Id != sp.ID {
				return false
			}
		case specification.ByProjectID:
			if t.ProjectId != sp.ProjectID {
				return false
			}
		case specification.ByUploadStatus:
			if string(t.UploadStatus) != sp.Status {
				return false
			}
		case specification.ByBotSessionID:
			if t.BotSessionId == nil || *t.BotSessionId != sp.BotSessionID {
				return false
			}
		}
	}
	return true
}

type fakeTranscriptRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*entity.Transcript

	statusLog []entity.UploadStatus
}

func (r *fakeTranscriptRepo) Create(ctx context.Context, t *entity.Transcript) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[t.Id] = t
	return nil
}

func (r *fakeTranscriptRepo) Update(ctx context.Context, t *entity.Transcript) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[t.Id] = t
	return nil
}

func (r *fakeTranscriptRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *fakeTranscriptRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Transcript, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.rows {
		if matchTranscript(t, specs) {
			return t, nil
		}
	}
	return nil, nil
}

func (r *fakeTranscriptRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Transcript, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Transcript
	for _, t := range r.rows {
		if matchTranscript(t, specs) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTranscriptRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func (r *fakeTranscriptRepo) SetUploadStatus(ctx context.Context, id uuid.UUID, status entity.UploadStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.rows[id]
	if !ok {
		return errors.New("transcript not found")
	}
	t.UploadStatus = status
	r.statusLog = append(r.statusLog, status)
	return nil
}

type fakeTextRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*entity.TranscriptText
}

func (r *fakeTextRepo) Create(ctx context.Context, t *entity.TranscriptText) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[t.Id] = t
	return nil
}

func (r *fakeTextRepo) Update(ctx context.Context, t *entity.TranscriptText) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[t.Id] = t
	return nil
}

func (r *fakeTextRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *fakeTextRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.TranscriptText, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.rows {
		match := true
		for _, s := range specs {
			if sp, ok := s.(specification.ByID); ok && t.Id != sp.ID {
				match = false
			}
		}
		if match {
			return t, nil
		}
	}
	return nil, nil
}

type fakeQuestionRepo struct {
	mu   sync.Mutex
	rows []*entity.Question
}

func (r *fakeQuestionRepo) matchRows(specs []specification.Specification) []*entity.Question {
	var out []*entity.Question
	for _, q := range r.rows {
		match := true
		for _, s := range specs {
			switch sp := s.(type) {
			case specification.ByID:
				if q.Id != sp.ID {
					match = false
				}
			case specification.ByProjectID:
				if q.ProjectId != sp.ProjectID {
					match = false
				}
			}
		}
		if match {
			out = append(out, q)
		}
	}
	return out
}

func (r *fakeQuestionRepo) Create(ctx context.Context, q *entity.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, q)
	return nil
}

func (r *fakeQuestionRepo) CreateBatch(ctx context.Context, qs []*entity.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, qs...)
	return nil
}

func (r *fakeQuestionRepo) Update(ctx context.Context, q *entity.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, row := range r.rows {
		if row.Id == q.Id {
			r.rows[i] = q
			return nil
		}
	}
	return errors.New("question not found")
}

func (r *fakeQuestionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, row := range r.rows {
		if row.Id == id {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeQuestionRepo) DeleteAllByProjectId(ctx context.Context, projectId uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*entity.Question
	for _, row := range r.rows {
		if row.ProjectId != projectId {
			kept = append(kept, row)
		}
	}
	r.rows = kept
	return nil
}

func (r *fakeQuestionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := r.matchRows(specs)
	if len(matched) == 0 {
		return nil, nil
	}
	return matched[0], nil
}

func (r *fakeQuestionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := r.matchRows(specs)
	sort.Slice(matched, func(i, j int) bool { return matched[i].Position < matched[j].Position })
	return matched, nil
}

func (r *fakeQuestionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.matchRows(specs))), nil
}

type fakeResponseRepo struct {
	mu         sync.Mutex
	deletedFor []uuid.UUID
}

func (r *fakeResponseRepo) Create(ctx context.Context, resp *entity.Response) error { return nil }

func (r *fakeResponseRepo) CreateBatch(ctx context.Context, resps []*entity.Response) error {
	return nil
}

func (r *fakeResponseRepo) DeleteAllByTranscriptId(ctx context.Context, transcriptId uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletedFor = append(r.deletedFor, transcriptId)
	return nil
}

func (r *fakeResponseRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Response, error) {
	return nil, nil
}

func (r *fakeResponseRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Response, error) {
	return nil, nil
}

type fakeBotSessionRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*entity.BotSession

	stopMessages []string
}

func matchBotSession(s *entity.BotSession, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByID:
			if s.Id != sp.ID {
				return false
			}
		case specification.ByWebhookIDFragment:
			if !strings.HasSuffix(s.WebhookURL, "/"+sp.WebhookID) {
				return false
			}
		case specification.CurrentlyPolling:
			if !s.IsPolling {
				return false
			}
		}
	}
	return true
}

func (r *fakeBotSessionRepo) Create(ctx context.Context, s *entity.BotSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[s.Id] = s
	return nil
}

func (r *fakeBotSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.BotSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.rows {
		if matchBotSession(s, specs) {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeBotSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.BotSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.BotSession
	for _, s := range r.rows {
		if matchBotSession(s, specs) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeBotSessionRepo) get(id uuid.UUID) (*entity.BotSession, error) {
	s, ok := r.rows[id]
	if !ok {
		return nil, errors.New("bot session not found")
	}
	return s, nil
}

func (r *fakeBotSessionRepo) SetBotId(ctx context.Context, id uuid.UUID, botId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.get(id)
	if err != nil {
		return err
	}
	s.BotId = &botId
	return nil
}

func (r *fakeBotSessionRepo) SetStatus(ctx context.Context, id uuid.UUID, code entity.BotStatusCode, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.get(id)
	if err != nil {
		return err
	}
	s.StatusCode = code
	s.StatusCreatedAt = &at
	return nil
}

func (r *fakeBotSessionRepo) AppendEventLog(ctx context.Context, id uuid.UUID, entry entity.EventLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.get(id)
	if err != nil {
		return err
	}
	s.EventLogs = append(s.EventLogs, entry)
	return nil
}

func (r *fakeBotSessionRepo) SetRecordingURL(ctx context.Context, id uuid.UUID, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.get(id)
	if err != nil {
		return err
	}
	s.RecordingURL = &url
	return nil
}

func (r *fakeBotSessionRepo) SetTranscriptTextId(ctx context.Context, id uuid.UUID, textId uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.get(id)
	if err != nil {
		return err
	}
	s.TranscriptTextId = &textId
	return nil
}

func (r *fakeBotSessionRepo) SetPolling(ctx context.Context, id uuid.UUID, polling bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.get(id)
	if err != nil {
		return err
	}
	s.IsPolling = polling
	return nil
}

func (r *fakeBotSessionRepo) State(ctx context.Context, id uuid.UUID) (*poller.SessionState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.get(id)
	if err != nil {
		return nil, err
	}
	return &poller.SessionState{
		IsPolling:  s.IsPolling,
		ErrorCount: s.ErrorCount,
		StartedAt:  s.CreatedAt,
	}, nil
}

func (r *fakeBotSessionRepo) MarkPollAttempt(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.get(id)
	if err != nil {
		return err
	}
	s.LastPollTime = &at
	return nil
}

func (r *fakeBotSessionRepo) AppendPollingLog(ctx context.Context, id uuid.UUID, logType, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.get(id)
	if err != nil {
		return err
	}
	s.PollingLogs = append(s.PollingLogs, entity.PollingLogEntry{Type: logType, Message: message, Timestamp: time.Now()})
	return nil
}

func (r *fakeBotSessionRepo) IncrementErrorCount(ctx context.Context, id uuid.UUID, message string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.get(id)
	if err != nil {
		return 0, err
	}
	s.ErrorCount++
	return s.ErrorCount, nil
}

func (r *fakeBotSessionRepo) ResetErrorCount(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.get(id)
	if err != nil {
		return err
	}
	s.ErrorCount = 0
	return nil
}

func (r *fakeBotSessionRepo) StopWithLog(ctx context.Context, id uuid.UUID, logType, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.get(id)
	if err != nil {
		return err
	}
	s.IsPolling = false
	s.PollingLogs = append(s.PollingLogs, entity.PollingLogEntry{Type: logType, Message: message, Timestamp: time.Now()})
	return nil
}

func (r *fakeBotSessionRepo) StopWithError(ctx context.Context, id uuid.UUID, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.get(id)
	if err != nil {
		return err
	}
	s.IsPolling = false
	s.StatusCode = entity.BotStatusError
	s.EventLogs = append(s.EventLogs, entity.EventLogEntry{Type: entity.EventLogError, Message: message, Timestamp: time.Now()})
	r.stopMessages = append(r.stopMessages, message)
	return nil
}

// fakePublisher records enqueued payloads instead of pushing them onto the
// watermill channel.
type fakePublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *fakePublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return nil
}

type fakeObjectStorage struct {
	mu       sync.Mutex
	putCalls int
	deleted  []string
	failPut  bool
}

func (s *fakeObjectStorage) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPut {
		return "", errors.New("bucket unavailable")
	}
	s.putCalls++
	return "https://bucket.test/" + key, nil
}

func (s *fakeObjectStorage) PutRemote(ctx context.Context, sourceURL, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPut {
		return "", errors.New("bucket unavailable")
	}
	s.putCalls++
	return "https://bucket.test/" + key, nil
}

func (s *fakeObjectStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeObjectStorage) SignedDownloadURL(ctx context.Context, key string) (string, error) {
	return "https://signed.test/" + key, nil
}
