package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"userlens-be/internal/dto"
	"userlens-be/internal/entity"
	"userlens-be/internal/pkg/serverutils"
	"userlens-be/pkg/transcription"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUploadFixture(processingBase string) (ITranscriptService, *fakeUow, *fakeObjectStorage) {
	uow := newFakeUow()
	objects := &fakeObjectStorage{}
	svc := NewTranscriptService(
		&fakeFactory{uow: uow},
		objects,
		transcription.NewClient(processingBase),
		nil,
		nopLogger{},
		"aws",
		"en-US",
	)
	return svc, uow, objects
}

func seedProject(uow *fakeUow, userId uuid.UUID) *entity.Project {
	project := &entity.Project{
		Id:          uuid.New(),
		UserId:      userId,
		ProjectName: "Onboarding research",
		CreatedAt:   time.Now(),
	}
	uow.projects.rows[project.Id] = project
	return project
}

func TestUploadRejectsUnknownProject(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	svc, _, objects := newUploadFixture(srv.URL)

	req := &dto.UploadTranscriptRequest{
		ProjectId:      uuid.New(),
		TranscriptName: "Interview 1",
	}
	res, err := svc.Upload(context.Background(), uuid.New(), req, "interview.txt", "text/plain", strings.NewReader("hello"))

	require.Error(t, err)
	assert.Nil(t, res)

	apiErr, ok := err.(*serverutils.ApiError)
	require.True(t, ok)
	assert.Equal(t, 404, apiErr.Code)
	assert.Equal(t, "project not found", apiErr.Message)

	// Nothing may be written before ownership is established.
	assert.Equal(t, 0, objects.putCalls)
	assert.Equal(t, 0, calls)
}

func TestUploadRejectsOtherUsersProject(t *testing.T) {
	svc, uow, objects := newUploadFixture("http://127.0.0.1:1")
	project := seedProject(uow, uuid.New())

	req := &dto.UploadTranscriptRequest{
		ProjectId:      project.Id,
		TranscriptName: "Interview 1",
	}
	_, err := svc.Upload(context.Background(), uuid.New(), req, "interview.txt", "text/plain", strings.NewReader("hello"))

	require.Error(t, err)
	assert.Equal(t, 0, objects.putCalls)
}

func TestUploadExtractionFailureMarksTranscript(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail": "unreadable file"}`))
	}))
	defer srv.Close()

	svc, uow, objects := newUploadFixture(srv.URL)
	userId := uuid.New()
	project := seedProject(uow, userId)

	req := &dto.UploadTranscriptRequest{
		ProjectId:      project.Id,
		TranscriptName: "Interview 1",
	}
	res, err := svc.Upload(context.Background(), userId, req, "interview.txt", "text/plain", strings.NewReader("hello"))

	// Extraction failure is not an upload failure: the row survives in a
	// retriable state and the caller gets the status, not an error.
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, string(entity.UploadStatusProcessingFailed), res.UploadStatus)
	assert.Equal(t, 1, objects.putCalls)

	stored := uow.transcripts.rows[res.Id]
	require.NotNil(t, stored)
	assert.Equal(t, entity.UploadStatusProcessingFailed, stored.UploadStatus)
	assert.Nil(t, stored.TextId)
}

func TestUploadStoresTextOnSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"transcript": "moderator: welcome"}`))
	}))
	defer srv.Close()

	svc, uow, _ := newUploadFixture(srv.URL)
	userId := uuid.New()
	project := seedProject(uow, userId)

	req := &dto.UploadTranscriptRequest{
		ProjectId:      project.Id,
		TranscriptName: "Interview 1",
	}
	res, err := svc.Upload(context.Background(), userId, req, "interview.txt", "text/plain", strings.NewReader("hello"))

	require.NoError(t, err)
	assert.Equal(t, string(entity.UploadStatusReadyToUse), res.UploadStatus)

	stored := uow.transcripts.rows[res.Id]
	require.NotNil(t, stored)
	require.NotNil(t, stored.TextId)
	assert.Equal(t, entity.OriginFileUpload, stored.Origin)

	text := uow.texts.rows[*stored.TextId]
	require.NotNil(t, text)
	assert.Equal(t, "moderator: welcome", text.Text)
}

func TestUploadRequiresFile(t *testing.T) {
	svc, _, objects := newUploadFixture("http://127.0.0.1:1")

	_, err := svc.Upload(context.Background(), uuid.New(), &dto.UploadTranscriptRequest{}, "", "", nil)

	require.Error(t, err)
	apiErr, ok := err.(*serverutils.ApiError)
	require.True(t, ok)
	assert.Equal(t, 400, apiErr.Code)
	assert.Equal(t, 0, objects.putCalls)
}

func TestDeleteRemovesStoredObjectAndResponses(t *testing.T) {
	svc, uow, objects := newUploadFixture("http://127.0.0.1:1")
	userId := uuid.New()
	project := seedProject(uow, userId)

	transcript := &entity.Transcript{
		Id:        uuid.New(),
		ProjectId: project.Id,
		S3Key:     "upload-data/users/x/y/transcripts/1-interview.txt",
	}
	uow.transcripts.rows[transcript.Id] = transcript

	err := svc.Delete(context.Background(), userId, transcript.Id)

	require.NoError(t, err)
	assert.Contains(t, objects.deleted, transcript.S3Key)
	assert.Contains(t, uow.responses.deletedFor, transcript.Id)
	assert.NotContains(t, uow.transcripts.rows, transcript.Id)
}

func TestDownloadURLRequiresStoredFile(t *testing.T) {
	svc, uow, _ := newUploadFixture("http://127.0.0.1:1")
	userId := uuid.New()
	project := seedProject(uow, userId)

	transcript := &entity.Transcript{
		Id:        uuid.New(),
		ProjectId: project.Id,
	}
	uow.transcripts.rows[transcript.Id] = transcript

	_, err := svc.DownloadURL(context.Background(), userId, transcript.Id)

	require.Error(t, err)
	apiErr, ok := err.(*serverutils.ApiError)
	require.True(t, ok)
	assert.Equal(t, 404, apiErr.Code)
}
