package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"userlens-be/internal/dto"
	"userlens-be/internal/entity"
	"userlens-be/pkg/transcription"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConsumerFixture(processingBase string) (*consumerService, *fakeUow, *fakeObjectStorage) {
	uow := newFakeUow()
	objects := &fakeObjectStorage{}
	svc := NewConsumerService(
		nil,
		"process-recording",
		&fakeFactory{uow: uow},
		objects,
		transcription.NewClient(processingBase),
		nil,
		nopLogger{},
		"aws",
		"en-US",
	).(*consumerService)
	return svc, uow, objects
}

func recordingJob(session *entity.BotSession, transcript *entity.Transcript) dto.ProcessRecordingMessage {
	return dto.ProcessRecordingMessage{SessionId: session.Id, TranscriptId: transcript.Id}
}

func TestProcessRecordingWithoutURLMarksUploadFailed(t *testing.T) {
	svc, uow, objects := newConsumerFixture("http://127.0.0.1:1")
	project := seedProject(uow, uuid.New())
	session, transcript := seedBotSession(uow, project.Id)
	session.RecordingURL = nil

	err := svc.processRecording(context.Background(), recordingJob(session, transcript))

	require.NoError(t, err)
	assert.Equal(t, entity.UploadStatusUploadFailed, transcript.UploadStatus)
	assert.Equal(t, 0, objects.putCalls)
}

func TestProcessRecordingUploadFailureMarksUploadFailed(t *testing.T) {
	svc, uow, objects := newConsumerFixture("http://127.0.0.1:1")
	objects.failPut = true
	project := seedProject(uow, uuid.New())
	session, transcript := seedBotSession(uow, project.Id)
	recording := "https://vendor.test/recordings/1.mp4"
	session.RecordingURL = &recording

	err := svc.processRecording(context.Background(), recordingJob(session, transcript))

	require.NoError(t, err)
	assert.Equal(t, entity.UploadStatusUploadFailed, transcript.UploadStatus)
	assert.Empty(t, transcript.S3Key)
}

func TestProcessRecordingTranscriptionFailureMarksProcessingFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"detail": "transcription engine unavailable"})
	}))
	defer srv.Close()

	svc, uow, objects := newConsumerFixture(srv.URL)
	project := seedProject(uow, uuid.New())
	session, transcript := seedBotSession(uow, project.Id)
	recording := "https://vendor.test/recordings/1.mp4"
	session.RecordingURL = &recording

	err := svc.processRecording(context.Background(), recordingJob(session, transcript))

	require.NoError(t, err)
	assert.Equal(t, 1, objects.putCalls)
	assert.NotEmpty(t, transcript.S3Key, "the recording is mirrored before transcription starts")
	assert.Equal(t, entity.UploadStatusProcessingFailed, transcript.UploadStatus)
	assert.Equal(t,
		[]entity.UploadStatus{entity.UploadStatusProcessing, entity.UploadStatusProcessingFailed},
		uow.transcripts.statusLog,
	)
	assert.Nil(t, transcript.TextId)
}

func TestProcessRecordingSuccessReachesReadyToUse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/process-bot-file/", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"transcript": "moderator: welcome",
			"questions":  []string{"What did you expect?", "What was confusing?"},
		})
	}))
	defer srv.Close()

	svc, uow, objects := newConsumerFixture(srv.URL)
	project := seedProject(uow, uuid.New())
	session, transcript := seedBotSession(uow, project.Id)
	recording := "https://vendor.test/recordings/1.mp4"
	session.RecordingURL = &recording
	seedQuestionSlots(uow, project.Id, "")

	err := svc.processRecording(context.Background(), recordingJob(session, transcript))

	require.NoError(t, err)
	assert.Equal(t, 1, objects.putCalls)
	assert.Equal(t, entity.UploadStatusReadyToUse, transcript.UploadStatus)
	assert.Equal(t,
		[]entity.UploadStatus{entity.UploadStatusProcessing, entity.UploadStatusReadyToUse},
		uow.transcripts.statusLog,
	)

	require.NotNil(t, transcript.TextId)
	text, err := uow.texts.FindOne(context.Background())
	require.NoError(t, err)
	require.NotNil(t, text)
	assert.Equal(t, "moderator: welcome", text.Text)
	require.NotNil(t, session.TranscriptTextId)
	assert.Equal(t, *transcript.TextId, *session.TranscriptTextId)

	// The empty question slots are seeded from the generated questions.
	slots, err := uow.questions.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "What did you expect?", slots[0].Question)
	assert.Equal(t, "What was confusing?", slots[1].Question)
	require.NotNil(t, project.QuestionsCreatedAt)
	assert.Equal(t, 1, project.TranscriptCountWhenQuestions)
}

func TestProcessRecordingSkipsSeededProjects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"transcript": "moderator: welcome",
			"questions":  []string{"generated"},
		})
	}))
	defer srv.Close()

	svc, uow, _ := newConsumerFixture(srv.URL)
	project := seedProject(uow, uuid.New())
	session, transcript := seedBotSession(uow, project.Id)
	recording := "https://vendor.test/recordings/1.mp4"
	session.RecordingURL = &recording
	seedQuestionSlots(uow, project.Id, "hand-written question")

	err := svc.processRecording(context.Background(), recordingJob(session, transcript))

	require.NoError(t, err)
	assert.Equal(t, entity.UploadStatusReadyToUse, transcript.UploadStatus)

	slots, err := uow.questions.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "hand-written question", slots[0].Question)
	assert.Nil(t, project.QuestionsCreatedAt)
}

func TestProcessRecordingMissingRowsIsNoop(t *testing.T) {
	svc, uow, objects := newConsumerFixture("http://127.0.0.1:1")

	err := svc.processRecording(context.Background(), dto.ProcessRecordingMessage{
		SessionId:    uuid.New(),
		TranscriptId: uuid.New(),
	})

	require.NoError(t, err)
	assert.Empty(t, uow.transcripts.statusLog)
	assert.Equal(t, 0, objects.putCalls)
}

func TestConsumeProcessesQueuedJobs(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	uow := newFakeUow()
	svc := NewConsumerService(
		pubSub,
		"process-recording",
		&fakeFactory{uow: uow},
		&fakeObjectStorage{},
		transcription.NewClient("http://127.0.0.1:1"),
		nil,
		nopLogger{},
		"aws",
		"en-US",
	)

	project := seedProject(uow, uuid.New())
	session, transcript := seedBotSession(uow, project.Id)
	session.RecordingURL = nil

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, svc.Consume(ctx))

	payload, err := json.Marshal(recordingJob(session, transcript))
	require.NoError(t, err)
	require.NoError(t, pubSub.Publish("process-recording", message.NewMessage(watermill.NewUUID(), payload)))

	require.Eventually(t, func() bool {
		uow.transcripts.mu.Lock()
		defer uow.transcripts.mu.Unlock()
		return transcript.UploadStatus == entity.UploadStatusUploadFailed
	}, time.Second, time.Millisecond)
}
