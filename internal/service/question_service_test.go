package service

import (
	"context"
	"testing"
	"time"

	"userlens-be/internal/dto"
	"userlens-be/internal/entity"
	"userlens-be/pkg/transcription"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQuestionFixture(processingBase string) (IQuestionService, *fakeUow) {
	uow := newFakeUow()
	svc := NewQuestionService(&fakeFactory{uow: uow}, transcription.NewClient(processingBase))
	return svc, uow
}

func seedQuestionSlots(uow *fakeUow, projectId uuid.UUID, texts ...string) {
	for i, text := range texts {
		uow.questions.rows = append(uow.questions.rows, &entity.Question{
			Id:        uuid.New(),
			ProjectId: projectId,
			Question:  text,
			Position:  i,
			CreatedAt: time.Now(),
		})
	}
}

func TestSetQuestionsGrowsSlots(t *testing.T) {
	svc, uow := newQuestionFixture("http://127.0.0.1:1")
	userId := uuid.New()
	project := seedProject(uow, userId)
	seedQuestionSlots(uow, project.Id, "", "")

	req := &dto.SetQuestionsRequest{
		ProjectId: project.Id,
		Questions: []string{"q1", "q2", "q3", "q4"},
	}
	res, err := svc.SetQuestions(context.Background(), userId, req)

	require.NoError(t, err)
	require.Len(t, res.Questions, 4)

	slots, _ := uow.questions.FindAll(context.Background())
	assert.Len(t, slots, 4)
	for i, slot := range slots {
		assert.Equal(t, req.Questions[i], slot.Question)
		assert.Equal(t, i, slot.Position)
	}
}

func TestSetQuestionsArchivesPrevious(t *testing.T) {
	svc, uow := newQuestionFixture("http://127.0.0.1:1")
	userId := uuid.New()
	project := seedProject(uow, userId)
	seedQuestionSlots(uow, project.Id, "old question", "")

	req := &dto.SetQuestionsRequest{
		ProjectId: project.Id,
		Questions: []string{"new question"},
	}
	_, err := svc.SetQuestions(context.Background(), userId, req)

	require.NoError(t, err)
	assert.Equal(t, []string{"old question"}, project.PastQuestions)
	require.NotNil(t, project.QuestionsCreatedAt)
}

func TestSetQuestionsClearsTrailingSlots(t *testing.T) {
	svc, uow := newQuestionFixture("http://127.0.0.1:1")
	userId := uuid.New()
	project := seedProject(uow, userId)
	seedQuestionSlots(uow, project.Id, "a", "b", "c")

	req := &dto.SetQuestionsRequest{
		ProjectId: project.Id,
		Questions: []string{"a only"},
	}
	res, err := svc.SetQuestions(context.Background(), userId, req)

	require.NoError(t, err)
	require.Len(t, res.Questions, 1)

	slots, _ := uow.questions.FindAll(context.Background())
	require.Len(t, slots, 3)
	assert.Equal(t, "a only", slots[0].Question)
	assert.Equal(t, "", slots[1].Question)
	assert.Equal(t, "", slots[2].Question)
}

func TestSetQuestionsUnknownProject(t *testing.T) {
	svc, _ := newQuestionFixture("http://127.0.0.1:1")

	_, err := svc.SetQuestions(context.Background(), uuid.New(), &dto.SetQuestionsRequest{
		ProjectId: uuid.New(),
		Questions: []string{"q"},
	})

	require.Error(t, err)
}

func TestGenerateAnswersRequiresProcessedText(t *testing.T) {
	svc, uow := newQuestionFixture("http://127.0.0.1:1")
	userId := uuid.New()
	project := seedProject(uow, userId)

	transcript := &entity.Transcript{
		Id:        uuid.New(),
		ProjectId: project.Id,
	}
	uow.transcripts.rows[transcript.Id] = transcript

	_, err := svc.GenerateAnswers(context.Background(), userId, &dto.GenerateAnswersRequest{
		TranscriptId: transcript.Id,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no processed text")
}
