package session

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"assessment-tools-backend/lib/scoring"
	"assessment-tools-backend/models"
	sessionapimodels "assessment-tools-backend/models/api/session"
	dbmodels "assessment-tools-backend/models/db"
)

func testPool(n int) []dbmodels.AssessmentQuestion {
	pool := make([]dbmodels.AssessmentQuestion, 0, n)
	for i := 0; i < n; i++ {
		q := dbmodels.AssessmentQuestion{
			QuestionNumber: i + 1,
			QuestionText:   fmt.Sprintf("Вопрос %v", i+1),
			OptionA:        "a", OptionB: "b", OptionC: "c", OptionD: "d",
			CorrectAnswer: "A",
		}
		q.ID = fmt.Sprintf("q-%v", i+1)
		pool = append(pool, q)
	}
	return pool
}

func TestDrawAssignment(t *testing.T) {
	t.Run(`назначение - 20 вопросов из пула без повторов`, func(t *testing.T) {
		pool := testPool(models.PoolSize)
		assigned := drawAssignment(pool, rand.New(rand.NewSource(7)))
		require.Len(t, assigned, models.AssignmentSize)
		seen := map[string]bool{}
		for _, q := range assigned {
			require.False(t, seen[q.ID], "вопрос назначен дважды")
			seen[q.ID] = true
		}
	})

	t.Run(`назначения разных кандидатов различаются`, func(t *testing.T) {
		pool := testPool(models.PoolSize)
		first := drawAssignment(pool, rand.New(rand.NewSource(1)))
		second := drawAssignment(pool, rand.New(rand.NewSource(2)))
		same := true
		for i := range first {
			if first[i].ID != second[i].ID {
				same = false
				break
			}
		}
		require.False(t, same)
	})

	t.Run(`каждый вопрос пула попадает в назначения`, func(t *testing.T) {
		pool := testPool(models.PoolSize)
		rnd := rand.New(rand.NewSource(3))
		seen := map[string]bool{}
		for i := 0; i < 200; i++ {
			for _, q := range drawAssignment(pool, rnd) {
				seen[q.ID] = true
			}
		}
		require.Len(t, seen, models.PoolSize)
	})

	t.Run(`пул меньше назначения отдается целиком`, func(t *testing.T) {
		pool := testPool(12)
		assigned := drawAssignment(pool, rand.New(rand.NewSource(5)))
		require.Len(t, assigned, 12)
	})
}

type fakeAssessmentStore struct {
	rec *dbmodels.Assessment
}

func (f *fakeAssessmentStore) Create(rec dbmodels.Assessment) (string, error) {
	return "", nil
}

func (f *fakeAssessmentStore) GetByID(id string) (*dbmodels.Assessment, error) {
	return f.rec, nil
}

func (f *fakeAssessmentStore) GetByIDFull(id string) (*dbmodels.Assessment, error) {
	return f.rec, nil
}

func (f *fakeAssessmentStore) GetByShareToken(token string) (*dbmodels.Assessment, error) {
	return f.rec, nil
}

func (f *fakeAssessmentStore) ListByOwner(recruiterID string, page, limit int) ([]dbmodels.Assessment, int64, error) {
	return nil, 0, nil
}

func (f *fakeAssessmentStore) Delete(id string) error {
	return nil
}

func (f *fakeAssessmentStore) ClaimByEmail(email, recruiterID string) (int64, error) {
	return 0, nil
}

type fakeQuestionStore struct {
	pool []dbmodels.AssessmentQuestion
}

func (f *fakeQuestionStore) ReplaceAll(assessmentID string, recs []dbmodels.AssessmentQuestion) error {
	return nil
}

func (f *fakeQuestionStore) ListByAssessmentID(assessmentID string) ([]dbmodels.AssessmentQuestion, error) {
	return f.pool, nil
}

func (f *fakeQuestionStore) GetByIDs(ids []string) ([]dbmodels.AssessmentQuestion, error) {
	list := make([]dbmodels.AssessmentQuestion, 0, len(ids))
	for _, q := range f.pool {
		for _, id := range ids {
			if q.ID == id {
				list = append(list, q)
			}
		}
	}
	return list, nil
}

func (f *fakeQuestionStore) CountByAssessmentID(assessmentID string) (int64, error) {
	return int64(len(f.pool)), nil
}

type fakeCandidateStore struct {
	rec      *dbmodels.Candidate
	advanced []int
}

func (f *fakeCandidateStore) Create(rec dbmodels.Candidate) (string, error) {
	return "c-1", nil
}

func (f *fakeCandidateStore) GetByID(id string) (*dbmodels.Candidate, error) {
	return f.rec, nil
}

func (f *fakeCandidateStore) GetByIDWithResponses(id string) (*dbmodels.Candidate, error) {
	return f.rec, nil
}

func (f *fakeCandidateStore) Advance(id string, newIndex int, questionStartedAt time.Time) error {
	f.advanced = append(f.advanced, newIndex)
	return nil
}

func (f *fakeCandidateStore) CompleteIfOpen(id string, completedAt time.Time, reason models.CompletionReason, score *int, analysisRequested bool) (bool, error) {
	return true, nil
}

func (f *fakeCandidateStore) ListExpired(before time.Time) ([]dbmodels.Candidate, error) {
	return nil, nil
}

func (f *fakeCandidateStore) ListForAnalysis() ([]dbmodels.Candidate, error) {
	return nil, nil
}

func (f *fakeCandidateStore) SetAnalysis(id string, analysis string) error {
	return nil
}

type fakeResponseStore struct {
	createErr error
	created   []dbmodels.CandidateResponse
}

func (f *fakeResponseStore) Create(rec dbmodels.CandidateResponse) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, rec)
	return nil
}

func (f *fakeResponseStore) ListByCandidateID(candidateID string) ([]dbmodels.CandidateResponse, error) {
	return f.created, nil
}

func (f *fakeResponseStore) CountCorrect(candidateID string) (int64, error) {
	return 0, nil
}

type fakeFinalizer struct {
	reasons []models.CompletionReason
}

func (f *fakeFinalizer) Finalize(candidateID string, reason models.CompletionReason) error {
	f.reasons = append(f.reasons, reason)
	return nil
}

// testSession собирает обработчик на фиктивных хранилищах с кандидатом
// на назначении из n вопросов
func testSession(t *testing.T, n, currentIndex int, startedAgo time.Duration) (*impl, *fakeCandidateStore, *fakeResponseStore, *fakeFinalizer) {
	pool := testPool(n)
	ids := make([]string, 0, n)
	for _, q := range pool {
		ids = append(ids, q.ID)
	}
	rec := dbmodels.Assessment{AssessmentType: models.AssessmentTypeHardSkills, ShareToken: "tok"}
	rec.ID = "a-1"
	started := time.Now().Add(-startedAgo)
	candidate := dbmodels.Candidate{
		AssessmentID:        "a-1",
		AssignedQuestionIDs: pq.StringArray(ids),
		CurrentIndex:        currentIndex,
		QuestionStartedAt:   &started,
		StartedAt:           started,
	}
	candidate.ID = "c-1"

	candidateStore := &fakeCandidateStore{rec: &candidate}
	responseStore := &fakeResponseStore{}
	handler := &impl{
		assessmentStore: &fakeAssessmentStore{rec: &rec},
		questionStore:   &fakeQuestionStore{pool: pool},
		candidateStore:  candidateStore,
		responseStore:   responseStore,
		rnd:             rand.New(rand.NewSource(1)),
	}

	finalizer := &fakeFinalizer{}
	orig := scoring.Instance
	scoring.Instance = finalizer
	t.Cleanup(func() { scoring.Instance = orig })
	return handler, candidateStore, responseStore, finalizer
}

func TestAnswerPersistence(t *testing.T) {
	t.Run(`ошибка записи ответа не двигает курсор`, func(t *testing.T) {
		handler, candidateStore, responseStore, _ := testSession(t, 3, 0, 10*time.Second)
		responseStore.createErr = errors.New("insert failed")

		_, hMsg, err := handler.Answer("tok", "c-1", sessionapimodels.AnswerRequest{SelectedAnswer: "B"})
		require.NotNil(t, err)
		require.Empty(t, hMsg)
		require.Empty(t, candidateStore.advanced)
		require.Equal(t, 0, candidateStore.rec.CurrentIndex)

		// после восстановления записи ответ проходит и курсор двигается
		responseStore.createErr = nil
		view, hMsg, err := handler.Answer("tok", "c-1", sessionapimodels.AnswerRequest{SelectedAnswer: "B"})
		require.Nil(t, err)
		require.Empty(t, hMsg)
		require.Equal(t, []int{1}, candidateStore.advanced)
		require.Equal(t, 1, view.CurrentIndex)
	})
}

func TestCatchUp(t *testing.T) {
	t.Run(`истекшие периоды закрываются автоответами до завершения`, func(t *testing.T) {
		ago := time.Duration(3*models.QuestionPeriodSeconds+5) * time.Second
		handler, candidateStore, responseStore, finalizer := testSession(t, 3, 0, ago)

		view, hMsg, err := handler.GetSession("tok", "c-1")
		require.Nil(t, err)
		require.Empty(t, hMsg)
		require.Equal(t, "completed", view.State)
		require.Len(t, responseStore.created, 3)
		for _, resp := range responseStore.created {
			require.Empty(t, resp.SelectedAnswer)
			require.False(t, resp.IsCorrect)
			require.Equal(t, models.QuestionPeriodSeconds, resp.TimeTakenSeconds)
		}
		require.Equal(t, []int{1, 2, 3}, candidateStore.advanced)
		require.Equal(t, []models.CompletionReason{models.CompletionNatural}, finalizer.reasons)
	})

	t.Run(`курсор за последним вопросом - сессия довершается без лишних ответов`, func(t *testing.T) {
		// сдвиг курсора успел сохраниться, а финализация нет
		handler, candidateStore, responseStore, finalizer := testSession(t, 2, 2, 3*time.Minute)

		view, hMsg, err := handler.GetSession("tok", "c-1")
		require.Nil(t, err)
		require.Empty(t, hMsg)
		require.Equal(t, "completed", view.State)
		require.Empty(t, responseStore.created)
		require.Empty(t, candidateStore.advanced)
		require.Equal(t, []models.CompletionReason{models.CompletionNatural}, finalizer.reasons)
		require.NotNil(t, candidateStore.rec.CompletedAt)
	})
}

func TestAnswerValidation(t *testing.T) {
	objective := dbmodels.AssessmentQuestion{CorrectAnswer: "B"}
	likert := dbmodels.AssessmentQuestion{CorrectAnswer: models.LikertSentinel}

	t.Run(`объективный вопрос принимает только A..D`, func(t *testing.T) {
		for _, letter := range []string{"A", "B", "C", "D"} {
			require.True(t, isAllowedAnswer(letter, objective))
		}
		require.False(t, isAllowedAnswer("E", objective))
		require.False(t, isAllowedAnswer("", objective))
		require.False(t, isAllowedAnswer("AB", objective))
		require.False(t, isAllowedAnswer("a", objective))
	})

	t.Run(`шкала Ликерта принимает A..E`, func(t *testing.T) {
		require.True(t, isAllowedAnswer("E", likert))
		require.False(t, isAllowedAnswer("F", likert))
	})
}

func TestElapsedSeconds(t *testing.T) {
	t.Run(`прошедшее время ограничено периодом вопроса`, func(t *testing.T) {
		now := time.Now()
		started := now.Add(-15 * time.Second)
		candidate := dbmodels.Candidate{QuestionStartedAt: &started}
		require.Equal(t, 15, elapsedSeconds(candidate, now))

		late := now.Add(-5 * time.Minute)
		candidate.QuestionStartedAt = &late
		require.Equal(t, models.QuestionPeriodSeconds, elapsedSeconds(candidate, now))
	})

	t.Run(`без открытого вопроса времени не прошло`, func(t *testing.T) {
		require.Equal(t, 0, elapsedSeconds(dbmodels.Candidate{}, time.Now()))
	})
}
