package question

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"assessment-tools-backend/models"
	dbmodels "assessment-tools-backend/models/db"
)

type fakeAIClient struct {
	resp string
	err  error
}

func (f *fakeAIClient) GenerateByPromtAndText(ctx context.Context, promt, text string) (string, error) {
	return f.resp, f.err
}

type fakeAssessmentStore struct {
	rec *dbmodels.Assessment
}

func (f *fakeAssessmentStore) Create(rec dbmodels.Assessment) (string, error) { return "", nil }
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
func (f *fakeAssessmentStore) Delete(id string) error { return nil }
func (f *fakeAssessmentStore) ClaimByEmail(email, recruiterID string) (int64, error) {
	return 0, nil
}

type fakeQuestionStore struct {
	savedID string
	saved   []dbmodels.AssessmentQuestion
}

func (f *fakeQuestionStore) ReplaceAll(assessmentID string, recs []dbmodels.AssessmentQuestion) error {
	f.savedID = assessmentID
	f.saved = recs
	return nil
}
func (f *fakeQuestionStore) ListByAssessmentID(assessmentID string) ([]dbmodels.AssessmentQuestion, error) {
	return f.saved, nil
}
func (f *fakeQuestionStore) GetByIDs(ids []string) ([]dbmodels.AssessmentQuestion, error) {
	return f.saved, nil
}
func (f *fakeQuestionStore) CountByAssessmentID(assessmentID string) (int64, error) {
	return int64(len(f.saved)), nil
}

func objectiveItems(n int, correct func(idx int) string) string {
	items := make([]map[string]interface{}, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, map[string]interface{}{
			"question": fmt.Sprintf("Вопрос %v", i+1),
			"options": map[string]string{
				"A": fmt.Sprintf("вариант A-%v", i+1),
				"B": fmt.Sprintf("вариант B-%v", i+1),
				"C": fmt.Sprintf("вариант C-%v", i+1),
				"D": fmt.Sprintf("вариант D-%v", i+1),
			},
			"correct": correct(i),
		})
	}
	raw, _ := json.Marshal(items)
	return string(raw)
}

func likertItems(n int) string {
	items := make([]map[string]interface{}, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, map[string]interface{}{
			"question": fmt.Sprintf("Утверждение %v", i+1),
		})
	}
	raw, _ := json.Marshal(items)
	return string(raw)
}

func newTestGenerator(rec *dbmodels.Assessment, aiResp string, aiErr error) (impl, *fakeQuestionStore) {
	store := &fakeQuestionStore{}
	gen := impl{
		aiClient:        &fakeAIClient{resp: aiResp, err: aiErr},
		assessmentStore: &fakeAssessmentStore{rec: rec},
		questionStore:   store,
		rnd:             rand.New(rand.NewSource(1)),
	}
	return gen, store
}

func hardSkillsRec() *dbmodels.Assessment {
	topic := "Senior Go developer"
	rec := &dbmodels.Assessment{
		Title:          "Go разработчик",
		AssessmentType: models.AssessmentTypeHardSkills,
		CustomTopic:    &topic,
		Language:       "es",
	}
	rec.ID = "a-1"
	return rec
}

func likertRec() *dbmodels.Assessment {
	pt := models.PsychometricBigFive
	rec := &dbmodels.Assessment{
		Title:            pt.Title(),
		AssessmentType:   models.AssessmentTypePsychometric,
		PsychometricType: &pt,
		Language:         "es",
	}
	rec.ID = "a-2"
	return rec
}

func TestGeneratePool(t *testing.T) {
	ctx := context.Background()

	t.Run(`полный батч сохраняется с нумерацией`, func(t *testing.T) {
		raw := objectiveItems(models.PoolSize, func(idx int) string {
			return models.OptionLetters[idx%len(models.OptionLetters)]
		})
		gen, store := newTestGenerator(hardSkillsRec(), raw, nil)
		err := gen.GeneratePool(ctx, "a-1")
		require.Nil(t, err)
		require.Equal(t, "a-1", store.savedID)
		require.Len(t, store.saved, models.PoolSize)
		for idx, rec := range store.saved {
			require.Equal(t, idx+1, rec.QuestionNumber)
			require.NotEmpty(t, rec.QuestionText)
			require.Contains(t, models.OptionLetters, rec.CorrectAnswer)
		}
	})

	t.Run(`markdown-ограждения и пояснения отбрасываются`, func(t *testing.T) {
		raw := "Вот вопросы:\n```json\n" + objectiveItems(models.PoolSize, func(int) string { return "B" }) + "\n```"
		gen, store := newTestGenerator(hardSkillsRec(), raw, nil)
		err := gen.GeneratePool(ctx, "a-1")
		require.Nil(t, err)
		require.Len(t, store.saved, models.PoolSize)
	})

	t.Run(`ошибка сервиса генерации`, func(t *testing.T) {
		gen, store := newTestGenerator(hardSkillsRec(), "", fmt.Errorf("timeout"))
		err := gen.GeneratePool(ctx, "a-1")
		require.ErrorIs(t, err, ErrGenerationUnavailable)
		require.Empty(t, store.saved)
	})

	t.Run(`не JSON - отказ всего батча`, func(t *testing.T) {
		gen, store := newTestGenerator(hardSkillsRec(), "извините, не могу помочь", nil)
		err := gen.GeneratePool(ctx, "a-1")
		require.ErrorIs(t, err, ErrGenerationMalformed)
		require.Empty(t, store.saved)
	})

	t.Run(`один дефектный вопрос отклоняет весь батч`, func(t *testing.T) {
		items := []map[string]interface{}{}
		_ = json.Unmarshal([]byte(objectiveItems(models.PoolSize, func(int) string { return "A" })), &items)
		items[17]["options"] = map[string]string{"A": "только один"}
		raw, _ := json.Marshal(items)
		gen, store := newTestGenerator(hardSkillsRec(), string(raw), nil)
		err := gen.GeneratePool(ctx, "a-1")
		require.ErrorIs(t, err, ErrGenerationMalformed)
		require.Empty(t, store.saved)
	})

	t.Run(`менее 40 вопросов - отказ`, func(t *testing.T) {
		raw := objectiveItems(models.MinUsableQuestions-1, func(int) string { return "A" })
		gen, store := newTestGenerator(hardSkillsRec(), raw, nil)
		err := gen.GeneratePool(ctx, "a-1")
		require.ErrorIs(t, err, ErrGenerationInsufficient)
		require.Empty(t, store.saved)
	})

	t.Run(`45 вопросов добиваются дублями до 50`, func(t *testing.T) {
		raw := objectiveItems(45, func(idx int) string {
			return models.OptionLetters[idx%len(models.OptionLetters)]
		})
		gen, store := newTestGenerator(hardSkillsRec(), raw, nil)
		err := gen.GeneratePool(ctx, "a-1")
		require.Nil(t, err)
		require.Len(t, store.saved, models.PoolSize)
		// дубли берутся из исходного батча
		texts := map[string]bool{}
		for i := 1; i <= 45; i++ {
			texts[fmt.Sprintf("Вопрос %v", i)] = true
		}
		for _, rec := range store.saved {
			require.True(t, texts[rec.QuestionText])
		}
	})

	t.Run(`излишек усекается до 50`, func(t *testing.T) {
		raw := objectiveItems(60, func(idx int) string {
			return models.OptionLetters[idx%len(models.OptionLetters)]
		})
		gen, store := newTestGenerator(hardSkillsRec(), raw, nil)
		err := gen.GeneratePool(ctx, "a-1")
		require.Nil(t, err)
		require.Len(t, store.saved, models.PoolSize)
		require.Equal(t, "Вопрос 50", store.saved[models.PoolSize-1].QuestionText)
	})

	t.Run(`перекос правильных ответов выравнивается`, func(t *testing.T) {
		raw := objectiveItems(models.PoolSize, func(int) string { return "A" })
		gen, store := newTestGenerator(hardSkillsRec(), raw, nil)
		err := gen.GeneratePool(ctx, "a-1")
		require.Nil(t, err)
		counts := map[string]int{}
		for _, rec := range store.saved {
			counts[rec.CorrectAnswer]++
		}
		minCount, maxCount := models.PoolSize, 0
		for _, letter := range models.OptionLetters {
			if counts[letter] < minCount {
				minCount = counts[letter]
			}
			if counts[letter] > maxCount {
				maxCount = counts[letter]
			}
		}
		require.LessOrEqual(t, maxCount-minCount, models.RebalanceMaxGap)
		// смысл следует за содержимым: текст правильного варианта сохраняется
		for _, rec := range store.saved {
			require.Contains(t, rec.Option(rec.CorrectAnswer), "вариант A-")
		}
	})

	t.Run(`умеренный перекос не трогается`, func(t *testing.T) {
		// 15/15/10/10: разрыв 5 в пределах допуска
		raw := objectiveItems(models.PoolSize, func(idx int) string {
			if idx < 15 {
				return "A"
			}
			if idx < 30 {
				return "B"
			}
			if idx < 40 {
				return "C"
			}
			return "D"
		})
		gen, store := newTestGenerator(hardSkillsRec(), raw, nil)
		err := gen.GeneratePool(ctx, "a-1")
		require.Nil(t, err)
		require.Equal(t, "A", store.saved[0].CorrectAnswer)
		require.Equal(t, "вариант A-1", store.saved[0].Option("A"))
	})

	t.Run(`шкала Ликерта: сентинел и фиксированные варианты`, func(t *testing.T) {
		gen, store := newTestGenerator(likertRec(), likertItems(models.PoolSize), nil)
		err := gen.GeneratePool(ctx, "a-2")
		require.Nil(t, err)
		require.Len(t, store.saved, models.PoolSize)
		scale := models.LikertScale("es")
		for _, rec := range store.saved {
			require.Equal(t, models.LikertSentinel, rec.CorrectAnswer)
			require.True(t, rec.IsLikert())
			require.Equal(t, scale[0], rec.OptionA)
			require.Equal(t, scale[4], rec.OptionE)
		}
	})

	t.Run(`шкала Ликерта на английском`, func(t *testing.T) {
		rec := likertRec()
		rec.Language = "en"
		gen, store := newTestGenerator(rec, likertItems(models.PoolSize), nil)
		err := gen.GeneratePool(ctx, "a-2")
		require.Nil(t, err)
		scale := models.LikertScale("en")
		require.Equal(t, scale[0], store.saved[0].OptionA)
	})
}
