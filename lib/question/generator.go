package question

import (
	"context"
	"encoding/json"
	"math/rand"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	yagptclient "assessment-tools-backend/lib/ai/yagpt-client"
	assessmentstore "assessment-tools-backend/lib/assessment/store"
	questionstore "assessment-tools-backend/lib/question/store"
	"assessment-tools-backend/lib/utils/lock"
	"assessment-tools-backend/models"
	dbmodels "assessment-tools-backend/models/db"

	"assessment-tools-backend/config"
	"assessment-tools-backend/db"
)

type Provider interface {
	// GeneratePool генерирует и сохраняет все 50 вопросов теста единым батчем.
	// При любой ошибке тест остается без вопросов, вызов можно повторить
	GeneratePool(ctx context.Context, assessmentID string) error
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		aiClient:        yagptclient.NewClient(config.Conf.YandexGPT.IAMToken, config.Conf.YandexGPT.CatalogID),
		assessmentStore: assessmentstore.NewInstance(db.DB),
		questionStore:   questionstore.NewInstance(db.DB),
		rnd:             rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

type impl struct {
	aiClient        yagptclient.Provider
	assessmentStore assessmentstore.Provider
	questionStore   questionstore.Provider
	rnd             *rand.Rand
}

// genItem - элемент ответа сервиса генерации
type genItem struct {
	Question string            `json:"question"`
	Options  map[string]string `json:"options"`
	Correct  string            `json:"correct"`
}

func (i impl) GeneratePool(ctx context.Context, assessmentID string) error {
	logger := log.WithField("assessment_id", assessmentID)
	rec, err := i.assessmentStore.GetByID(assessmentID)
	if err != nil {
		return errors.Wrap(err, "ошибка получения теста")
	}
	if rec == nil {
		return errors.New("тест не найден")
	}

	systemPromt, userPromt := buildPrompt(*rec)

	if !lock.Resource.Acquire(ctx, "GeneratePool") {
		return errors.Wrap(ErrGenerationUnavailable, "контекст завершен")
	}
	raw, err := i.aiClient.GenerateByPromtAndText(ctx, systemPromt, userPromt)
	lock.Resource.Release("GeneratePool")
	if err != nil {
		logger.WithError(err).Error("ошибка обращения к сервису генерации вопросов")
		return errors.Wrap(ErrGenerationUnavailable, err.Error())
	}

	items, err := parseItems(raw)
	if err != nil {
		logger.WithError(err).Error("не удалось разобрать ответ сервиса генерации")
		return errors.Wrap(ErrGenerationMalformed, err.Error())
	}

	isLikert := rec.IsLikert()
	if err = validateItems(items, isLikert); err != nil {
		logger.WithError(err).Error("сервис генерации вернул некорректные вопросы")
		return errors.Wrap(ErrGenerationMalformed, err.Error())
	}
	items, err = repairCount(items, i.rnd)
	if err != nil {
		return err
	}
	if !isLikert {
		items = rebalance(items)
	}

	recs := make([]dbmodels.AssessmentQuestion, 0, len(items))
	for idx, item := range items {
		recs = append(recs, toQuestionRec(rec.ID, idx+1, item, isLikert, rec.Language))
	}
	if err = i.questionStore.ReplaceAll(rec.ID, recs); err != nil {
		return errors.Wrap(err, "ошибка сохранения пула вопросов")
	}
	logger.WithField("count", len(recs)).Info("пул вопросов сгенерирован")
	return nil
}

// parseItems разбирает ответ LLM как JSON-массив, отбрасывая markdown-ограждения
func parseItems(raw string) ([]genItem, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)
	// на случай пояснений вокруг массива берем самый внешний []
	if start := strings.Index(cleaned, "["); start > 0 {
		if end := strings.LastIndex(cleaned, "]"); end > start {
			cleaned = cleaned[start : end+1]
		}
	}
	items := []genItem{}
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		return nil, errors.Wrap(err, "ответ не является JSON-массивом вопросов")
	}
	return items, nil
}

// validateItems проверяет структуру каждого вопроса, любой дефект отклоняет весь батч
func validateItems(items []genItem, isLikert bool) error {
	for idx, item := range items {
		if strings.TrimSpace(item.Question) == "" {
			return errors.Errorf("вопрос %v без текста", idx+1)
		}
		if isLikert {
			continue
		}
		for _, letter := range models.OptionLetters {
			if strings.TrimSpace(item.Options[letter]) == "" {
				return errors.Errorf("вопрос %v без варианта %s", idx+1, letter)
			}
		}
		if !isOptionLetter(item.Correct) {
			return errors.Errorf("вопрос %v с некорректным правильным ответом %q", idx+1, item.Correct)
		}
	}
	return nil
}

// repairCount доводит кол-во вопросов до требуемого размера пула:
// излишек усекается, нехватка 40..49 добивается дублями случайных вопросов,
// менее 40 - отказ
func repairCount(items []genItem, rnd *rand.Rand) ([]genItem, error) {
	if len(items) < models.MinUsableQuestions {
		return nil, errors.Wrapf(ErrGenerationInsufficient, "получено %v вопросов", len(items))
	}
	if len(items) > models.PoolSize {
		return items[:models.PoolSize], nil
	}
	for len(items) < models.PoolSize {
		items = append(items, items[rnd.Intn(len(items))])
	}
	return items, nil
}

// rebalance выравнивает распределение правильных ответов по A/B/C/D.
// Буквы назначаются по кругу, текст прежнего правильного варианта
// переставляется в новый правильный слот, чтобы смысл остался за содержимым
func rebalance(items []genItem) []genItem {
	counts := map[string]int{}
	for _, item := range items {
		counts[item.Correct]++
	}
	minCount, maxCount := len(items), 0
	for _, letter := range models.OptionLetters {
		if counts[letter] < minCount {
			minCount = counts[letter]
		}
		if counts[letter] > maxCount {
			maxCount = counts[letter]
		}
	}
	if maxCount-minCount <= models.RebalanceMaxGap {
		return items
	}
	for idx := range items {
		target := models.OptionLetters[idx%len(models.OptionLetters)]
		items[idx] = reassignCorrect(items[idx], target)
	}
	return items
}

// reassignCorrect меняет правильную букву вопроса на target, обменивая тексты вариантов
func reassignCorrect(item genItem, target string) genItem {
	if item.Correct == target {
		return item
	}
	options := make(map[string]string, len(item.Options))
	for k, v := range item.Options {
		options[k] = v
	}
	options[item.Correct], options[target] = options[target], options[item.Correct]
	item.Options = options
	item.Correct = target
	return item
}

func isOptionLetter(s string) bool {
	for _, letter := range models.OptionLetters {
		if s == letter {
			return true
		}
	}
	return false
}

func toQuestionRec(assessmentID string, number int, item genItem, isLikert bool, language string) dbmodels.AssessmentQuestion {
	rec := dbmodels.AssessmentQuestion{
		AssessmentID:   assessmentID,
		QuestionNumber: number,
		QuestionText:   item.Question,
	}
	if isLikert {
		scale := models.LikertScale(language)
		rec.OptionA = scale[0]
		rec.OptionB = scale[1]
		rec.OptionC = scale[2]
		rec.OptionD = scale[3]
		rec.OptionE = scale[4]
		rec.CorrectAnswer = models.LikertSentinel
		return rec
	}
	rec.OptionA = item.Options["A"]
	rec.OptionB = item.Options["B"]
	rec.OptionC = item.Options["C"]
	rec.OptionD = item.Options["D"]
	rec.CorrectAnswer = item.Correct
	return rec
}
