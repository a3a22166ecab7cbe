package stalesessionworker

import (
	"context"
	"time"

	"assessment-tools-backend/db"
	"assessment-tools-backend/lib/scoring"
	candidatestore "assessment-tools-backend/lib/session/candidate-store"
	baseworker "assessment-tools-backend/lib/utils/base-worker"
	"assessment-tools-backend/models"
)

// принудительное завершение брошенных сессий
func StartWorker(ctx context.Context) {
	i := &impl{
		BaseImpl:       baseworker.NewInstance("StaleSessionWorker", 30*time.Second, handlePeriod),
		candidateStore: candidatestore.NewInstance(db.DB),
		scoring:        scoring.Instance,
	}
	go i.Run(ctx, func(ctx context.Context) {
		i.handle()
	})
}

const (
	handlePeriod = 5 * time.Minute
	// сессия считается брошенной, если текущий вопрос открыт дольше этого срока.
	// Полная сессия занимает не более 20 вопросов по 40 секунд
	abandonTimeout = 15 * time.Minute
)

type impl struct {
	*baseworker.BaseImpl
	candidateStore candidatestore.Provider
	scoring        scoring.Provider
}

func (i impl) handle() {
	logger := i.GetLogger()
	//Получаем список брошенных сессий
	list, err := i.candidateStore.ListExpired(time.Now().Add(-abandonTimeout))
	if err != nil {
		logger.WithError(err).Error("ошибка получения списка брошенных сессий")
		return
	}
	for _, candidate := range list {
		err = i.scoring.Finalize(candidate.ID, models.CompletionExpired)
		if err != nil {
			logger.WithError(err).
				WithField("candidate_id", candidate.ID).
				Error("ошибка завершения брошенной сессии")
			continue
		}
		logger.
			WithField("candidate_id", candidate.ID).
			Info("брошенная сессия завершена принудительно")
	}
}
