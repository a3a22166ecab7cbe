package initializers

import (
	"context"
	"time"

	"assessment-tools-backend/config"
	"assessment-tools-backend/fiberlog"
	"assessment-tools-backend/lib/analysis"
	assessmenthandler "assessment-tools-backend/lib/assessment"
	xlsexport "assessment-tools-backend/lib/export/xls"
	"assessment-tools-backend/lib/notify"
	"assessment-tools-backend/lib/question"
	"assessment-tools-backend/lib/scoring"
	sessionhandler "assessment-tools-backend/lib/session"
	stalesessionworker "assessment-tools-backend/lib/session/stale-session-worker"
	"assessment-tools-backend/lib/utils/lock"
	connectionhub "assessment-tools-backend/lib/ws/hub/connection-hub"
)

var LoggerConfig *fiberlog.Config

func InitAllServices(ctx context.Context) {
	LoggerConfig = InitLogger()
	config.InitConfig()
	InitDBConnection()
	InitSmtp()
	connectionhub.Init()
	lock.InitResourceLock(ctx)
	notify.NewHandler()
	xlsexport.NewHandler()
	question.NewHandler()
	scoring.NewHandler()
	sessionhandler.NewHandler()
	assessmenthandler.NewHandler()
	go initWorkers(ctx)
}

// запускаем с промежутком в 10 сек чтоб размыть нагрузку
func initWorkers(ctx context.Context) {
	// Задача генерации анализа личности по опросникам Ликерта
	analysis.StartWorker(ctx)

	if makeTimeGap(ctx) {
		// Задача принудительного завершения брошенных сессий
		stalesessionworker.StartWorker(ctx)
	}
}

func makeTimeGap(ctx context.Context) (canRun bool) {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(time.Second * 10):
		return true
	}
}
