package publicapi

import (
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"assessment-tools-backend/controllers"
	assessmenthandler "assessment-tools-backend/lib/assessment"
	sessionhandler "assessment-tools-backend/lib/session"
	apimodels "assessment-tools-backend/models/api"
	assessmentapimodels "assessment-tools-backend/models/api/assessment"
	sessionapimodels "assessment-tools-backend/models/api/session"
)

type publicAssessmentApiController struct {
	controllers.BaseAPIController
}

func InitPublicAssessmentApiRouters(app *fiber.App) {
	controller := publicAssessmentApiController{}
	app.Post("assessment", controller.create)
	app.Route("assessment/:token", func(router fiber.Router) {
		router.Get("", controller.get)
		router.Post("session", controller.startSession)
		router.Route("session/:candidate_id", func(sessionRoute fiber.Router) {
			sessionRoute.Get("", controller.getSession)
			sessionRoute.Post("answer", controller.answer)
			sessionRoute.Put("interrupt", controller.interrupt)
			sessionRoute.Get("result", controller.result)
		})
	})
}

// @Summary Создание теста без аккаунта
// @Tags Публичный тест
// @Description Создание теста без аккаунта, требуется email создателя для последующей привязки
// @Param	body body	 assessmentapimodels.AssessmentData	true	"request body"
// @Success 200 {object} apimodels.Response{data=string}
// @Failure 400 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/public/assessment [post]
func (c *publicAssessmentApiController) create(ctx *fiber.Ctx) error {
	var payload assessmentapimodels.AssessmentData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	id, hMsg, err := assessmenthandler.Instance.Create(ctx.UserContext(), "", payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка создания теста")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(id))
}

// @Summary Данные теста
// @Tags Публичный тест
// @Description Данные теста по публичной ссылке
// @Param   token          		path    string  true         "Публичный токен теста"
// @Success 200 {object} apimodels.Response{data=sessionapimodels.AssessmentPublicView}
// @Failure 400 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/public/assessment/{token} [get]
func (c *publicAssessmentApiController) get(ctx *fiber.Ctx) error {
	token := ctx.Params("token")
	view, hMsg, err := sessionhandler.Instance.GetPublicAssessment(token)
	if err != nil {
		logger := log.WithField("share_token", token)
		return c.SendError(ctx, logger, err, "Ошибка получения теста")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}

// @Summary Старт сессии
// @Tags Публичный тест
// @Description Старт сессии: кандидату назначаются 20 случайных вопросов из пула
// @Param   token          		path    string  true         "Публичный токен теста"
// @Param	body body	 sessionapimodels.StartSessionRequest	true	"request body"
// @Success 200 {object} apimodels.Response{data=sessionapimodels.StartSessionView}
// @Failure 400 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/public/assessment/{token}/session [post]
func (c *publicAssessmentApiController) startSession(ctx *fiber.Ctx) error {
	token := ctx.Params("token")
	var payload sessionapimodels.StartSessionRequest
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	view, hMsg, err := sessionhandler.Instance.StartSession(token, payload)
	if err != nil {
		logger := log.WithField("share_token", token)
		return c.SendError(ctx, logger, err, "Ошибка старта сессии")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}

// @Summary Состояние сессии
// @Tags Публичный тест
// @Description Текущее состояние сессии с учетом истекших вопросов
// @Param   token          		path    string  true         "Публичный токен теста"
// @Param   candidate_id   		path    string  true         "Идентификатор кандидата"
// @Success 200 {object} apimodels.Response{data=sessionapimodels.SessionView}
// @Failure 400 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/public/assessment/{token}/session/{candidate_id} [get]
func (c *publicAssessmentApiController) getSession(ctx *fiber.Ctx) error {
	token := ctx.Params("token")
	candidateID := ctx.Params("candidate_id")
	view, hMsg, err := sessionhandler.Instance.GetSession(token, candidateID)
	if err != nil {
		logger := log.WithField("candidate_id", candidateID)
		return c.SendError(ctx, logger, err, "Ошибка получения сессии")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}

// @Summary Ответ на вопрос
// @Tags Публичный тест
// @Description Запись ответа на текущий вопрос и переход к следующему
// @Param   token          		path    string  true         "Публичный токен теста"
// @Param   candidate_id   		path    string  true         "Идентификатор кандидата"
// @Param	body body	 sessionapimodels.AnswerRequest	true	"request body"
// @Success 200 {object} apimodels.Response{data=sessionapimodels.SessionView}
// @Failure 400 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/public/assessment/{token}/session/{candidate_id}/answer [post]
func (c *publicAssessmentApiController) answer(ctx *fiber.Ctx) error {
	token := ctx.Params("token")
	candidateID := ctx.Params("candidate_id")
	var payload sessionapimodels.AnswerRequest
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	view, hMsg, err := sessionhandler.Instance.Answer(token, candidateID, payload)
	if err != nil {
		logger := log.WithField("candidate_id", candidateID)
		return c.SendError(ctx, logger, err, "Ошибка записи ответа")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}

// @Summary Потеря видимости вкладки
// @Tags Публичный тест
// @Description Принудительное завершение сессии при переключении вкладки
// @Param   token          		path    string  true         "Публичный токен теста"
// @Param   candidate_id   		path    string  true         "Идентификатор кандидата"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/public/assessment/{token}/session/{candidate_id}/interrupt [put]
func (c *publicAssessmentApiController) interrupt(ctx *fiber.Ctx) error {
	token := ctx.Params("token")
	candidateID := ctx.Params("candidate_id")
	hMsg, err := sessionhandler.Instance.Interrupt(token, candidateID)
	if err != nil {
		logger := log.WithField("candidate_id", candidateID)
		return c.SendError(ctx, logger, err, "Ошибка завершения сессии")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Результат кандидата
// @Tags Публичный тест
// @Description Результат завершенной сессии
// @Param   token          		path    string  true         "Публичный токен теста"
// @Param   candidate_id   		path    string  true         "Идентификатор кандидата"
// @Success 200 {object} apimodels.Response{data=sessionapimodels.ResultView}
// @Failure 400 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/public/assessment/{token}/session/{candidate_id}/result [get]
func (c *publicAssessmentApiController) result(ctx *fiber.Ctx) error {
	token := ctx.Params("token")
	candidateID := ctx.Params("candidate_id")
	view, hMsg, err := sessionhandler.Instance.Result(token, candidateID)
	if err != nil {
		logger := log.WithField("candidate_id", candidateID)
		return c.SendError(ctx, logger, err, "Ошибка получения результата")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}
