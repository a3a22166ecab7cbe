package apiv1

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"assessment-tools-backend/controllers"
	assessmenthandler "assessment-tools-backend/lib/assessment"
	authutils "assessment-tools-backend/lib/utils/auth-utils"
	apimodels "assessment-tools-backend/models/api"
	assessmentapimodels "assessment-tools-backend/models/api/assessment"
)

type assessmentApiController struct {
	controllers.BaseAPIController
}

func InitAssessmentApiRouters(app *fiber.App) {
	controller := assessmentApiController{}
	app.Route("assessment", func(router fiber.Router) {
		router.Post("list", controller.list)
		router.Post("", controller.create)
		router.Put("claim", controller.claim)
		router.Route(":id", func(idRoute fiber.Router) {
			idRoute.Get("", controller.get)
			idRoute.Delete("", controller.delete)
			idRoute.Put("regenerate", controller.regenerate)
			idRoute.Post("invite", controller.invite)
			idRoute.Get("export", controller.export)
			idRoute.Get("candidate/:candidate_id/report", controller.candidateReport)
		})
	})
}

// @Summary Создание теста
// @Tags Тест
// @Description Создание теста, пул вопросов генерируется в фоне
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 assessmentapimodels.AssessmentData	true	"request body"
// @Success 200 {object} apimodels.Response{data=string}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/assessment [post]
func (c *assessmentApiController) create(ctx *fiber.Ctx) error {
	var payload assessmentapimodels.AssessmentData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	userID := authutils.GetUserID(ctx)
	id, hMsg, err := assessmenthandler.Instance.Create(ctx.UserContext(), userID, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка создания теста")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(id))
}

// @Summary Список тестов
// @Tags Тест
// @Description Список тестов рекрутера
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 apimodels.Pagination	true	"request body"
// @Success 200 {object} apimodels.ScrollerResponse{data=[]assessmentapimodels.AssessmentView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/assessment/list [post]
func (c *assessmentApiController) list(ctx *fiber.Ctx) error {
	var payload apimodels.Pagination
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	page, limit := payload.GetPage()
	userID := authutils.GetUserID(ctx)
	list, rowCount, err := assessmenthandler.Instance.List(userID, page, limit)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения списка тестов")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewScrollerResponse(list, rowCount))
}

// @Summary Получение теста
// @Tags Тест
// @Description Тест с вопросами и результатами кандидатов
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  true         "rec ID"
// @Success 200 {object} apimodels.Response{data=assessmentapimodels.AssessmentDetailView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/assessment/{id} [get]
func (c *assessmentApiController) get(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	userID := authutils.GetUserID(ctx)
	view, hMsg, err := assessmenthandler.Instance.Get(userID, id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения теста")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}

// @Summary Удаление теста
// @Tags Тест
// @Description Удаление теста вместе с вопросами и результатами
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  true         "rec ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/assessment/{id} [delete]
func (c *assessmentApiController) delete(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	userID := authutils.GetUserID(ctx)
	hMsg, err := assessmenthandler.Instance.Delete(userID, id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка удаления теста")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Привязка тестов
// @Tags Тест
// @Description Привязка тестов, созданных без аккаунта, по email из токена
// @Param   Authorization		header		string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=int64}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/assessment/claim [put]
func (c *assessmentApiController) claim(ctx *fiber.Ctx) error {
	userID := authutils.GetUserID(ctx)
	email := authutils.GetUserEmail(ctx)
	claimed, err := assessmenthandler.Instance.Claim(userID, email)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка привязки тестов к аккаунту")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(claimed))
}

// @Summary Повторная генерация пула
// @Tags Тест
// @Description Повторная генерация пула вопросов после сбоя, только при пустом пуле
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  true         "rec ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/assessment/{id}/regenerate [put]
func (c *assessmentApiController) regenerate(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	userID := authutils.GetUserID(ctx)
	hMsg, err := assessmenthandler.Instance.Regenerate(ctx.UserContext(), userID, id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка генерации пула вопросов")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Приглашение кандидата
// @Tags Тест
// @Description Отправка кандидату ссылки на прохождение теста
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  true         "rec ID"
// @Param	body body	 assessmentapimodels.InviteRequest	true	"request body"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/assessment/{id}/invite [post]
func (c *assessmentApiController) invite(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload assessmentapimodels.InviteRequest
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err = payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	userID := authutils.GetUserID(ctx)
	hMsg, err := assessmenthandler.Instance.Invite(userID, id, payload.Email)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка отправки приглашения")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Выгрузка результатов
// @Tags Тест
// @Description Выгрузка результатов кандидатов в Excel
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  true         "rec ID"
// @Success 200
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/assessment/{id}/export [get]
func (c *assessmentApiController) export(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	userID := authutils.GetUserID(ctx)
	data, hMsg, err := assessmenthandler.Instance.ExportResults(userID, id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка выгрузки результатов в Excel")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	fileName := fmt.Sprintf("results-%v.xlsx", time.Now().Format("20060102-150405"))
	ctx.Set("Content-Type", "application/vnd.ms-excel")
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return ctx.SendStream(data)
}

// @Summary Отчет по кандидату
// @Tags Тест
// @Description Отчет по результату кандидата в pdf
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  true         "rec ID"
// @Param   candidate_id		path    string  true         "candidate ID"
// @Success 200
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/space/assessment/{id}/candidate/{candidate_id}/report [get]
func (c *assessmentApiController) candidateReport(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	candidateID := ctx.Params("candidate_id")
	if candidateID == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError("не указан идентификатор кандидата"))
	}
	userID := authutils.GetUserID(ctx)
	data, hMsg, err := assessmenthandler.Instance.CandidateReport(userID, id, candidateID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка формирования отчета по кандидату")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	fileName := fmt.Sprintf("report-%v.pdf", candidateID)
	ctx.Set("Content-Type", "application/pdf")
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return ctx.Send(data)
}
