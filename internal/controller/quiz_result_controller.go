package controller

import (
	"chapterflux_backend/internal/service"
	"chapterflux_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizResultController struct {
	QuizResultService *service.QuizResultService
}

func NewQuizResultController(quizResultService *service.QuizResultService) *QuizResultController {
	return &QuizResultController{QuizResultService: quizResultService}
}

// @Summary 提交测验结果
// @Tags 测验
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.RecordQuizRequest true "测验结果"
// @Success 201 {object} map[string]interface{}
// @Router /quiz-results [post]
func (c *QuizResultController) Record(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.RecordQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.ValidationFailed(ctx, err)
		return
	}

	result, err := c.QuizResultService.Record(ctx.Request.Context(), user.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{"quizResult": result})
}

// @Summary 测验结果列表
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]interface{}
// @Router /quiz-results [get]
func (c *QuizResultController) List(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	results, err := c.QuizResultService.List(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"quizResults": results})
}
