package controller

import (
	"chapterflux_backend/internal/service"
	"chapterflux_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ReadingSessionController struct {
	ReadingSessionService *service.ReadingSessionService
}

func NewReadingSessionController(readingSessionService *service.ReadingSessionService) *ReadingSessionController {
	return &ReadingSessionController{ReadingSessionService: readingSessionService}
}

// @Summary 记录阅读会话
// @Description 通过 action 开始、更新或结束文档的阅读会话；没有进行中的会话时 update/end 不做任何操作
// @Tags 阅读会话
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.TrackReadingRequest true "会话事件"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} util.ErrorResponse
// @Failure 401 {object} util.ErrorResponse
// @Router /reading-sessions [post]
func (c *ReadingSessionController) Track(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.TrackReadingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.ValidationFailed(ctx, err)
		return
	}

	result, err := c.ReadingSessionService.Track(ctx.Request.Context(), user.UserID, req)
	if err != nil {
		if util.IsValidationError(err) {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	if req.Action == service.ActionStart {
		util.Success(ctx, gin.H{"sessionId": result.SessionID})
		return
	}
	util.Success(ctx, nil)
}

// @Summary 阅读会话历史
// @Description 最近的阅读会话，可按文档过滤
// @Tags 阅读会话
// @Produce json
// @Security ApiKeyAuth
// @Param documentId query string false "文档ID"
// @Param limit query int false "返回数量" default(100)
// @Success 200 {object} map[string]interface{}
// @Router /reading-sessions [get]
func (c *ReadingSessionController) List(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	limit := util.QueryInt(ctx, "limit", 100)
	sessions, err := c.ReadingSessionService.GetRecentSessions(ctx.Request.Context(), user.UserID, ctx.Query("documentId"), limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"sessions": sessions})
}
