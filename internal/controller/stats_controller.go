package controller

import (
	"chapterflux_backend/internal/service"
	"chapterflux_backend/internal/util"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type StatsController struct {
	StatsService  *service.StatsService
	ExportService *service.ExportService
}

func NewStatsController(statsService *service.StatsService, exportService *service.ExportService) *StatsController {
	return &StatsController{
		StatsService:  statsService,
		ExportService: exportService,
	}
}

// @Summary 获取用户阅读统计
// @Description 阅读速度、节省时间、测验均分、连续阅读、每周目标和成就
// @Tags 统计
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} util.ErrorResponse
// @Router /user/stats [get]
func (c *StatsController) GetUserStats(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	stats, err := c.StatsService.GetUserStats(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"stats": stats})
}

// @Summary 导出阅读统计
// @Description 生成统计快照并返回一次性下载链接
// @Tags 统计
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]interface{}
// @Router /user/stats/export [post]
func (c *StatsController) CreateExport(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	ticket, err := c.ExportService.CreateStatsExport(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"export": ticket})
}

// @Summary 下载统计快照
// @Description 令牌只能使用一次，过期后返回 404
// @Tags 统计
// @Produce json
// @Param token path string true "下载令牌"
// @Success 200 {file} file
// @Failure 404 {object} util.ErrorResponse
// @Router /exports/{token} [get]
func (c *StatsController) DownloadExport(ctx *gin.Context) {
	data, err := c.ExportService.Download(ctx.Request.Context(), ctx.Param("token"))
	if errors.Is(err, util.ErrExportNotFound) {
		util.Error(ctx, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "reading-stats.json"))
	ctx.Data(http.StatusOK, "application/json", data)
}
