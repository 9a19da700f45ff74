package controller

import (
	"chapterflux_backend/internal/service"
	"chapterflux_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AchievementController struct {
	AchievementService *service.AchievementService
	StatsService       *service.StatsService
}

func NewAchievementController(achievementService *service.AchievementService, statsService *service.StatsService) *AchievementController {
	return &AchievementController{
		AchievementService: achievementService,
		StatsService:       statsService,
	}
}

// @Summary 获取已解锁成就
// @Tags 成就系统
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]interface{}
// @Router /achievements [get]
func (c *AchievementController) GetUserAchievements(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	achievements, err := c.AchievementService.GetUserAchievements(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"achievements": achievements})
}

// @Summary 重新计算指定用户的成就
// @Description 管理员接口，重新计算统计并补发达到条件的成就
// @Tags 成就系统
// @Produce json
// @Security ApiKeyAuth
// @Param userId path int true "用户ID"
// @Success 200 {object} map[string]interface{}
// @Router /admin/users/{userId}/achievements/recompute [post]
func (c *AchievementController) Recompute(ctx *gin.Context) {
	userID := util.ParamUint(ctx, "userId")
	if userID == 0 {
		util.BadRequest(ctx, "Invalid user ID")
		return
	}

	stats, err := c.StatsService.GetUserStats(ctx.Request.Context(), userID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"achievements": stats.Achievements})
}
