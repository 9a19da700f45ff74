package controller

import (
	"chapterflux_backend/internal/service"
	"chapterflux_backend/internal/util"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type DocumentController struct {
	DocumentService *service.DocumentService
}

func NewDocumentController(documentService *service.DocumentService) *DocumentController {
	return &DocumentController{DocumentService: documentService}
}

// @Summary 创建文档
// @Tags 文档
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.CreateDocumentRequest true "文档信息"
// @Success 201 {object} map[string]interface{}
// @Router /documents [post]
func (c *DocumentController) Create(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CreateDocumentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.ValidationFailed(ctx, err)
		return
	}

	doc, err := c.DocumentService.Create(ctx.Request.Context(), user.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{"document": doc})
}

// @Summary 上传文档文件
// @Description 支持 pdf、图片和纯文本
// @Tags 文档
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param file formData file true "文档文件"
// @Param title formData string false "标题"
// @Success 201 {object} map[string]interface{}
// @Router /documents/upload [post]
func (c *DocumentController) Upload(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	doc, err := c.DocumentService.Upload(ctx.Request.Context(), user.UserID, ctx.PostForm("title"), service.UploadedFile{
		Name:        fileHeader.Filename,
		Size:        fileHeader.Size,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Reader:      file,
	})
	switch {
	case errors.Is(err, util.ErrFileTooLarge):
		util.Error(ctx, http.StatusRequestEntityTooLarge, err.Error())
		return
	case errors.Is(err, util.ErrUnsupportedFile):
		util.BadRequest(ctx, err.Error())
		return
	case err != nil:
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{"document": doc})
}

// @Summary 文档列表
// @Tags 文档
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]interface{}
// @Router /documents [get]
func (c *DocumentController) List(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	docs, err := c.DocumentService.List(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"documents": docs})
}

// @Summary 文档详情
// @Tags 文档
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "文档ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} util.ErrorResponse
// @Router /documents/{id} [get]
func (c *DocumentController) Get(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	doc, err := c.DocumentService.Get(ctx.Request.Context(), user.UserID, ctx.Param("id"))
	if errors.Is(err, util.ErrDocumentNotFound) {
		util.NotFound(ctx)
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"document": doc})
}
