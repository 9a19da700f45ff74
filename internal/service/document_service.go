package service

import (
	"chapterflux_backend/internal/model"
	"chapterflux_backend/internal/repository"
	"chapterflux_backend/internal/util"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CreateDocumentRequest 创建文档记录
// swagger:model CreateDocumentRequest
type CreateDocumentRequest struct {
	Title     string          `json:"title" binding:"required,max=255"`
	WordCount int             `json:"wordCount" binding:"min=0"`
	Language  string          `json:"language" binding:"omitempty,max=16"`
	Chapters  []model.Chapter `json:"chapters" binding:"omitempty,dive"`
}

// UploadedFile 上传文件的元信息
type UploadedFile struct {
	Name        string
	Size        int64
	ContentType string
	Reader      io.Reader
}

type DocumentService struct {
	DocumentRepo *repository.DocumentRepository
	Storage      *StorageService
	MaxUpload    int64
}

func NewDocumentService(documentRepo *repository.DocumentRepository, storage *StorageService, maxUploadMB int64) *DocumentService {
	return &DocumentService{
		DocumentRepo: documentRepo,
		Storage:      storage,
		MaxUpload:    maxUploadMB << 20,
	}
}

func (s *DocumentService) Create(ctx context.Context, userID uint, req CreateDocumentRequest) (*model.Document, error) {
	doc := newDocument(userID, req)
	if err := s.DocumentRepo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	return doc, nil
}

// Upload 保存原文件并创建文档记录，文本提取由外部服务完成
func (s *DocumentService) Upload(ctx context.Context, userID uint, title string, file UploadedFile) (*model.Document, error) {
	if s.MaxUpload > 0 && file.Size > s.MaxUpload {
		return nil, util.ErrFileTooLarge
	}
	if !util.HasAllowedExtension(file.Name, util.AllowedDocumentExtensions) {
		return nil, util.ErrUnsupportedFile
	}

	// 读取文件头判断真实类型，再拼回 reader
	head := make([]byte, 512)
	n, err := io.ReadFull(file.Reader, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	head = head[:n]
	mimeType, err := util.ValidateMimeType(strings.NewReader(string(head)), util.AllowedDocumentTypes)
	if err != nil {
		return nil, util.ErrUnsupportedFile
	}

	if strings.TrimSpace(title) == "" {
		title = strings.TrimSuffix(filepath.Base(file.Name), filepath.Ext(file.Name))
	}

	doc := newDocument(userID, CreateDocumentRequest{Title: title})
	doc.ID = model.GenerateUUID()
	doc.MimeType = mimeType
	doc.Size = file.Size
	meta := doc.Metadata.Data()
	meta.OriginalName = filepath.Base(file.Name)
	doc.Metadata = datatypes.NewJSONType(meta)

	objectName := fmt.Sprintf("documents/%d/%s%s", userID, doc.ID, strings.ToLower(filepath.Ext(file.Name)))
	body := io.MultiReader(strings.NewReader(string(head)), file.Reader)
	url, err := s.Storage.Upload(ctx, objectName, body, file.Size, mimeType)
	if err != nil {
		return nil, fmt.Errorf("store document file: %w", err)
	}
	doc.FileURL = url

	if err := s.DocumentRepo.Create(ctx, doc); err != nil {
		// 记录写入失败时清理已上传的文件
		_ = s.Storage.Delete(ctx, objectName)
		return nil, fmt.Errorf("create document: %w", err)
	}
	return doc, nil
}

func (s *DocumentService) List(ctx context.Context, userID uint) ([]model.Document, error) {
	return s.DocumentRepo.FindByUserID(ctx, userID)
}

func (s *DocumentService) Get(ctx context.Context, userID uint, id string) (*model.Document, error) {
	doc, err := s.DocumentRepo.FindByIDAndUserID(ctx, id, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrDocumentNotFound
	}
	return doc, err
}

func newDocument(userID uint, req CreateDocumentRequest) *model.Document {
	chapters := req.Chapters
	if chapters == nil {
		chapters = []model.Chapter{}
	}

	wordCount := req.WordCount
	if wordCount == 0 {
		for _, c := range chapters {
			wordCount += c.WordCount
		}
	}

	return &model.Document{
		UserID:    userID,
		Title:     req.Title,
		WordCount: wordCount,
		Chapters:  datatypes.NewJSONType(chapters),
		Metadata: datatypes.NewJSONType(model.DocumentMetadata{
			Version:  model.DocumentMetadataVersion,
			Language: req.Language,
		}),
	}
}
