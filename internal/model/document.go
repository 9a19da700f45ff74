package model

import (
	"gorm.io/datatypes"
)

// DocumentMetadataVersion 当前 Metadata 结构的版本号
const DocumentMetadataVersion = 1

// Chapter 文档章节
type Chapter struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	WordCount int    `json:"wordCount"`
}

// DocumentMetadata 文档附加信息，结构变化时递增 Version
type DocumentMetadata struct {
	Version      int    `json:"version"`
	OriginalName string `json:"originalName,omitempty"`
	Language     string `json:"language,omitempty"`
	PageCount    int    `json:"pageCount,omitempty"`
}

// Document 用户上传的文档，阅读会话结束时回写进度
// swagger:model Document
type Document struct {
	UUIDBase
	UserID    uint                                 `gorm:"index;not null" json:"userId"`
	Title     string                               `gorm:"size:255;not null" json:"title"`
	FileURL   string                               `gorm:"size:512" json:"fileUrl,omitempty"`
	MimeType  string                               `gorm:"size:100" json:"mimeType,omitempty"`
	Size      int64                                `gorm:"default:0" json:"size"`
	WordCount int                                  `gorm:"default:0" json:"wordCount"`
	Progress  float64                              `gorm:"default:0" json:"progress"`
	Chapters  datatypes.JSONType[[]Chapter]        `json:"chapters"`
	Metadata  datatypes.JSONType[DocumentMetadata] `json:"metadata"`
}

func (Document) TableName() string {
	return "documents"
}

// IsCompleted 进度达到 100 视为读完
func (d *Document) IsCompleted() bool {
	return d.Progress >= 100
}
