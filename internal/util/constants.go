package util

const DateFormat = "2006-01-02"

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 文件上传相关常量
const (
	MimeImage       = "image/"
	MimePDF         = "application/pdf"
	MimeText        = "text/plain"
	MimeOctetStream = "application/octet-stream"
)

var (
	AllowedDocumentTypes      = []string{MimePDF, MimeImage, MimeText}
	AllowedDocumentExtensions = []string{".pdf", ".png", ".jpg", ".jpeg", ".webp", ".txt", ".md"}
)
