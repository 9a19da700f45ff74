package util

import "errors"

var (
	ErrDocumentNotFound   = errors.New("document not found")
	ErrDocumentIDRequired = errors.New("documentId is required")
	ErrInvalidAction      = errors.New("action must be one of: start, update, end")
	ErrProgressOutOfRange = errors.New("progress must be between 0 and 100")
	ErrNegativeCounter    = errors.New("wordsRead and timeSpent must not be negative")
	ErrExportNotFound     = errors.New("export token not found or expired")
	ErrFileTooLarge       = errors.New("file too large")
	ErrUnsupportedFile    = errors.New("unsupported file type")
)

// IsValidationError 属于客户端输入错误的哨兵错误
func IsValidationError(err error) bool {
	return errors.Is(err, ErrDocumentIDRequired) ||
		errors.Is(err, ErrInvalidAction) ||
		errors.Is(err, ErrProgressOutOfRange) ||
		errors.Is(err, ErrNegativeCounter)
}
