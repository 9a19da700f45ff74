package model

// UserRole 由外部认证服务签发在 JWT 中，本服务不保存用户表
type UserRole string

const (
	Reader UserRole = "reader"
	Admin  UserRole = "admin"
)
