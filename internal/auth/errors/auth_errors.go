package errors

import (
	"net/http"

	"aegira/internal/shared/apperror"
)

var (
	ErrInvalidCredentials     = apperror.New("AUTH_FAILED", "Email atau password salah", http.StatusUnauthorized)
	ErrInvalidToken           = apperror.New("INVALID_TOKEN", "Token tidak valid", http.StatusUnauthorized)
	ErrTokenExpired           = apperror.New("TOKEN_EXPIRED", "Token sudah kedaluwarsa", http.StatusUnauthorized)
	ErrInvalidRefreshToken    = apperror.New("INVALID_REFRESH_TOKEN", "Refresh token tidak valid", http.StatusUnauthorized)
	ErrInvalidUserID          = apperror.New("INVALID_USER_ID", "Format user_id tidak valid", http.StatusBadRequest)
	ErrUserNotFound           = apperror.New("USER_NOT_FOUND", "User tidak ditemukan", http.StatusNotFound)
	ErrTokenGenerationFailed  = apperror.New("TOKEN_GENERATION_FAILED", "Gagal membuat token", http.StatusInternalServerError)
	ErrEmailAlreadyRegistered = apperror.New("EMAIL_ALREADY_REGISTERED", "Email sudah terdaftar", http.StatusConflict)
	ErrForbidden              = apperror.New("FORBIDDEN", "Akses ditolak", http.StatusForbidden)
)
