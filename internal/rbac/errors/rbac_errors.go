package errors

import (
	"net/http"

	"aegira/internal/shared/apperror"
)

var (
	ErrMissingIdentity = apperror.New("RBAC_MISSING_IDENTITY", "Identitas aktor tidak lengkap", http.StatusUnauthorized)
	ErrNotAllowed      = apperror.New("RBAC_NOT_ALLOWED", "Akses ditolak", http.StatusForbidden)
)
