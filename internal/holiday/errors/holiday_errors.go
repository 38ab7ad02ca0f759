package errors

import (
	"net/http"

	"aegira/internal/shared/apperror"
)

var (
	ErrInvalidCompanyID  = apperror.New("INVALID_COMPANY_ID", "Format company_id tidak valid", http.StatusBadRequest)
	ErrInvalidHolidayID  = apperror.New("INVALID_HOLIDAY_ID", "Format holiday_id tidak valid", http.StatusBadRequest)
	ErrInvalidDateFormat = apperror.New("INVALID_DATE_FORMAT", "Format tanggal harus YYYY-MM-DD", http.StatusBadRequest)
	ErrHolidayExists     = apperror.New("HOLIDAY_EXISTS", "Tanggal tersebut sudah terdaftar sebagai hari libur", http.StatusConflict)
	ErrManageNotAllowed  = apperror.New("HOLIDAY_MANAGE_NOT_ALLOWED", "Anda tidak punya izin mengelola hari libur", http.StatusForbidden)
)
