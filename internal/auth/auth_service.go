package auth

import (
	"context"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	autherrors "aegira/internal/auth/errors"
	"aegira/internal/rbac"
	"aegira/internal/worker"
	workererrors "aegira/internal/worker/errors"
)

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, resp AuthResponse, err error)

	RefreshToken(ctx context.Context, refreshToken string) (newAccessToken, newRefreshToken string, resp AuthResponse, err error)

	GetMe(ctx context.Context, userID string) (*AuthResponse, error)

	Register(ctx context.Context, req RegisterRequest) (AuthResponse, error)
}

type service struct {
	repo       Repository
	rbac       rbac.Service
	workerRepo worker.Repository
}

func NewService(repo Repository, rbac rbac.Service, workerRepo worker.Repository) Service {
	return &service{repo: repo, rbac: rbac, workerRepo: workerRepo}
}

func (s *service) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, resp AuthResponse, err error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	// Warm Casbin untuk company ini agar enforce pertama tidak dingin.
	if err := s.rbac.LoadCompanyPolicy(user.CompanyID.String()); err != nil {
		return "", "", AuthResponse{}, err
	}

	workerID := ""
	if user.WorkerID != nil {
		workerID = user.WorkerID.String()
	}

	accessToken, _ = s.generateToken(user.ID.String(), workerID, user.CompanyID.String(), user.Role, time.Minute*15)
	refreshToken, _ = s.generateToken(user.ID.String(), workerID, user.CompanyID.String(), user.Role, time.Hour*24*7)

	return accessToken, refreshToken, AuthResponse{
		ID:        user.ID.String(),
		CompanyID: user.CompanyID.String(),
		WorkerID:  workerID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
	}, nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, string, AuthResponse, error) {
	token, err := jwt.Parse(refreshToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, autherrors.ErrInvalidToken
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})

	if err != nil || !token.Valid {
		return "", "", AuthResponse{}, autherrors.ErrInvalidRefreshToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", AuthResponse{}, autherrors.ErrInvalidToken
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return "", "", AuthResponse{}, autherrors.ErrInvalidToken
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrInvalidUserID
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrUserNotFound
	}

	workerID := ""
	if user.WorkerID != nil {
		workerID = user.WorkerID.String()
	}

	newAccessToken, err := s.generateToken(user.ID.String(), workerID, user.CompanyID.String(), user.Role, time.Minute*15)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}

	newRefreshToken, err := s.generateToken(user.ID.String(), workerID, user.CompanyID.String(), user.Role, time.Hour*24*7)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}

	return newAccessToken, newRefreshToken, AuthResponse{
		ID:        user.ID.String(),
		CompanyID: user.CompanyID.String(),
		WorkerID:  workerID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
	}, nil
}

func (s *service) GetMe(ctx context.Context, userID string) (*AuthResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, autherrors.ErrInvalidUserID
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, autherrors.ErrUserNotFound
	}

	workerID := ""
	if u.WorkerID != nil {
		workerID = u.WorkerID.String()
	}

	return &AuthResponse{
		ID:        u.ID.String(),
		CompanyID: u.CompanyID.String(),
		WorkerID:  workerID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
	}, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResponse{}, err
	}

	wID, err := uuid.Parse(req.WorkerID)
	if err != nil {
		return AuthResponse{}, workererrors.ErrInvalidWorkerID
	}
	w, err := s.workerRepo.FindByIDAndCompany(ctx, req.CompanyID, wID.String())
	if err != nil {
		return AuthResponse{}, workererrors.ErrWorkerNotFound
	}

	user := &User{
		ID:        uuid.New(),
		WorkerID:  &wID,
		CompanyID: w.CompanyID,
		Email:     req.Email,
		Name:      req.Name,
		Password:  string(hashed),
		IsActive:  true,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return AuthResponse{}, autherrors.ErrEmailAlreadyRegistered
	}

	if err := s.rbac.LoadCompanyPolicy(w.CompanyID.String()); err != nil {
		return AuthResponse{}, err
	}

	return AuthResponse{
		ID:        user.ID.String(),
		CompanyID: user.CompanyID.String(),
		WorkerID:  wID.String(),
		Email:     user.Email,
		Name:      user.Name,
		Role:      "WORKER",
	}, nil
}

func (s *service) generateToken(userID, workerID, companyID, role string, expiry time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":    userID,
		"worker_id":  workerID,
		"company_id": companyID,
		"role":       role,
		"exp":        time.Now().Add(expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}
