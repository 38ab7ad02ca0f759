package auth_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"aegira/internal/auth"
	autherrors "aegira/internal/auth/errors"
	"aegira/internal/authz"
	"aegira/internal/domain"
	"aegira/internal/worker"
	workererrors "aegira/internal/worker/errors"
)

type fakeAuthRepository struct {
	createFn     func(ctx context.Context, user *auth.User) error
	getByEmailFn func(ctx context.Context, email string) (*auth.User, error)
	getByIDFn    func(ctx context.Context, id uuid.UUID) (*auth.User, error)
}

func (f *fakeAuthRepository) Create(ctx context.Context, user *auth.User) error {
	return f.createFn(ctx, user)
}

func (f *fakeAuthRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return f.getByEmailFn(ctx, email)
}

func (f *fakeAuthRepository) GetByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	return f.getByIDFn(ctx, id)
}

type fakeRBACService struct {
	loaded []string
}

func (f *fakeRBACService) LoadCompanyPolicy(companyID string) error {
	f.loaded = append(f.loaded, companyID)
	return nil
}

func (f *fakeRBACService) Enforce(req domain.EnforceRequest) (bool, error) {
	return false, nil
}

func (f *fakeRBACService) Resolve(ctx context.Context, companyID, workerID string) (authz.Context, error) {
	return authz.Context{ActorID: workerID}, nil
}

func (f *fakeRBACService) ListRoles(ctx context.Context, companyID string) ([]domain.RoleResponse, error) {
	return nil, nil
}

func (f *fakeRBACService) ListPermissions(ctx context.Context) ([]domain.PermissionResponse, error) {
	return nil, nil
}

type fakeWorkerRepository struct {
	findByIDFn func(ctx context.Context, companyID, id string) (*worker.Worker, error)
}

func (f *fakeWorkerRepository) WithTx(tx *sql.Tx) worker.Repository { return f }

func (f *fakeWorkerRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*worker.Worker, error) {
	return f.findByIDFn(ctx, companyID, id)
}

func (f *fakeWorkerRepository) FindActiveByCompany(ctx context.Context, companyID string) ([]worker.Worker, error) {
	return nil, nil
}

func (f *fakeWorkerRepository) FindActiveByTeam(ctx context.Context, companyID, teamID string) ([]worker.Worker, error) {
	return nil, nil
}

func (f *fakeWorkerRepository) SetCheckinCount(ctx context.Context, companyID, id string, count int64) error {
	return nil
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()

	password := "password123"
	pw, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	userID := uuid.New()
	companyID := uuid.New()
	workerID := uuid.New()
	mockUser := &auth.User{
		ID:        userID,
		WorkerID:  &workerID,
		CompanyID: companyID,
		Email:     "admin@example.com",
		Password:  string(pw),
		Role:      "WORKER",
	}

	t.Run("Success Login", func(t *testing.T) {
		rbacSvc := &fakeRBACService{}
		repo := &fakeAuthRepository{
			getByEmailFn: func(ctx context.Context, email string) (*auth.User, error) {
				return mockUser, nil
			},
		}
		service := auth.NewService(repo, rbacSvc, &fakeWorkerRepository{})

		token, refreshToken, resp, err := service.Login(ctx, mockUser.Email, password)

		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.NotEmpty(t, refreshToken)
		assert.Equal(t, mockUser.Email, resp.Email)
		assert.Equal(t, companyID.String(), resp.CompanyID)
		assert.Equal(t, workerID.String(), resp.WorkerID)
		assert.Equal(t, []string{companyID.String()}, rbacSvc.loaded)
	})

	t.Run("Wrong Password", func(t *testing.T) {
		repo := &fakeAuthRepository{
			getByEmailFn: func(ctx context.Context, email string) (*auth.User, error) {
				return mockUser, nil
			},
		}
		service := auth.NewService(repo, &fakeRBACService{}, &fakeWorkerRepository{})

		_, _, _, err := service.Login(ctx, mockUser.Email, "wrongpass")
		assert.Equal(t, autherrors.ErrInvalidCredentials, err)
	})

	t.Run("Unknown Email", func(t *testing.T) {
		repo := &fakeAuthRepository{
			getByEmailFn: func(ctx context.Context, email string) (*auth.User, error) {
				return nil, errors.New("not found")
			},
		}
		service := auth.NewService(repo, &fakeRBACService{}, &fakeWorkerRepository{})

		_, _, _, err := service.Login(ctx, "ghost@example.com", password)
		assert.Equal(t, autherrors.ErrInvalidCredentials, err)
	})
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Success Register", func(t *testing.T) {
		cID := uuid.New()
		wID := uuid.New()

		req := auth.RegisterRequest{
			CompanyID: cID.String(),
			WorkerID:  wID.String(),
			Email:     "user@example.com",
			Name:      "John Doe",
			Password:  "password123",
		}

		var created *auth.User
		repo := &fakeAuthRepository{
			createFn: func(ctx context.Context, user *auth.User) error {
				created = user
				return nil
			},
		}
		workerRepo := &fakeWorkerRepository{
			findByIDFn: func(ctx context.Context, companyID, id string) (*worker.Worker, error) {
				return &worker.Worker{ID: wID, CompanyID: cID, FullName: "John Doe"}, nil
			},
		}
		rbacSvc := &fakeRBACService{}
		service := auth.NewService(repo, rbacSvc, workerRepo)

		resp, err := service.Register(ctx, req)

		assert.NoError(t, err)
		assert.Equal(t, req.Email, resp.Email)
		assert.Equal(t, "WORKER", resp.Role)
		assert.Equal(t, cID.String(), resp.CompanyID)
		assert.NotNil(t, created)
		// Password is stored hashed, never verbatim.
		assert.NotEqual(t, req.Password, created.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte(req.Password)))
		assert.Equal(t, []string{cID.String()}, rbacSvc.loaded)
	})

	t.Run("Worker Not Found", func(t *testing.T) {
		req := auth.RegisterRequest{
			CompanyID: uuid.New().String(),
			WorkerID:  uuid.New().String(),
			Password:  "password123",
		}

		workerRepo := &fakeWorkerRepository{
			findByIDFn: func(ctx context.Context, companyID, id string) (*worker.Worker, error) {
				return nil, errors.New("not found")
			},
		}
		service := auth.NewService(&fakeAuthRepository{}, &fakeRBACService{}, workerRepo)

		_, err := service.Register(ctx, req)
		assert.Equal(t, workererrors.ErrWorkerNotFound, err)
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		cID := uuid.New()
		wID := uuid.New()
		req := auth.RegisterRequest{
			CompanyID: cID.String(),
			WorkerID:  wID.String(),
			Email:     "duplicate@example.com",
			Password:  "password123",
		}

		repo := &fakeAuthRepository{
			createFn: func(ctx context.Context, user *auth.User) error {
				return errors.New("duplicate key error")
			},
		}
		workerRepo := &fakeWorkerRepository{
			findByIDFn: func(ctx context.Context, companyID, id string) (*worker.Worker, error) {
				return &worker.Worker{ID: wID, CompanyID: cID}, nil
			},
		}
		service := auth.NewService(repo, &fakeRBACService{}, workerRepo)

		_, err := service.Register(ctx, req)
		assert.Equal(t, autherrors.ErrEmailAlreadyRegistered, err)
	})
}
