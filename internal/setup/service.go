package setup

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"church-service/internal/model"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// InitializeRequest is the payload for the one-time system initialization.
type InitializeRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	FirstName  string `json:"first_name" validate:"required"`
	LastName   string `json:"last_name" validate:"required"`
	ChurchName string `json:"church_name" validate:"required"`
}

// Store is the persistence boundary for the setup flow. CreateChurchWithAdmin
// must perform the initialized re-check and both inserts as one atomic unit,
// serialized across concurrent callers, and return ErrAlreadyInitialized when
// the re-check finds an existing super admin.
type Store interface {
	SuperAdminCount(ctx context.Context) (int64, error)
	CreateChurchWithAdmin(ctx context.Context, church *model.Church, admin *model.User) error
}

// Service drives the system from uninitialized to initialized exactly once.
type Service struct {
	store    Store
	validate *validator.Validate
}

func NewService(store Store) *Service {
	v := validator.New()

	// Report violations under the JSON field names the client sent
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Service{store: store, validate: v}
}

// Status reports whether the system has been initialized, i.e. whether at
// least one super admin user exists. Pure read, no side effects.
func (s *Service) Status(ctx context.Context) (bool, error) {
	count, err := s.store.SuperAdminCount(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Initialize creates the first church and its super admin user. It fails with
// *ValidationError on a malformed request and ErrAlreadyInitialized when a
// super admin already exists; either way no records are created. On success
// exactly one church and one user are persisted, atomically.
func (s *Service) Initialize(ctx context.Context, req *InitializeRequest) (*model.User, *model.Church, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, nil, err
	}

	// Cheap early rejection; the store repeats this check inside its own
	// critical section, which is what actually guarantees a single winner.
	initialized, err := s.Status(ctx)
	if err != nil {
		return nil, nil, err
	}
	if initialized {
		return nil, nil, ErrAlreadyInitialized
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	church := &model.Church{
		Name:   req.ChurchName,
		Slug:   model.SlugFromName(req.ChurchName),
		Email:  req.Email,
		Active: true,
	}

	admin := &model.User{
		Email:     req.Email,
		Password:  string(hashed),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      model.RoleSuperAdmin,
		Active:    true,
	}

	if err := s.store.CreateChurchWithAdmin(ctx, church, admin); err != nil {
		return nil, nil, err
	}

	return admin, church, nil
}

func (s *Service) validateRequest(req *InitializeRequest) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Field: fe.Field(),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		})
	}
	return &ValidationError{Fields: fields}
}
