package auth

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ofertaeducativa/catalogo/core"
	"github.com/ofertaeducativa/catalogo/core/catalog"
)

type Repository interface {
	CredentialStore
	// CreateUser returns ErrEmailExists when the email is taken.
	CreateUser(ctx context.Context, usr User) (User, error)
	UpdateUserPassword(ctx context.Context, id int64, hash []byte) error
}

// InstitutionGetter returns *core.NotFoundError when the institution does not exist.
type InstitutionGetter interface {
	GetInstitution(ctx context.Context, id int64) (catalog.Institution, error)
}

// Service manages credentials. It is used by the admin command line.
type Service struct {
	repo  Repository
	insts InstitutionGetter
}

func NewService(repo Repository, insts InstitutionGetter) *Service {
	return &Service{repo: repo, insts: insts}
}

// Create stores a new user bound to nu.InstitutionID. nu must be valid.
func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	inst, err := svc.insts.GetInstitution(ctx, nu.InstitutionID)
	if err != nil {
		if core.IsNotFound(err) {
			return User{}, core.NewValidationError(err, core.FieldError{Field: "institucion_id", Error: "la institución no existe"})
		}
		return User{}, errors.Wrap(err, "checking institution")
	}

	usr := User{
		Email:           core.CleanString(nu.Email, true /* lower */),
		InstitutionID:   nu.InstitutionID,
		InstitutionName: inst.Name,
	}
	if err = usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}

	usr, err = svc.repo.CreateUser(ctx, usr)
	if err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return User{}, core.NewValidationError(err, core.FieldError{Field: "email", Error: "ya existe un usuario con este email"})
		}
		return User{}, err
	}
	return usr, nil
}

// ResetPassword replaces the password of the user identified by rp.Email. rp must be valid.
func (svc *Service) ResetPassword(ctx context.Context, rp ResetUserPassword) error {
	usr, err := svc.repo.GetUserByEmail(ctx, core.CleanString(rp.Email, true /* lower */))
	if err != nil {
		return err
	}
	if err = usr.SetPassword(rp.Password); err != nil {
		return err
	}
	return svc.repo.UpdateUserPassword(ctx, usr.ID, usr.PasswordHash)
}
