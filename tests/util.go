package testutil

import (
	"context"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ofertaeducativa/catalogo/core"
	"github.com/ofertaeducativa/catalogo/core/auth"
	"github.com/ofertaeducativa/catalogo/core/catalog"
	logsvc "github.com/ofertaeducativa/catalogo/services/logger"
)

// NewValidator returns a validator with every application validation registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	catalog.InitValidators(validate, translator)
	auth.InitValidators(validate, translator)
	return validate, translator
}

// NewLogger returns a logger (not reporting to rollbar) and its recorded entries.
func NewLogger() (*logsvc.RollbarLogger, *observer.ObservedLogs) {
	obs, logs := observer.New(zapcore.DebugLevel)
	return logsvc.NewRollbarLogger(zap.New(obs), &core.Config{Env: "TEST"}), logs
}

func CreateInstitution(t *testing.T, repo catalog.Repository, name string) catalog.Institution {
	inst, err := repo.CreateInstitution(context.Background(), catalog.Institution{
		Name:    name,
		Address: "Av. Siempre Viva 742",
		Email:   "info@test.edu.ar",
	})
	if err != nil {
		t.Fatalf("createInstitution() failed: %v", err)
	}
	return inst
}

func CreateUser(t *testing.T, repo auth.Repository, email, pwd string, institutionID int64) auth.User {
	usr := auth.User{
		Email:         email,
		InstitutionID: institutionID,
	}
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func CreateCourse(
	t *testing.T,
	repo catalog.Repository,
	name string,
	level catalog.Level,
	duration catalog.Duration,
	req catalog.Requirement,
	institutionID int64,
) catalog.Course {
	crs, err := repo.CreateCourse(context.Background(), catalog.Course{
		Name:          name,
		Level:         level,
		Duration:      duration,
		Requirement:   req,
		InstitutionID: institutionID,
	})
	if err != nil {
		t.Fatalf("createCourse() failed: %v", err)
	}
	return crs
}

func CreateSede(t *testing.T, repo catalog.Repository, address, city string, institutionID int64) catalog.Sede {
	sede, err := repo.CreateSede(context.Background(), catalog.Sede{
		Address:       address,
		City:          city,
		InstitutionID: institutionID,
	})
	if err != nil {
		t.Fatalf("createSede() failed: %v", err)
	}
	return sede
}

// StrPtr is handy to build partial updates.
func StrPtr(s string) *string {
	return &s
}
