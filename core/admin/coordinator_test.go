package admin_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ofertaeducativa/catalogo/core"
	"github.com/ofertaeducativa/catalogo/core/admin"
	"github.com/ofertaeducativa/catalogo/core/auth"
	"github.com/ofertaeducativa/catalogo/core/catalog"
	inmemdb "github.com/ofertaeducativa/catalogo/storage/database/inmem"
	testutil "github.com/ofertaeducativa/catalogo/tests"
)

const pwd = "S3cret!pass"

var errConnection = errors.New("connection refused")

// flakyRepository fails every write while `down` is set.
type flakyRepository struct {
	catalog.Repository
	down bool
}

func (repo *flakyRepository) CreateCourse(ctx context.Context, c catalog.Course) (catalog.Course, error) {
	if repo.down {
		return catalog.Course{}, errConnection
	}
	return repo.Repository.CreateCourse(ctx, c)
}

func (repo *flakyRepository) DeleteSede(ctx context.Context, id int64) error {
	if repo.down {
		return errConnection
	}
	return repo.Repository.DeleteSede(ctx, id)
}

type fixture struct {
	repo  *flakyRepository
	guard *auth.Guard
	coord *admin.Coordinator
	logs  *observer.ObservedLogs
	utn   catalog.Institution
	other catalog.Institution
	ctx   context.Context
}

func setup(t *testing.T) *fixture {
	db := inmemdb.Open()
	repo := &flakyRepository{Repository: inmemdb.NewCatalogRepository(db)}
	users := inmemdb.NewUserRepository(db)

	utn := testutil.CreateInstitution(t, repo, "UTN")
	other := testutil.CreateInstitution(t, repo, "ISFD 12")
	testutil.CreateUser(t, users, "admin@utn.edu.ar", pwd, utn.ID)
	testutil.CreateUser(t, users, "admin@isfd12.edu.ar", pwd, other.ID)

	validate, translator := testutil.NewValidator()
	logger, logs := testutil.NewLogger()
	guard := auth.NewGuard(users, "/login")

	return &fixture{
		repo:  repo,
		guard: guard,
		coord: admin.NewCoordinator(repo, guard, validate, translator, logger),
		logs:  logs,
		utn:   utn,
		other: other,
		ctx:   context.Background(),
	}
}

func (f *fixture) login(t *testing.T, email string) {
	_, err := f.guard.Login(f.ctx, email, pwd)
	require.NoError(t, err)
}

func (f *fixture) storedCourses(t *testing.T, institutionID int64) []catalog.Course {
	courses, err := f.repo.QueryCoursesByInstitution(f.ctx, institutionID)
	require.NoError(t, err)
	return courses
}

func newCourse() catalog.NewCourse {
	return catalog.NewCourse{
		Name:           "Licenciatura en Informática",
		Level:          "Universitario",
		DurationNumber: "4",
		DurationUnit:   "años",
		Requirement:    "Bachillerato",
	}
}

func TestCoordinator_requiresSession(t *testing.T) {
	f := setup(t)
	crs := testutil.CreateCourse(t, f.repo, "Ingeniería Civil", catalog.LevelUniversitario,
		catalog.Duration{Number: 5, Unit: catalog.UnitYears}, catalog.RequirementBachillerato, f.utn.ID)

	calls := map[string]func() error{
		"Courses":      func() error { _, err := f.coord.Courses(f.ctx); return err },
		"CreateCourse": func() error { _, err := f.coord.CreateCourse(f.ctx, newCourse()); return err },
		"UpdateCourse": func() error { _, err := f.coord.UpdateCourse(f.ctx, crs.ID, catalog.UpdateCourse{}); return err },
		"DeleteCourse": func() error { _, err := f.coord.DeleteCourse(f.ctx, crs.ID); return err },
		"Sedes":        func() error { _, err := f.coord.Sedes(f.ctx); return err },
		"CreateSede": func() error {
			_, err := f.coord.CreateSede(f.ctx, catalog.NewSede{Address: "Calle 1", City: "Rosario"})
			return err
		},
		"UpdateSede":        func() error { _, err := f.coord.UpdateSede(f.ctx, 1, catalog.UpdateSede{}); return err },
		"DeleteSede":        func() error { _, err := f.coord.DeleteSede(f.ctx, 1); return err },
		"Institution":       func() error { _, err := f.coord.Institution(f.ctx); return err },
		"UpdateInstitution": func() error { _, err := f.coord.UpdateInstitution(f.ctx, catalog.UpdateInstitution{}); return err },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			assert.True(t, auth.IsRedirect(call()))
		})
	}

	// nothing was written
	assert.Equal(t, []catalog.Course{crs}, f.storedCourses(t, f.utn.ID))
}

func TestCoordinator_CreateCourse(t *testing.T) {
	f := setup(t)
	f.login(t, "admin@utn.edu.ar")

	courses, err := f.coord.CreateCourse(f.ctx, newCourse())
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "Licenciatura en Informática", courses[0].Name)
	assert.Equal(t, catalog.LevelUniversitario, courses[0].Level)
	assert.Equal(t, catalog.Duration{Number: 4, Unit: catalog.UnitYears}, courses[0].Duration)
	assert.Equal(t, catalog.RequirementBachillerato, courses[0].Requirement)
	assert.Equal(t, f.utn.ID, courses[0].InstitutionID)
	assert.Equal(t, "UTN", courses[0].InstitutionName)

	listed, err := f.coord.Courses(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, courses, listed)
	assert.Equal(t, courses, f.storedCourses(t, f.utn.ID))
	assert.Empty(t, f.storedCourses(t, f.other.ID))
}

func TestCoordinator_CreateCourse_invalid(t *testing.T) {
	f := setup(t)
	f.login(t, "admin@utn.edu.ar")

	nc := newCourse()
	nc.Level = "Secundaria"
	_, err := f.coord.CreateCourse(f.ctx, nc)

	vErr, ok := errors.Cause(err).(*core.ValidationError)
	require.True(t, ok, "got %v", err)
	assert.True(t, vErr.HasField("nivel"))
	assert.Empty(t, f.storedCourses(t, f.utn.ID))
}

func TestCoordinator_UpdateCourse(t *testing.T) {
	f := setup(t)
	f.login(t, "admin@utn.edu.ar")
	courses, err := f.coord.CreateCourse(f.ctx, newCourse())
	require.NoError(t, err)
	id := courses[0].ID

	t.Run("partial update", func(t *testing.T) {
		courses, err := f.coord.UpdateCourse(f.ctx, id, catalog.UpdateCourse{
			DurationNumber: testutil.StrPtr("5"),
			Info:           testutil.StrPtr("Acreditada por CONEAU"),
		})
		require.NoError(t, err)
		require.Len(t, courses, 1)
		assert.Equal(t, catalog.Duration{Number: 5, Unit: catalog.UnitYears}, courses[0].Duration)
		assert.Equal(t, "Acreditada por CONEAU", courses[0].Info)
		assert.Equal(t, "Licenciatura en Informática", courses[0].Name)
	})

	t.Run("invalid update changes nothing", func(t *testing.T) {
		before := f.storedCourses(t, f.utn.ID)
		_, err := f.coord.UpdateCourse(f.ctx, id, catalog.UpdateCourse{
			Name:  testutil.StrPtr("Otro nombre"),
			Level: testutil.StrPtr("Secundaria"),
		})
		vErr, ok := errors.Cause(err).(*core.ValidationError)
		require.True(t, ok, "got %v", err)
		assert.True(t, vErr.HasField("nivel"))
		assert.Equal(t, before, f.storedCourses(t, f.utn.ID))
	})

	t.Run("blank name is rejected", func(t *testing.T) {
		before := f.storedCourses(t, f.utn.ID)
		_, err := f.coord.UpdateCourse(f.ctx, id, catalog.UpdateCourse{Name: testutil.StrPtr("   ")})
		vErr, ok := errors.Cause(err).(*core.ValidationError)
		require.True(t, ok, "got %v", err)
		assert.True(t, vErr.HasField("nombre"))
		assert.Equal(t, before, f.storedCourses(t, f.utn.ID))
	})

	t.Run("missing course", func(t *testing.T) {
		_, err := f.coord.UpdateCourse(f.ctx, 999, catalog.UpdateCourse{Name: testutil.StrPtr("x")})
		assert.True(t, core.IsNotFound(err))
	})
}

func TestCoordinator_DeleteCourse(t *testing.T) {
	f := setup(t)
	f.login(t, "admin@utn.edu.ar")
	_, err := f.coord.CreateCourse(f.ctx, newCourse())
	require.NoError(t, err)
	nc := newCourse()
	nc.Name = "Tecnicatura en Programación"
	courses, err := f.coord.CreateCourse(f.ctx, nc)
	require.NoError(t, err)
	require.Len(t, courses, 2)

	_, err = f.coord.DeleteCourse(f.ctx, 999)
	assert.True(t, core.IsNotFound(err))
	assert.Len(t, f.storedCourses(t, f.utn.ID), 2)

	courses, err = f.coord.DeleteCourse(f.ctx, courses[0].ID)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "Tecnicatura en Programación", courses[0].Name)
	assert.Len(t, f.storedCourses(t, f.utn.ID), 1)
}

func TestCoordinator_foreignRecords(t *testing.T) {
	f := setup(t)
	foreignCourse := testutil.CreateCourse(t, f.repo, "Profesorado de Inglés", catalog.LevelTerciario,
		catalog.Duration{Number: 4, Unit: catalog.UnitYears}, catalog.RequirementBachillerato, f.other.ID)
	foreignSede := testutil.CreateSede(t, f.repo, "San Martín 1000", "Rosario", f.other.ID)
	f.login(t, "admin@utn.edu.ar")

	_, err := f.coord.UpdateCourse(f.ctx, foreignCourse.ID, catalog.UpdateCourse{Name: testutil.StrPtr("Robado")})
	assert.True(t, core.IsNotFound(err))
	_, err = f.coord.DeleteCourse(f.ctx, foreignCourse.ID)
	assert.True(t, core.IsNotFound(err))
	_, err = f.coord.UpdateSede(f.ctx, foreignSede.ID, catalog.UpdateSede{City: testutil.StrPtr("Funes")})
	assert.True(t, core.IsNotFound(err))
	_, err = f.coord.DeleteSede(f.ctx, foreignSede.ID)
	assert.True(t, core.IsNotFound(err))

	assert.Equal(t, []catalog.Course{foreignCourse}, f.storedCourses(t, f.other.ID))
	sedes, err := f.repo.QuerySedesByInstitution(f.ctx, f.other.ID)
	require.NoError(t, err)
	assert.Equal(t, []catalog.Sede{foreignSede}, sedes)

	courses, err := f.coord.Courses(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, courses)
}

func TestCoordinator_Sedes(t *testing.T) {
	f := setup(t)
	f.login(t, "admin@utn.edu.ar")

	sedes, err := f.coord.Sedes(f.ctx)
	require.NoError(t, err)
	assert.NotNil(t, sedes)
	assert.Empty(t, sedes)

	sedes, err = f.coord.CreateSede(f.ctx, catalog.NewSede{Address: "Zeballos 1341", City: "Rosario", Web: "https://frro.utn.edu.ar"})
	require.NoError(t, err)
	require.Len(t, sedes, 1)
	assert.Equal(t, f.utn.ID, sedes[0].InstitutionID)

	_, err = f.coord.CreateSede(f.ctx, catalog.NewSede{Address: "Sin ciudad"})
	vErr, ok := errors.Cause(err).(*core.ValidationError)
	require.True(t, ok, "got %v", err)
	assert.True(t, vErr.HasField("ciudad"))

	sedes, err = f.coord.UpdateSede(f.ctx, sedes[0].ID, catalog.UpdateSede{Phone: testutil.StrPtr("0341 448-1871")})
	require.NoError(t, err)
	require.Len(t, sedes, 1)
	assert.Equal(t, "0341 448-1871", sedes[0].Phone)
	assert.Equal(t, "Zeballos 1341", sedes[0].Address)

	_, err = f.coord.UpdateSede(f.ctx, sedes[0].ID, catalog.UpdateSede{
		Address: testutil.StrPtr(""),
		City:    testutil.StrPtr("  "),
	})
	vErr, ok = errors.Cause(err).(*core.ValidationError)
	require.True(t, ok, "got %v", err)
	assert.True(t, vErr.HasField("direccion"))
	assert.True(t, vErr.HasField("ciudad"))
	stored, err := f.repo.GetSede(f.ctx, sedes[0].ID)
	require.NoError(t, err)
	assert.Equal(t, sedes[0], stored)

	sedes, err = f.coord.DeleteSede(f.ctx, sedes[0].ID)
	require.NoError(t, err)
	assert.Empty(t, sedes)

	_, err = f.coord.DeleteSede(f.ctx, 999)
	assert.True(t, core.IsNotFound(err))
}

func TestCoordinator_storageFailure(t *testing.T) {
	f := setup(t)
	f.login(t, "admin@utn.edu.ar")
	courses, err := f.coord.CreateCourse(f.ctx, newCourse())
	require.NoError(t, err)
	sedes, err := f.coord.CreateSede(f.ctx, catalog.NewSede{Address: "Zeballos 1341", City: "Rosario"})
	require.NoError(t, err)

	f.repo.down = true
	nc := newCourse()
	nc.Name = "Otra"
	_, err = f.coord.CreateCourse(f.ctx, nc)
	assert.True(t, core.IsStorage(err))
	_, err = f.coord.DeleteSede(f.ctx, sedes[0].ID)
	assert.True(t, core.IsStorage(err))

	// the failures are logged
	assert.Equal(t, 1, f.logs.FilterMessage("creating course").Len())
	assert.Equal(t, 1, f.logs.FilterMessage("deleting sede").Len())

	// and the admin lists are left untouched
	listed, err := f.coord.Courses(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, courses, listed)
	listedSedes, err := f.coord.Sedes(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, sedes, listedSedes)
}

func TestCoordinator_logoutResetsViewState(t *testing.T) {
	f := setup(t)
	f.login(t, "admin@utn.edu.ar")
	_, err := f.coord.CreateCourse(f.ctx, newCourse())
	require.NoError(t, err)

	f.guard.Logout()
	_, err = f.coord.Courses(f.ctx)
	assert.True(t, auth.IsRedirect(err))

	// another institution never sees the previous lists
	f.login(t, "admin@isfd12.edu.ar")
	courses, err := f.coord.Courses(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, courses)
}

func TestCoordinator_Institution(t *testing.T) {
	f := setup(t)
	f.login(t, "admin@utn.edu.ar")

	inst, err := f.coord.Institution(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, f.utn, inst)

	inst, err = f.coord.UpdateInstitution(f.ctx, catalog.UpdateInstitution{
		Phone: testutil.StrPtr("0341 448-1871"),
		Web:   testutil.StrPtr("https://www.frro.utn.edu.ar"),
	})
	require.NoError(t, err)
	assert.Equal(t, "0341 448-1871", inst.Phone)
	assert.Equal(t, "https://www.frro.utn.edu.ar", inst.Web)
	assert.Equal(t, "UTN", inst.Name)

	_, err = f.coord.UpdateInstitution(f.ctx, catalog.UpdateInstitution{Name: testutil.StrPtr(" ")})
	vErr, ok := errors.Cause(err).(*core.ValidationError)
	require.True(t, ok, "got %v", err)
	assert.True(t, vErr.HasField("nombre"))
	stored, err := f.repo.GetInstitution(f.ctx, f.utn.ID)
	require.NoError(t, err)
	assert.Equal(t, inst, stored)

	other, err := f.repo.GetInstitution(f.ctx, f.other.ID)
	require.NoError(t, err)
	assert.Equal(t, f.other, other)
}
