package catalog

import (
	"context"

	"github.com/pkg/errors"
)

// resource names used in core.NotFoundError
const (
	ResourceInstitution = "institucion"
	ResourceCourse      = "curso"
	ResourceSede        = "sede"
)

// Repository is the persistence gateway for institutions, courses and sedes.
// Implementations return *core.NotFoundError for missing records and wrap every other failure.
// Queries return records in insertion (id) order.
type Repository interface {
	QueryInstitutions(ctx context.Context) ([]Institution, error)
	// QueryInstitutionNames returns the distinct institution names.
	QueryInstitutionNames(ctx context.Context) ([]string, error)
	GetInstitution(ctx context.Context, id int64) (Institution, error)
	CreateInstitution(ctx context.Context, inst Institution) (Institution, error)
	UpdateInstitution(ctx context.Context, inst Institution) (Institution, error)

	// QueryCourses returns every course with its institution name resolved.
	QueryCourses(ctx context.Context) ([]Course, error)
	QueryCoursesByInstitution(ctx context.Context, institutionID int64) ([]Course, error)
	GetCourse(ctx context.Context, id int64) (Course, error)
	CreateCourse(ctx context.Context, c Course) (Course, error)
	UpdateCourse(ctx context.Context, c Course) (Course, error)
	DeleteCourse(ctx context.Context, id int64) error

	QuerySedesByInstitution(ctx context.Context, institutionID int64) ([]Sede, error)
	GetSede(ctx context.Context, id int64) (Sede, error)
	CreateSede(ctx context.Context, s Sede) (Sede, error)
	UpdateSede(ctx context.Context, s Sede) (Sede, error)
	DeleteSede(ctx context.Context, id int64) error
}

// Options lists the legal values of every filterable field, for building filter forms.
type Options struct {
	Levels          []Level        `json:"niveles"`
	DurationNumbers []int          `json:"duracion_numeros"`
	DurationUnits   []DurationUnit `json:"duracion_unidades"`
	Requirements    []Requirement  `json:"requisitos"`
	Institutions    []string       `json:"instituciones"`
}

// Service serves the public (unauthenticated) catalog.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Institutions(ctx context.Context) ([]Institution, error) {
	insts, err := svc.repo.QueryInstitutions(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying institutions")
	}
	if insts == nil {
		insts = []Institution{}
	}
	return insts, nil
}

func (svc *Service) InstitutionNames(ctx context.Context) ([]string, error) {
	names, err := svc.repo.QueryInstitutionNames(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying institution names")
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// Courses loads every course into `f` and returns the visible ones.
// The predicates already set on `f` are kept.
func (svc *Service) Courses(ctx context.Context, f *Filter) ([]Course, error) {
	courses, err := svc.repo.QueryCourses(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	f.Load(courses)
	return f.Visible(), nil
}

func (svc *Service) Options(ctx context.Context) (Options, error) {
	names, err := svc.InstitutionNames(ctx)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Levels:          Levels,
		DurationNumbers: DurationNumbers(),
		DurationUnits:   DurationUnits,
		Requirements:    Requirements,
		Institutions:    names,
	}, nil
}
