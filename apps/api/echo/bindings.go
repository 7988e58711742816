package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ofertaeducativa/catalogo/core"
	"github.com/ofertaeducativa/catalogo/core/catalog"
)

// CourseQuery binds the course filter query parameters.
// An empty or missing parameter (or catalog.AllValues) leaves its predicate unset.
type CourseQuery struct {
	Level       string
	Requirement string
	Institution string
	Duration    string
}

func (q *CourseQuery) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	q.Level = core.CleanString(data.Get(string(catalog.FieldLevel)))
	q.Requirement = core.CleanString(data.Get(string(catalog.FieldRequirement)))
	q.Institution = core.CleanString(data.Get(string(catalog.FieldInstitution)))
	q.Duration = core.CleanString(data.Get(string(catalog.FieldDuration)))
}

// Filter builds a catalog.Filter holding every supplied predicate.
func (q CourseQuery) Filter() (*catalog.Filter, error) {
	var flds []core.FieldError
	if q.Level != "" && q.Level != catalog.AllValues && !catalog.Level(q.Level).Valid() {
		flds = append(flds, core.FieldError{Field: string(catalog.FieldLevel), Error: "nivel desconocido"})
	}
	if q.Requirement != "" && q.Requirement != catalog.AllValues && !catalog.Requirement(q.Requirement).Valid() {
		flds = append(flds, core.FieldError{Field: string(catalog.FieldRequirement), Error: "requisito desconocido"})
	}
	if q.Duration != "" && q.Duration != catalog.AllValues {
		if _, err := catalog.ParseDuration(q.Duration); err != nil {
			flds = append(flds, core.FieldError{Field: string(catalog.FieldDuration), Error: "duración inválida"})
		}
	}
	if len(flds) > 0 {
		return nil, core.NewValidationError(nil, flds...)
	}

	f := catalog.NewFilter()
	for field, value := range map[catalog.Field]string{
		catalog.FieldLevel:       q.Level,
		catalog.FieldRequirement: q.Requirement,
		catalog.FieldInstitution: q.Institution,
		catalog.FieldDuration:    q.Duration,
	} {
		if value == "" {
			continue
		}
		if err := f.SetFilter(field, value); err != nil {
			return nil, errors.Wrapf(err, "setting %s filter", field)
		}
	}
	return f, nil
}

// idParam parses the `:id` path parameter; malformed ids are reported as not found.
func idParam(ctx echo.Context) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}
