package catalog

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCourses() []Course {
	return []Course{
		{ID: 1, Name: "Licenciatura en Informática", Level: LevelUniversitario, Duration: Duration{4, UnitYears}, Requirement: RequirementBachillerato, InstitutionName: "UTN"},
		{ID: 2, Name: "Técnico en Redes", Level: LevelTerciario, Duration: Duration{3, UnitYears}, Requirement: RequirementBachillerato, InstitutionName: "ISFD 12"},
		{ID: 3, Name: "Bachiller en Economía", Level: LevelBachillerato, Duration: Duration{3, UnitYears}, Requirement: RequirementCicloBasico, InstitutionName: "Escuela Normal"},
		{ID: 4, Name: "Maestría en Datos", Level: LevelPosgrado, Duration: Duration{12, UnitMonths}, Requirement: RequirementUniversitario, InstitutionName: "UTN"},
		{ID: 5, Name: "Ingeniería Civil", Level: LevelUniversitario, Duration: Duration{5, UnitYears}, Requirement: RequirementBachillerato, InstitutionName: "UTN"},
		{ID: 6, Name: "Diplomatura en Gestión", Level: LevelPosgrado, Duration: Duration{4, UnitMonths}, Requirement: RequirementUniversitario, InstitutionName: "ISFD 12"},
	}
}

func ids(courses []Course) []int64 {
	out := make([]int64, 0, len(courses))
	for _, c := range courses {
		out = append(out, c.ID)
	}
	return out
}

func TestFilter_SetFilter(t *testing.T) {
	tests := []struct {
		name    string
		filters [][2]string // field, value
		wantIDs []int64
	}{
		{name: "no filters", wantIDs: []int64{1, 2, 3, 4, 5, 6}},
		{name: "level", filters: [][2]string{{"nivel", "Universitario"}}, wantIDs: []int64{1, 5}},
		{name: "requirement", filters: [][2]string{{"requisitos_ingreso", "Universitario"}}, wantIDs: []int64{4, 6}},
		{name: "institution", filters: [][2]string{{"institucion", "ISFD 12"}}, wantIDs: []int64{2, 6}},
		{name: "duration", filters: [][2]string{{"duracion", "3 años"}}, wantIDs: []int64{2, 3}},
		{name: "duration is not a substring match", filters: [][2]string{{"duracion", "4 meses"}}, wantIDs: []int64{6}},
		{
			name:    "fields are ANDed",
			filters: [][2]string{{"nivel", "Universitario"}, {"institucion", "UTN"}, {"duracion", "5 años"}},
			wantIDs: []int64{5},
		},
		{name: "last value wins", filters: [][2]string{{"nivel", "Terciario"}, {"nivel", "Posgrado"}}, wantIDs: []int64{4, 6}},
		{name: "Todos clears", filters: [][2]string{{"nivel", "Terciario"}, {"nivel", AllValues}}, wantIDs: []int64{1, 2, 3, 4, 5, 6}},
		{
			name:    "clearing one predicate keeps the others",
			filters: [][2]string{{"nivel", "Posgrado"}, {"institucion", "UTN"}, {"nivel", AllValues}},
			wantIDs: []int64{1, 4, 5},
		},
		{name: "no match", filters: [][2]string{{"nivel", "Bachillerato"}, {"institucion", "UTN"}}, wantIDs: []int64{}},
		{name: "unknown enum value matches nothing", filters: [][2]string{{"nivel", "Secundaria"}}, wantIDs: []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFilter()
			f.Load(sampleCourses())
			for _, flt := range tt.filters {
				require.NoError(t, f.SetFilter(Field(flt[0]), flt[1]))
			}
			assert.Equal(t, tt.wantIDs, ids(f.Visible()))
		})
	}
}

func TestFilter_visibleIsSubset(t *testing.T) {
	all := sampleCourses()
	f := NewFilter()
	f.Load(all)
	require.NoError(t, f.SetFilter(FieldRequirement, string(RequirementBachillerato)))
	require.NoError(t, f.SetFilter(FieldInstitution, "UTN"))

	preds := f.Predicates()
	for _, c := range f.Visible() {
		assert.Contains(t, all, c)
		assert.True(t, preds.Match(c))
	}
	for _, c := range all {
		if preds.Match(c) {
			assert.Contains(t, f.Visible(), c)
		}
	}
}

func TestFilter_clearIsIdempotent(t *testing.T) {
	f := NewFilter()
	f.Load(sampleCourses())

	for i := 0; i < 3; i++ {
		require.NoError(t, f.SetFilter(FieldLevel, AllValues))
		assert.Equal(t, sampleCourses(), f.Visible())
		assert.True(t, f.Predicates().IsEmpty())
	}
}

func TestFilter_ClearAll(t *testing.T) {
	f := NewFilter()
	f.Load(sampleCourses())
	require.NoError(t, f.SetFilter(FieldLevel, string(LevelPosgrado)))
	require.NoError(t, f.SetFilter(FieldDuration, "4 meses"))
	require.Len(t, f.Visible(), 1)

	f.ClearAll()
	assert.Equal(t, sampleCourses(), f.Visible())
	assert.True(t, f.Predicates().IsEmpty())
}

func TestFilter_Load(t *testing.T) {
	f := NewFilter()
	require.NoError(t, f.SetFilter(FieldInstitution, "UTN"))
	assert.NotNil(t, f.Visible())
	assert.Empty(t, f.Visible())

	courses := sampleCourses()
	f.Load(courses)
	assert.Equal(t, []int64{1, 4, 5}, ids(f.Visible()), "predicates survive a reload")

	// the authoritative set is a snapshot
	courses[0].InstitutionName = "Otra"
	assert.Equal(t, []int64{1, 4, 5}, ids(f.Visible()))

	f.Load(nil)
	assert.NotNil(t, f.Visible())
	assert.Empty(t, f.Visible())
}

func TestFilter_Visible_returnsCopy(t *testing.T) {
	f := NewFilter()
	f.Load(sampleCourses())

	v := f.Visible()
	v[0].Name = "changed"
	assert.Equal(t, "Licenciatura en Informática", f.Visible()[0].Name)
}

func TestFilter_SetFilter_errors(t *testing.T) {
	f := NewFilter()
	f.Load(sampleCourses())
	require.NoError(t, f.SetFilter(FieldLevel, string(LevelUniversitario)))

	err := f.SetFilter(Field("ciudad"), "Rosario")
	require.Error(t, err)
	assert.Equal(t, ErrUnknownField, errors.Cause(err))

	for _, val := range []string{"4", "cuatro años", "13 años", "4 semanas", ""} {
		err = f.SetFilter(FieldDuration, val)
		assert.True(t, IsInvalidDuration(err), "value %q", val)
	}

	// failed calls leave the predicates untouched
	assert.Equal(t, []int64{1, 5}, ids(f.Visible()))
	assert.Nil(t, f.Predicates().Duration)
}

func TestFilter_Predicates_returnsCopy(t *testing.T) {
	f := NewFilter()
	require.NoError(t, f.SetFilter(FieldLevel, string(LevelTerciario)))

	p := f.Predicates()
	*p.Level = LevelPosgrado
	assert.Equal(t, LevelTerciario, *f.Predicates().Level)
}
