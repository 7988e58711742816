package catalog

import (
	"github.com/pkg/errors"
)

// Field names a filterable Course attribute.
type Field string

const (
	FieldLevel       Field = "nivel"
	FieldRequirement Field = "requisitos_ingreso"
	FieldInstitution Field = "institucion"
	FieldDuration    Field = "duracion"
)

var Fields = []Field{FieldLevel, FieldRequirement, FieldInstitution, FieldDuration}

// ErrUnknownField is returned when filtering on a field that does not exist.
var ErrUnknownField = errors.New("unknown filter field")

// Predicates is the set of active equality predicates. A nil predicate is unset (matches all).
type Predicates struct {
	Level       *Level       `json:"nivel"`
	Requirement *Requirement `json:"requisitos_ingreso"`
	Institution *string      `json:"institucion"`
	Duration    *Duration    `json:"duracion"`
}

// Match reports whether `c` satisfies every set predicate.
func (p Predicates) Match(c Course) bool {
	if p.Level != nil && c.Level != *p.Level {
		return false
	}
	if p.Requirement != nil && c.Requirement != *p.Requirement {
		return false
	}
	if p.Institution != nil && c.InstitutionName != *p.Institution {
		return false
	}
	if p.Duration != nil && c.Duration != *p.Duration {
		return false
	}
	return true
}

func (p Predicates) IsEmpty() bool {
	return p.Level == nil && p.Requirement == nil && p.Institution == nil && p.Duration == nil
}

// Filter holds the authoritative Course set of a view and derives the visible subset.
// It is a view-state container: create one per view (or request) and mutate it only through its methods.
type Filter struct {
	all     []Course
	preds   Predicates
	visible []Course
}

func NewFilter() *Filter {
	return &Filter{all: []Course{}, visible: []Course{}}
}

// Load replaces the authoritative set with a snapshot of `courses` and recomputes the view.
func (f *Filter) Load(courses []Course) {
	f.all = make([]Course, len(courses))
	copy(f.all, courses)
	f.recompute()
}

// SetFilter sets an exact-match predicate on `field`; AllValues clears it.
func (f *Filter) SetFilter(field Field, value string) error {
	unset := value == AllValues

	switch field {
	case FieldLevel:
		if unset {
			f.preds.Level = nil
		} else {
			lvl := Level(value)
			f.preds.Level = &lvl
		}
	case FieldRequirement:
		if unset {
			f.preds.Requirement = nil
		} else {
			req := Requirement(value)
			f.preds.Requirement = &req
		}
	case FieldInstitution:
		if unset {
			f.preds.Institution = nil
		} else {
			name := value
			f.preds.Institution = &name
		}
	case FieldDuration:
		if unset {
			f.preds.Duration = nil
		} else {
			d, err := ParseDuration(value)
			if err != nil {
				return errors.Wrap(err, "setting duration filter")
			}
			f.preds.Duration = &d
		}
	default:
		return errors.Wrapf(ErrUnknownField, "%q", field)
	}

	f.recompute()
	return nil
}

// ClearAll unsets every predicate.
func (f *Filter) ClearAll() {
	f.preds = Predicates{}
	f.recompute()
}

// Visible returns the courses matching every set predicate, in load order. Never nil.
func (f *Filter) Visible() []Course {
	out := make([]Course, len(f.visible))
	copy(out, f.visible)
	return out
}

// Predicates returns a copy of the active predicates.
func (f *Filter) Predicates() Predicates {
	p := Predicates{}
	if f.preds.Level != nil {
		v := *f.preds.Level
		p.Level = &v
	}
	if f.preds.Requirement != nil {
		v := *f.preds.Requirement
		p.Requirement = &v
	}
	if f.preds.Institution != nil {
		v := *f.preds.Institution
		p.Institution = &v
	}
	if f.preds.Duration != nil {
		v := *f.preds.Duration
		p.Duration = &v
	}
	return p
}

func (f *Filter) recompute() {
	visible := make([]Course, 0, len(f.all))
	for _, c := range f.all {
		if f.preds.Match(c) {
			visible = append(visible, c)
		}
	}
	f.visible = visible
}
