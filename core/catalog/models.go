package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// AllValues is the filter sentinel meaning "no predicate". It is never a legal enum value.
const AllValues = "Todos"

// Level is the academic level of a Course.
type Level string

const (
	LevelBachillerato  Level = "Bachillerato"
	LevelTerciario     Level = "Terciario"
	LevelUniversitario Level = "Universitario"
	LevelPosgrado      Level = "Posgrado"
)

var Levels = []Level{LevelBachillerato, LevelTerciario, LevelUniversitario, LevelPosgrado}

func (l Level) Valid() bool {
	for _, lvl := range Levels {
		if l == lvl {
			return true
		}
	}
	return false
}

// Requirement is the entry requirement of a Course.
type Requirement string

const (
	RequirementCicloBasico   Requirement = "Ciclo básico"
	RequirementBachillerato  Requirement = "Bachillerato"
	RequirementTerciario     Requirement = "Terciario"
	RequirementUniversitario Requirement = "Universitario"
)

var Requirements = []Requirement{
	RequirementCicloBasico, RequirementBachillerato, RequirementTerciario, RequirementUniversitario,
}

func (r Requirement) Valid() bool {
	for _, req := range Requirements {
		if r == req {
			return true
		}
	}
	return false
}

// DurationUnit is the unit of a Course Duration.
type DurationUnit string

const (
	UnitMonths DurationUnit = "meses"
	UnitYears  DurationUnit = "años"
)

var DurationUnits = []DurationUnit{UnitMonths, UnitYears}

func (u DurationUnit) Valid() bool {
	return u == UnitMonths || u == UnitYears
}

const (
	MinDurationNumber = 1
	MaxDurationNumber = 12
)

// DurationNumbers returns every legal duration magnitude, in order.
func DurationNumbers() []int {
	nums := make([]int, 0, MaxDurationNumber)
	for n := MinDurationNumber; n <= MaxDurationNumber; n++ {
		nums = append(nums, n)
	}
	return nums
}

var errInvalidDuration = errors.New("invalid duration")

// Duration is a normalized magnitude + unit pair.
type Duration struct {
	Number int          `json:"numero"`
	Unit   DurationUnit `json:"unidad"`
}

func (d Duration) Valid() bool {
	return d.Number >= MinDurationNumber && d.Number <= MaxDurationNumber && d.Unit.Valid()
}

func (d Duration) String() string {
	return fmt.Sprintf("%d %s", d.Number, d.Unit)
}

// ParseDuration parses "<number> <unit>" (eg. "4 años") into a valid Duration.
func ParseDuration(s string) (Duration, error) {
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return Duration{}, errors.Wrapf(errInvalidDuration, "%q", s)
	}
	num, err := strconv.Atoi(parts[0])
	if err != nil {
		return Duration{}, errors.Wrapf(errInvalidDuration, "%q", s)
	}
	d := Duration{Number: num, Unit: DurationUnit(strings.ToLower(parts[1]))}
	if !d.Valid() {
		return Duration{}, errors.Wrapf(errInvalidDuration, "%q", s)
	}
	return d, nil
}

// IsInvalidDuration reports whether err comes from ParseDuration.
func IsInvalidDuration(err error) bool {
	return errors.Cause(err) == errInvalidDuration
}

// Institution is an educational organization; its Name is the display key used for filtering.
type Institution struct {
	ID      int64  `json:"id"`
	Name    string `json:"nombre"`
	Address string `json:"direccion"`
	Phone   string `json:"telefono"`
	Email   string `json:"email"`
	Web     string `json:"web"`
	Logo    string `json:"logo"`
}

// Course is a program offered by exactly one Institution.
type Course struct {
	ID              int64       `json:"id"`
	Name            string      `json:"nombre"`
	Level           Level       `json:"nivel"`
	Duration        Duration    `json:"duracion"`
	Requirement     Requirement `json:"requisitos_ingreso"`
	Info            string      `json:"info"`
	InstitutionID   int64       `json:"institucion_id"`
	InstitutionName string      `json:"institucion"` // resolved on read
}

// Sede is a physical or virtual site of an Institution.
type Sede struct {
	ID            int64  `json:"id"`
	Address       string `json:"direccion"`
	City          string `json:"ciudad"`
	Phone         string `json:"telefono"`
	Email         string `json:"email"`
	Web           string `json:"web"`
	InstitutionID int64  `json:"institucion_id"`
}
