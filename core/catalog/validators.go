package catalog

import (
	"fmt"
	"strconv"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/ofertaeducativa/catalogo/core"
)

var (
	levelTag  = "nivel"
	levelText = "{0} debe ser uno de: " + joinLevels()

	requirementTag  = "requisito"
	requirementText = "{0} debe ser uno de: " + joinRequirements()

	unitTag  = "unidad"
	unitText = fmt.Sprintf("{0} debe ser %q o %q", UnitMonths, UnitYears)

	durationTag  = "duracion"
	durationText = fmt.Sprintf("{0} debe ser un número entre %d y %d", MinDurationNumber, MaxDurationNumber)
)

// InitValidators registers the catalog validation tags.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(levelTag, levelValidation)
	core.RegisterCustomTranslation(validate, translator, levelTag, levelText)

	_ = validate.RegisterValidation(requirementTag, requirementValidation)
	core.RegisterCustomTranslation(validate, translator, requirementTag, requirementText)

	_ = validate.RegisterValidation(unitTag, unitValidation)
	core.RegisterCustomTranslation(validate, translator, unitTag, unitText)

	_ = validate.RegisterValidation(durationTag, durationValidation)
	core.RegisterCustomTranslation(validate, translator, durationTag, durationText)
}

// NewCourse contains information needed to create a new Course.
// The duration number is received as text (form selects) and parsed after validation.
type NewCourse struct {
	Name           string `json:"nombre" form:"nombre" validate:"required,max=200"`
	Level          string `json:"nivel" form:"nivel" validate:"required,nivel"`
	DurationNumber string `json:"duracion_numero" form:"duracion_numero" validate:"required,duracion"`
	DurationUnit   string `json:"duracion_unidad" form:"duracion_unidad" validate:"required,unidad"`
	Requirement    string `json:"requisitos_ingreso" form:"requisitos_ingreso" validate:"required,requisito"`
	Info           string `json:"info" form:"info" validate:"max=2000"`
}

func (nc *NewCourse) Validate(validate *validator.Validate, translator ut.Translator) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Level = core.CleanString(nc.Level)
	nc.DurationNumber = core.CleanString(nc.DurationNumber)
	nc.DurationUnit = core.CleanString(nc.DurationUnit)
	nc.Requirement = core.CleanString(nc.Requirement)
	nc.Info = core.CleanString(nc.Info)
	return core.ValidateStruct(validate, translator, nc)
}

// Course builds the Course owned by `institutionID`. nc must be valid.
func (nc NewCourse) Course(institutionID int64) Course {
	num, _ := strconv.Atoi(nc.DurationNumber)
	return Course{
		Name:          nc.Name,
		Level:         Level(nc.Level),
		Duration:      Duration{Number: num, Unit: DurationUnit(nc.DurationUnit)},
		Requirement:   Requirement(nc.Requirement),
		Info:          nc.Info,
		InstitutionID: institutionID,
	}
}

// UpdateCourse defines what information may be provided to modify an existing Course.
// Only supplied (non-nil) fields are validated and changed.
type UpdateCourse struct {
	Name           *string `json:"nombre" form:"nombre" validate:"omitnil,min=1,max=200"`
	Level          *string `json:"nivel" form:"nivel" validate:"omitnil,nivel"`
	DurationNumber *string `json:"duracion_numero" form:"duracion_numero" validate:"omitnil,duracion"`
	DurationUnit   *string `json:"duracion_unidad" form:"duracion_unidad" validate:"omitnil,unidad"`
	Requirement    *string `json:"requisitos_ingreso" form:"requisitos_ingreso" validate:"omitnil,requisito"`
	Info           *string `json:"info" form:"info" validate:"omitnil,max=2000"`
}

func (uc *UpdateCourse) Validate(validate *validator.Validate, translator ut.Translator) error {
	for _, fld := range []*string{uc.Name, uc.Level, uc.DurationNumber, uc.DurationUnit, uc.Requirement, uc.Info} {
		if fld != nil {
			*fld = core.CleanString(*fld)
		}
	}
	return core.ValidateStruct(validate, translator, uc)
}

// Apply returns `c` with the supplied fields changed. uc must be valid.
func (uc UpdateCourse) Apply(c Course) Course {
	if uc.Name != nil {
		c.Name = *uc.Name
	}
	if uc.Level != nil {
		c.Level = Level(*uc.Level)
	}
	if uc.DurationNumber != nil {
		c.Duration.Number, _ = strconv.Atoi(*uc.DurationNumber)
	}
	if uc.DurationUnit != nil {
		c.Duration.Unit = DurationUnit(*uc.DurationUnit)
	}
	if uc.Requirement != nil {
		c.Requirement = Requirement(*uc.Requirement)
	}
	if uc.Info != nil {
		c.Info = *uc.Info
	}
	return c
}

// NewSede contains information needed to create a new Sede.
type NewSede struct {
	Address string `json:"direccion" form:"direccion" validate:"required,max=200"`
	City    string `json:"ciudad" form:"ciudad" validate:"required,max=100"`
	Phone   string `json:"telefono" form:"telefono" validate:"max=50"`
	Email   string `json:"email" form:"email" validate:"omitempty,email"`
	Web     string `json:"web" form:"web" validate:"omitempty,url"`
}

func (ns *NewSede) Validate(validate *validator.Validate, translator ut.Translator) error {
	ns.Address = core.CleanString(ns.Address)
	ns.City = core.CleanString(ns.City)
	ns.Phone = core.CleanString(ns.Phone)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Web = core.CleanString(ns.Web)
	return core.ValidateStruct(validate, translator, ns)
}

func (ns NewSede) Sede(institutionID int64) Sede {
	return Sede{
		Address:       ns.Address,
		City:          ns.City,
		Phone:         ns.Phone,
		Email:         ns.Email,
		Web:           ns.Web,
		InstitutionID: institutionID,
	}
}

// UpdateSede defines what information may be provided to modify an existing Sede.
type UpdateSede struct {
	Address *string `json:"direccion" form:"direccion" validate:"omitnil,min=1,max=200"`
	City    *string `json:"ciudad" form:"ciudad" validate:"omitnil,min=1,max=100"`
	Phone   *string `json:"telefono" form:"telefono" validate:"omitnil,max=50"`
	Email   *string `json:"email" form:"email" validate:"omitnil,omitempty,email"`
	Web     *string `json:"web" form:"web" validate:"omitnil,omitempty,url"`
}

func (us *UpdateSede) Validate(validate *validator.Validate, translator ut.Translator) error {
	for _, fld := range []*string{us.Address, us.City, us.Phone, us.Web} {
		if fld != nil {
			*fld = core.CleanString(*fld)
		}
	}
	if us.Email != nil {
		*us.Email = core.CleanString(*us.Email, true /* lower */)
	}
	return core.ValidateStruct(validate, translator, us)
}

func (us UpdateSede) Apply(s Sede) Sede {
	if us.Address != nil {
		s.Address = *us.Address
	}
	if us.City != nil {
		s.City = *us.City
	}
	if us.Phone != nil {
		s.Phone = *us.Phone
	}
	if us.Email != nil {
		s.Email = *us.Email
	}
	if us.Web != nil {
		s.Web = *us.Web
	}
	return s
}

// UpdateInstitution defines what the institution info editor may change.
type UpdateInstitution struct {
	Name    *string `json:"nombre" form:"nombre" validate:"omitnil,min=1,max=200"`
	Address *string `json:"direccion" form:"direccion" validate:"omitnil,max=200"`
	Phone   *string `json:"telefono" form:"telefono" validate:"omitnil,max=50"`
	Email   *string `json:"email" form:"email" validate:"omitnil,omitempty,email"`
	Web     *string `json:"web" form:"web" validate:"omitnil,omitempty,url"`
	Logo    *string `json:"logo" form:"logo" validate:"omitnil,max=255"`
}

func (ui *UpdateInstitution) Validate(validate *validator.Validate, translator ut.Translator) error {
	for _, fld := range []*string{ui.Name, ui.Address, ui.Phone, ui.Web, ui.Logo} {
		if fld != nil {
			*fld = core.CleanString(*fld)
		}
	}
	if ui.Email != nil {
		*ui.Email = core.CleanString(*ui.Email, true /* lower */)
	}
	return core.ValidateStruct(validate, translator, ui)
}

func (ui UpdateInstitution) Apply(inst Institution) Institution {
	if ui.Name != nil {
		inst.Name = *ui.Name
	}
	if ui.Address != nil {
		inst.Address = *ui.Address
	}
	if ui.Phone != nil {
		inst.Phone = *ui.Phone
	}
	if ui.Email != nil {
		inst.Email = *ui.Email
	}
	if ui.Web != nil {
		inst.Web = *ui.Web
	}
	if ui.Logo != nil {
		inst.Logo = *ui.Logo
	}
	return inst
}

// Custom Validators

func levelValidation(fl validator.FieldLevel) bool {
	return Level(fl.Field().String()).Valid()
}

func requirementValidation(fl validator.FieldLevel) bool {
	return Requirement(fl.Field().String()).Valid()
}

func unitValidation(fl validator.FieldLevel) bool {
	return DurationUnit(fl.Field().String()).Valid()
}

// durationValidation only allows integers in [MinDurationNumber, MaxDurationNumber], as text.
func durationValidation(fl validator.FieldLevel) bool {
	num, err := strconv.Atoi(fl.Field().String())
	return err == nil && num >= MinDurationNumber && num <= MaxDurationNumber
}

func joinLevels() string {
	names := make([]string, 0, len(Levels))
	for _, l := range Levels {
		names = append(names, string(l))
	}
	return strings.Join(names, ", ")
}

func joinRequirements() string {
	names := make([]string, 0, len(Requirements))
	for _, r := range Requirements {
		names = append(names, string(r))
	}
	return strings.Join(names, ", ")
}
