package sqlxrepos

import (
	"context"

	"github.com/volatiletech/null/v8"

	"github.com/ofertaeducativa/catalogo/core"
	"github.com/ofertaeducativa/catalogo/core/catalog"
)

type (
	institutionRow struct {
		ID      int64       `db:"id"`
		Name    string      `db:"nombre"`
		Address string      `db:"direccion"`
		Phone   string      `db:"telefono"`
		Email   string      `db:"email"`
		Web     null.String `db:"web"`
		Logo    null.String `db:"logo"`
	}

	courseRow struct {
		ID              int64       `db:"id"`
		Name            string      `db:"nombre"`
		Level           string      `db:"nivel"`
		DurationNumber  int         `db:"duracion_numero"`
		DurationUnit    string      `db:"duracion_unidad"`
		Requirement     string      `db:"requisitos_ingreso"`
		Info            null.String `db:"info"`
		InstitutionID   int64       `db:"institucion_id"`
		InstitutionName string      `db:"institucion"`
	}

	sedeRow struct {
		ID            int64       `db:"id"`
		Address       string      `db:"direccion"`
		City          string      `db:"ciudad"`
		Phone         string      `db:"telefono"`
		Email         string      `db:"email"`
		Web           null.String `db:"web"`
		InstitutionID int64       `db:"institucion_id"`
	}
)

func (r institutionRow) institution() catalog.Institution {
	return catalog.Institution{
		ID:      r.ID,
		Name:    r.Name,
		Address: r.Address,
		Phone:   r.Phone,
		Email:   r.Email,
		Web:     r.Web.String,
		Logo:    r.Logo.String,
	}
}

func (r courseRow) course() catalog.Course {
	return catalog.Course{
		ID:              r.ID,
		Name:            r.Name,
		Level:           catalog.Level(r.Level),
		Duration:        catalog.Duration{Number: r.DurationNumber, Unit: catalog.DurationUnit(r.DurationUnit)},
		Requirement:     catalog.Requirement(r.Requirement),
		Info:            r.Info.String,
		InstitutionID:   r.InstitutionID,
		InstitutionName: r.InstitutionName,
	}
}

func (r sedeRow) sede() catalog.Sede {
	return catalog.Sede{
		ID:            r.ID,
		Address:       r.Address,
		City:          r.City,
		Phone:         r.Phone,
		Email:         r.Email,
		Web:           r.Web.String,
		InstitutionID: r.InstitutionID,
	}
}

// nullable stores empty strings as NULL.
func nullable(s string) null.String {
	return null.NewString(s, s != "")
}

const (
	selectInstitutions = `SELECT id, nombre, direccion, telefono, email, web, logo FROM instituciones`
	selectCourses      = `SELECT c.id, c.nombre, c.nivel, c.duracion_numero, c.duracion_unidad, c.requisitos_ingreso, c.info,
       c.institucion_id, i.nombre AS institucion
FROM cursos c
JOIN instituciones i ON i.id = c.institucion_id`
	selectSedes = `SELECT id, direccion, ciudad, telefono, email, web, institucion_id FROM sedes`
)

type catalogRepository struct {
	db core.DBExecutor
}

// NewCatalogRepository returns a catalog.Repository backed by `db` (postgres or sqlite).
func NewCatalogRepository(db core.DBExecutor) catalog.Repository {
	return &catalogRepository{db: db}
}

// Institutions

func (repo *catalogRepository) QueryInstitutions(ctx context.Context) ([]catalog.Institution, error) {
	var rows []institutionRow
	if err := repo.db.SelectContext(ctx, &rows, selectInstitutions+" ORDER BY id"); err != nil {
		return nil, wrap("querying institutions", catalog.ResourceInstitution, 0, err)
	}
	insts := make([]catalog.Institution, 0, len(rows))
	for _, r := range rows {
		insts = append(insts, r.institution())
	}
	return insts, nil
}

func (repo *catalogRepository) QueryInstitutionNames(ctx context.Context) ([]string, error) {
	names := make([]string, 0)
	q := `SELECT nombre FROM instituciones GROUP BY nombre ORDER BY MIN(id)`
	if err := repo.db.SelectContext(ctx, &names, q); err != nil {
		return nil, wrap("querying institution names", catalog.ResourceInstitution, 0, err)
	}
	return names, nil
}

func (repo *catalogRepository) GetInstitution(ctx context.Context, id int64) (catalog.Institution, error) {
	var row institutionRow
	q := repo.db.Rebind(selectInstitutions + " WHERE id = ?")
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return catalog.Institution{}, wrap("getting institution", catalog.ResourceInstitution, id, err)
	}
	return row.institution(), nil
}

func (repo *catalogRepository) CreateInstitution(ctx context.Context, inst catalog.Institution) (catalog.Institution, error) {
	q := repo.db.Rebind(`INSERT INTO instituciones (nombre, direccion, telefono, email, web, logo)
VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)
	err := repo.db.GetContext(ctx, &inst.ID, q,
		inst.Name, inst.Address, inst.Phone, inst.Email, nullable(inst.Web), nullable(inst.Logo))
	if err != nil {
		return catalog.Institution{}, wrap("creating institution", catalog.ResourceInstitution, 0, err)
	}
	return inst, nil
}

func (repo *catalogRepository) UpdateInstitution(ctx context.Context, inst catalog.Institution) (catalog.Institution, error) {
	const op = "updating institution"
	q := repo.db.Rebind(`UPDATE instituciones SET nombre = ?, direccion = ?, telefono = ?, email = ?, web = ?, logo = ?
WHERE id = ?`)
	res, err := repo.db.ExecContext(ctx, q,
		inst.Name, inst.Address, inst.Phone, inst.Email, nullable(inst.Web), nullable(inst.Logo), inst.ID)
	if err != nil {
		return catalog.Institution{}, wrap(op, catalog.ResourceInstitution, inst.ID, err)
	}
	if err = checkAffected(res, op, catalog.ResourceInstitution, inst.ID); err != nil {
		return catalog.Institution{}, err
	}
	return inst, nil
}

// Courses

func (repo *catalogRepository) selectCourses(ctx context.Context, where string, args ...interface{}) ([]catalog.Course, error) {
	var rows []courseRow
	q := repo.db.Rebind(selectCourses + where + " ORDER BY c.id")
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, wrap("querying courses", catalog.ResourceCourse, 0, err)
	}
	courses := make([]catalog.Course, 0, len(rows))
	for _, r := range rows {
		courses = append(courses, r.course())
	}
	return courses, nil
}

func (repo *catalogRepository) QueryCourses(ctx context.Context) ([]catalog.Course, error) {
	return repo.selectCourses(ctx, "")
}

func (repo *catalogRepository) QueryCoursesByInstitution(ctx context.Context, institutionID int64) ([]catalog.Course, error) {
	return repo.selectCourses(ctx, " WHERE c.institucion_id = ?", institutionID)
}

func (repo *catalogRepository) GetCourse(ctx context.Context, id int64) (catalog.Course, error) {
	var row courseRow
	q := repo.db.Rebind(selectCourses + " WHERE c.id = ?")
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return catalog.Course{}, wrap("getting course", catalog.ResourceCourse, id, err)
	}
	return row.course(), nil
}

func (repo *catalogRepository) CreateCourse(ctx context.Context, c catalog.Course) (catalog.Course, error) {
	q := repo.db.Rebind(`INSERT INTO cursos (nombre, nivel, duracion_numero, duracion_unidad, requisitos_ingreso, info, institucion_id)
VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	err := repo.db.GetContext(ctx, &c.ID, q,
		c.Name, string(c.Level), c.Duration.Number, string(c.Duration.Unit), string(c.Requirement), nullable(c.Info), c.InstitutionID)
	if err != nil {
		return catalog.Course{}, wrap("creating course", catalog.ResourceCourse, 0, err)
	}
	return c, nil
}

// UpdateCourse never moves a course to another institution.
func (repo *catalogRepository) UpdateCourse(ctx context.Context, c catalog.Course) (catalog.Course, error) {
	const op = "updating course"
	q := repo.db.Rebind(`UPDATE cursos
SET nombre = ?, nivel = ?, duracion_numero = ?, duracion_unidad = ?, requisitos_ingreso = ?, info = ?
WHERE id = ? AND institucion_id = ?`)
	res, err := repo.db.ExecContext(ctx, q,
		c.Name, string(c.Level), c.Duration.Number, string(c.Duration.Unit), string(c.Requirement), nullable(c.Info),
		c.ID, c.InstitutionID)
	if err != nil {
		return catalog.Course{}, wrap(op, catalog.ResourceCourse, c.ID, err)
	}
	if err = checkAffected(res, op, catalog.ResourceCourse, c.ID); err != nil {
		return catalog.Course{}, err
	}
	return c, nil
}

func (repo *catalogRepository) DeleteCourse(ctx context.Context, id int64) error {
	const op = "deleting course"
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(`DELETE FROM cursos WHERE id = ?`), id)
	if err != nil {
		return wrap(op, catalog.ResourceCourse, id, err)
	}
	return checkAffected(res, op, catalog.ResourceCourse, id)
}

// Sedes

func (repo *catalogRepository) QuerySedesByInstitution(ctx context.Context, institutionID int64) ([]catalog.Sede, error) {
	var rows []sedeRow
	q := repo.db.Rebind(selectSedes + " WHERE institucion_id = ? ORDER BY id")
	if err := repo.db.SelectContext(ctx, &rows, q, institutionID); err != nil {
		return nil, wrap("querying sedes", catalog.ResourceSede, 0, err)
	}
	sedes := make([]catalog.Sede, 0, len(rows))
	for _, r := range rows {
		sedes = append(sedes, r.sede())
	}
	return sedes, nil
}

func (repo *catalogRepository) GetSede(ctx context.Context, id int64) (catalog.Sede, error) {
	var row sedeRow
	q := repo.db.Rebind(selectSedes + " WHERE id = ?")
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return catalog.Sede{}, wrap("getting sede", catalog.ResourceSede, id, err)
	}
	return row.sede(), nil
}

func (repo *catalogRepository) CreateSede(ctx context.Context, s catalog.Sede) (catalog.Sede, error) {
	q := repo.db.Rebind(`INSERT INTO sedes (direccion, ciudad, telefono, email, web, institucion_id)
VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)
	err := repo.db.GetContext(ctx, &s.ID, q, s.Address, s.City, s.Phone, s.Email, nullable(s.Web), s.InstitutionID)
	if err != nil {
		return catalog.Sede{}, wrap("creating sede", catalog.ResourceSede, 0, err)
	}
	return s, nil
}

func (repo *catalogRepository) UpdateSede(ctx context.Context, s catalog.Sede) (catalog.Sede, error) {
	const op = "updating sede"
	q := repo.db.Rebind(`UPDATE sedes SET direccion = ?, ciudad = ?, telefono = ?, email = ?, web = ?
WHERE id = ? AND institucion_id = ?`)
	res, err := repo.db.ExecContext(ctx, q, s.Address, s.City, s.Phone, s.Email, nullable(s.Web), s.ID, s.InstitutionID)
	if err != nil {
		return catalog.Sede{}, wrap(op, catalog.ResourceSede, s.ID, err)
	}
	if err = checkAffected(res, op, catalog.ResourceSede, s.ID); err != nil {
		return catalog.Sede{}, err
	}
	return s, nil
}

func (repo *catalogRepository) DeleteSede(ctx context.Context, id int64) error {
	const op = "deleting sede"
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(`DELETE FROM sedes WHERE id = ?`), id)
	if err != nil {
		return wrap(op, catalog.ResourceSede, id, err)
	}
	return checkAffected(res, op, catalog.ResourceSede, id)
}
