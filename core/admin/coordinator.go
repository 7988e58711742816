// Package admin applies the mutations of the institution admin area.
package admin

import (
	"context"
	"sync"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/ofertaeducativa/catalogo/core"
	"github.com/ofertaeducativa/catalogo/core/auth"
	"github.com/ofertaeducativa/catalogo/core/catalog"
)

// SessionGuard is the part of auth.Guard the coordinator depends on.
type SessionGuard interface {
	Session(next ...string) (auth.Session, error)
	OnLogout(fn func())
}

// Coordinator validates and applies course, sede and institution mutations,
// always scoped to the institution of the guard's session.
//
// It caches the admin course and sede lists of that institution. The caches are
// never patched: every successful mutation re-queries the repository, and a failed
// one leaves them untouched.
type Coordinator struct {
	mu         sync.Mutex
	repo       catalog.Repository
	guard      SessionGuard
	validate   *validator.Validate
	translator ut.Translator
	logger     core.Logger

	owner   int64            // institution the caches belong to
	courses []catalog.Course // nil when stale
	sedes   []catalog.Sede   // nil when stale
}

// NewCoordinator returns a Coordinator whose view state is reset every time the guard's session ends.
func NewCoordinator(
	repo catalog.Repository,
	guard SessionGuard,
	validate *validator.Validate,
	translator ut.Translator,
	logger core.Logger,
) *Coordinator {
	c := &Coordinator{
		repo:       repo,
		guard:      guard,
		validate:   validate,
		translator: translator,
		logger:     logger,
	}
	guard.OnLogout(c.Reset)
	return c
}

// Reset drops every cached admin list.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.owner = 0
	c.courses = nil
	c.sedes = nil
}

// session authorizes the call and makes sure the caches belong to the session's institution. c.mu must be held.
func (c *Coordinator) session() (auth.Session, error) {
	sess, err := c.guard.Session()
	if err != nil {
		return auth.Session{}, err
	}
	if c.owner != sess.InstitutionID {
		c.owner = sess.InstitutionID
		c.courses = nil
		c.sedes = nil
	}
	return sess, nil
}

// fail converts a repository error into the error surfaced to the caller.
// Not-found errors pass through; anything else is logged and reported as a *core.StorageError.
func (c *Coordinator) fail(op string, err error, sess auth.Session) error {
	if core.IsNotFound(err) {
		return err
	}
	c.logger.Error(op, err, sess)
	if core.IsStorage(err) {
		return err
	}
	return core.NewStorageError(op, err)
}

// Courses

// Courses returns the courses of the session's institution.
func (c *Coordinator) Courses(ctx context.Context) ([]catalog.Course, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.session()
	if err != nil {
		return nil, err
	}
	if c.courses == nil {
		if err = c.reloadCourses(ctx, sess); err != nil {
			return nil, err
		}
	}
	return copyCourses(c.courses), nil
}

// CreateCourse validates `nc` and stores it for the session's institution.
// It returns the reloaded course list.
func (c *Coordinator) CreateCourse(ctx context.Context, nc catalog.NewCourse) ([]catalog.Course, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.session()
	if err != nil {
		return nil, err
	}
	if err = nc.Validate(c.validate, c.translator); err != nil {
		return nil, err
	}
	if _, err = c.repo.CreateCourse(ctx, nc.Course(sess.InstitutionID)); err != nil {
		return nil, c.fail("creating course", err, sess)
	}
	return c.refreshCourses(ctx, sess)
}

// UpdateCourse changes the supplied fields of the course `id`, which must belong to the session's institution.
func (c *Coordinator) UpdateCourse(ctx context.Context, id int64, uc catalog.UpdateCourse) ([]catalog.Course, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.session()
	if err != nil {
		return nil, err
	}
	if err = uc.Validate(c.validate, c.translator); err != nil {
		return nil, err
	}
	crs, err := c.ownedCourse(ctx, id, sess)
	if err != nil {
		return nil, err
	}
	if _, err = c.repo.UpdateCourse(ctx, uc.Apply(crs)); err != nil {
		return nil, c.fail("updating course", err, sess)
	}
	return c.refreshCourses(ctx, sess)
}

// DeleteCourse removes the course `id`, which must belong to the session's institution.
func (c *Coordinator) DeleteCourse(ctx context.Context, id int64) ([]catalog.Course, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.session()
	if err != nil {
		return nil, err
	}
	if _, err = c.ownedCourse(ctx, id, sess); err != nil {
		return nil, err
	}
	if err = c.repo.DeleteCourse(ctx, id); err != nil {
		return nil, c.fail("deleting course", err, sess)
	}
	return c.refreshCourses(ctx, sess)
}

// ownedCourse reports courses of other institutions as not found.
func (c *Coordinator) ownedCourse(ctx context.Context, id int64, sess auth.Session) (catalog.Course, error) {
	crs, err := c.repo.GetCourse(ctx, id)
	if err != nil {
		return catalog.Course{}, c.fail("getting course", err, sess)
	}
	if crs.InstitutionID != sess.InstitutionID {
		c.logger.Warn("foreign course access", map[string]interface{}{"curso_id": id}, sess)
		return catalog.Course{}, core.NewNotFoundError(catalog.ResourceCourse, id)
	}
	return crs, nil
}

func (c *Coordinator) reloadCourses(ctx context.Context, sess auth.Session) error {
	courses, err := c.repo.QueryCoursesByInstitution(ctx, sess.InstitutionID)
	if err != nil {
		return c.fail("querying courses", err, sess)
	}
	if courses == nil {
		courses = []catalog.Course{}
	}
	c.courses = courses
	return nil
}

// refreshCourses re-queries the list after a successful mutation.
func (c *Coordinator) refreshCourses(ctx context.Context, sess auth.Session) ([]catalog.Course, error) {
	c.courses = nil
	if err := c.reloadCourses(ctx, sess); err != nil {
		return nil, err
	}
	return copyCourses(c.courses), nil
}

// Sedes

// Sedes returns the sedes of the session's institution.
func (c *Coordinator) Sedes(ctx context.Context) ([]catalog.Sede, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.session()
	if err != nil {
		return nil, err
	}
	if c.sedes == nil {
		if err = c.reloadSedes(ctx, sess); err != nil {
			return nil, err
		}
	}
	return copySedes(c.sedes), nil
}

func (c *Coordinator) CreateSede(ctx context.Context, ns catalog.NewSede) ([]catalog.Sede, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.session()
	if err != nil {
		return nil, err
	}
	if err = ns.Validate(c.validate, c.translator); err != nil {
		return nil, err
	}
	if _, err = c.repo.CreateSede(ctx, ns.Sede(sess.InstitutionID)); err != nil {
		return nil, c.fail("creating sede", err, sess)
	}
	return c.refreshSedes(ctx, sess)
}

func (c *Coordinator) UpdateSede(ctx context.Context, id int64, us catalog.UpdateSede) ([]catalog.Sede, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.session()
	if err != nil {
		return nil, err
	}
	if err = us.Validate(c.validate, c.translator); err != nil {
		return nil, err
	}
	sede, err := c.ownedSede(ctx, id, sess)
	if err != nil {
		return nil, err
	}
	if _, err = c.repo.UpdateSede(ctx, us.Apply(sede)); err != nil {
		return nil, c.fail("updating sede", err, sess)
	}
	return c.refreshSedes(ctx, sess)
}

func (c *Coordinator) DeleteSede(ctx context.Context, id int64) ([]catalog.Sede, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.session()
	if err != nil {
		return nil, err
	}
	if _, err = c.ownedSede(ctx, id, sess); err != nil {
		return nil, err
	}
	if err = c.repo.DeleteSede(ctx, id); err != nil {
		return nil, c.fail("deleting sede", err, sess)
	}
	return c.refreshSedes(ctx, sess)
}

func (c *Coordinator) ownedSede(ctx context.Context, id int64, sess auth.Session) (catalog.Sede, error) {
	sede, err := c.repo.GetSede(ctx, id)
	if err != nil {
		return catalog.Sede{}, c.fail("getting sede", err, sess)
	}
	if sede.InstitutionID != sess.InstitutionID {
		c.logger.Warn("foreign sede access", map[string]interface{}{"sede_id": id}, sess)
		return catalog.Sede{}, core.NewNotFoundError(catalog.ResourceSede, id)
	}
	return sede, nil
}

func (c *Coordinator) reloadSedes(ctx context.Context, sess auth.Session) error {
	sedes, err := c.repo.QuerySedesByInstitution(ctx, sess.InstitutionID)
	if err != nil {
		return c.fail("querying sedes", err, sess)
	}
	if sedes == nil {
		sedes = []catalog.Sede{}
	}
	c.sedes = sedes
	return nil
}

func (c *Coordinator) refreshSedes(ctx context.Context, sess auth.Session) ([]catalog.Sede, error) {
	c.sedes = nil
	if err := c.reloadSedes(ctx, sess); err != nil {
		return nil, err
	}
	return copySedes(c.sedes), nil
}

// Institution

// Institution returns the session's institution.
func (c *Coordinator) Institution(ctx context.Context) (catalog.Institution, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.session()
	if err != nil {
		return catalog.Institution{}, err
	}
	inst, err := c.repo.GetInstitution(ctx, sess.InstitutionID)
	if err != nil {
		return catalog.Institution{}, c.fail("getting institution", err, sess)
	}
	return inst, nil
}

// UpdateInstitution changes the supplied fields of the session's institution.
// The session keeps the institution name it was opened with.
func (c *Coordinator) UpdateInstitution(ctx context.Context, ui catalog.UpdateInstitution) (catalog.Institution, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.session()
	if err != nil {
		return catalog.Institution{}, err
	}
	if err = ui.Validate(c.validate, c.translator); err != nil {
		return catalog.Institution{}, err
	}
	inst, err := c.repo.GetInstitution(ctx, sess.InstitutionID)
	if err != nil {
		return catalog.Institution{}, c.fail("getting institution", err, sess)
	}
	if _, err = c.repo.UpdateInstitution(ctx, ui.Apply(inst)); err != nil {
		return catalog.Institution{}, c.fail("updating institution", err, sess)
	}
	inst, err = c.repo.GetInstitution(ctx, sess.InstitutionID)
	if err != nil {
		return catalog.Institution{}, c.fail("getting institution", err, sess)
	}
	return inst, nil
}

func copyCourses(courses []catalog.Course) []catalog.Course {
	out := make([]catalog.Course, len(courses))
	copy(out, courses)
	return out
}

func copySedes(sedes []catalog.Sede) []catalog.Sede {
	out := make([]catalog.Sede, len(sedes))
	copy(out, sedes)
	return out
}
