package inmemdb

import (
	"context"

	"github.com/ofertaeducativa/catalogo/core"
	"github.com/ofertaeducativa/catalogo/core/catalog"
)

type catalogRepository struct {
	db *DB
}

func NewCatalogRepository(db *DB) catalog.Repository {
	return &catalogRepository{db: db}
}

// Institutions

func (repo *catalogRepository) QueryInstitutions(_ context.Context) ([]catalog.Institution, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	insts := make([]catalog.Institution, len(repo.db.institutions))
	copy(insts, repo.db.institutions)
	return insts, nil
}

func (repo *catalogRepository) QueryInstitutionNames(_ context.Context) ([]string, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	seen := make(map[string]bool, len(repo.db.institutions))
	names := make([]string, 0, len(repo.db.institutions))
	for _, inst := range repo.db.institutions {
		if !seen[inst.Name] {
			seen[inst.Name] = true
			names = append(names, inst.Name)
		}
	}
	return names, nil
}

func (repo *catalogRepository) GetInstitution(_ context.Context, id int64) (catalog.Institution, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if idx := repo.db.institutionIndex(id); idx >= 0 {
		return repo.db.institutions[idx], nil
	}
	return catalog.Institution{}, core.NewNotFoundError(catalog.ResourceInstitution, id)
}

func (repo *catalogRepository) CreateInstitution(_ context.Context, inst catalog.Institution) (catalog.Institution, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	inst.ID = repo.db.nextID()
	repo.db.institutions = append(repo.db.institutions, inst)
	return inst, nil
}

func (repo *catalogRepository) UpdateInstitution(_ context.Context, inst catalog.Institution) (catalog.Institution, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	idx := repo.db.institutionIndex(inst.ID)
	if idx < 0 {
		return catalog.Institution{}, core.NewNotFoundError(catalog.ResourceInstitution, inst.ID)
	}
	repo.db.institutions[idx] = inst
	return inst, nil
}

// Courses

// resolve sets the institution name of `c`. The read lock must be held.
func (repo *catalogRepository) resolve(c catalog.Course) catalog.Course {
	c.InstitutionName, _ = repo.db.institutionName(c.InstitutionID)
	return c
}

func (repo *catalogRepository) QueryCourses(_ context.Context) ([]catalog.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	courses := make([]catalog.Course, 0, len(repo.db.courses))
	for _, c := range repo.db.courses {
		courses = append(courses, repo.resolve(c))
	}
	return courses, nil
}

func (repo *catalogRepository) QueryCoursesByInstitution(_ context.Context, institutionID int64) ([]catalog.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	courses := make([]catalog.Course, 0)
	for _, c := range repo.db.courses {
		if c.InstitutionID == institutionID {
			courses = append(courses, repo.resolve(c))
		}
	}
	return courses, nil
}

func (repo *catalogRepository) courseIndex(id int64) int {
	for i, c := range repo.db.courses {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (repo *catalogRepository) GetCourse(_ context.Context, id int64) (catalog.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if idx := repo.courseIndex(id); idx >= 0 {
		return repo.resolve(repo.db.courses[idx]), nil
	}
	return catalog.Course{}, core.NewNotFoundError(catalog.ResourceCourse, id)
}

func (repo *catalogRepository) CreateCourse(_ context.Context, c catalog.Course) (catalog.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if repo.db.institutionIndex(c.InstitutionID) < 0 {
		return catalog.Course{}, core.NewStorageError("creating course", errForeignKey)
	}
	c.ID = repo.db.nextID()
	c.InstitutionName = ""
	repo.db.courses = append(repo.db.courses, c)
	return repo.resolve(c), nil
}

func (repo *catalogRepository) UpdateCourse(_ context.Context, c catalog.Course) (catalog.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	idx := repo.courseIndex(c.ID)
	if idx < 0 || repo.db.courses[idx].InstitutionID != c.InstitutionID {
		return catalog.Course{}, core.NewNotFoundError(catalog.ResourceCourse, c.ID)
	}
	c.InstitutionName = ""
	repo.db.courses[idx] = c
	return repo.resolve(c), nil
}

func (repo *catalogRepository) DeleteCourse(_ context.Context, id int64) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	idx := repo.courseIndex(id)
	if idx < 0 {
		return core.NewNotFoundError(catalog.ResourceCourse, id)
	}
	repo.db.courses = append(repo.db.courses[:idx], repo.db.courses[idx+1:]...)
	return nil
}

// Sedes

func (repo *catalogRepository) sedeIndex(id int64) int {
	for i, s := range repo.db.sedes {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (repo *catalogRepository) QuerySedesByInstitution(_ context.Context, institutionID int64) ([]catalog.Sede, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	sedes := make([]catalog.Sede, 0)
	for _, s := range repo.db.sedes {
		if s.InstitutionID == institutionID {
			sedes = append(sedes, s)
		}
	}
	return sedes, nil
}

func (repo *catalogRepository) GetSede(_ context.Context, id int64) (catalog.Sede, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if idx := repo.sedeIndex(id); idx >= 0 {
		return repo.db.sedes[idx], nil
	}
	return catalog.Sede{}, core.NewNotFoundError(catalog.ResourceSede, id)
}

func (repo *catalogRepository) CreateSede(_ context.Context, s catalog.Sede) (catalog.Sede, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if repo.db.institutionIndex(s.InstitutionID) < 0 {
		return catalog.Sede{}, core.NewStorageError("creating sede", errForeignKey)
	}
	s.ID = repo.db.nextID()
	repo.db.sedes = append(repo.db.sedes, s)
	return s, nil
}

func (repo *catalogRepository) UpdateSede(_ context.Context, s catalog.Sede) (catalog.Sede, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	idx := repo.sedeIndex(s.ID)
	if idx < 0 || repo.db.sedes[idx].InstitutionID != s.InstitutionID {
		return catalog.Sede{}, core.NewNotFoundError(catalog.ResourceSede, s.ID)
	}
	repo.db.sedes[idx] = s
	return s, nil
}

func (repo *catalogRepository) DeleteSede(_ context.Context, id int64) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	idx := repo.sedeIndex(id)
	if idx < 0 {
		return core.NewNotFoundError(catalog.ResourceSede, id)
	}
	repo.db.sedes = append(repo.db.sedes[:idx], repo.db.sedes[idx+1:]...)
	return nil
}
