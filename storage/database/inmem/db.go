// Package inmemdb is a process-local database implementing every repository. It backs tests and demos.
package inmemdb

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/ofertaeducativa/catalogo/core/auth"
	"github.com/ofertaeducativa/catalogo/core/catalog"
)

// errForeignKey mirrors the foreign key constraint of the SQL schema.
var errForeignKey = errors.New("foreign key constraint failed")

// DB keeps rows in insertion order; ids are never reused.
type DB struct {
	mutex        sync.RWMutex
	pk           int64
	institutions []catalog.Institution
	courses      []catalog.Course
	sedes        []catalog.Sede
	users        []auth.User
}

func Open() *DB {
	return &DB{}
}

// nextID must be called with the write lock held.
func (db *DB) nextID() int64 {
	db.pk++
	return db.pk
}

func (db *DB) institutionIndex(id int64) int {
	for i, inst := range db.institutions {
		if inst.ID == id {
			return i
		}
	}
	return -1
}

func (db *DB) institutionName(id int64) (string, bool) {
	if idx := db.institutionIndex(id); idx >= 0 {
		return db.institutions[idx].Name, true
	}
	return "", false
}
