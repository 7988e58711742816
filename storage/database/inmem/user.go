package inmemdb

import (
	"context"

	"github.com/ofertaeducativa/catalogo/core"
	"github.com/ofertaeducativa/catalogo/core/auth"
)

type userRepository struct {
	db *DB
}

func NewUserRepository(db *DB) auth.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) GetUserByEmail(_ context.Context, email string) (auth.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, usr := range repo.db.users {
		if usr.Email == email {
			usr.InstitutionName, _ = repo.db.institutionName(usr.InstitutionID)
			return usr, nil
		}
	}
	return auth.User{}, auth.ErrUserNotFound
}

func (repo *userRepository) CreateUser(_ context.Context, usr auth.User) (auth.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, u := range repo.db.users {
		if u.Email == usr.Email {
			return auth.User{}, auth.ErrEmailExists
		}
	}
	if repo.db.institutionIndex(usr.InstitutionID) < 0 {
		return auth.User{}, core.NewStorageError("creating user", errForeignKey)
	}
	usr.ID = repo.db.nextID()
	repo.db.users = append(repo.db.users, usr)
	return usr, nil
}

func (repo *userRepository) UpdateUserPassword(_ context.Context, id int64, hash []byte) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for i := range repo.db.users {
		if repo.db.users[i].ID == id {
			repo.db.users[i].PasswordHash = hash
			return nil
		}
	}
	return core.NewNotFoundError("usuario", id)
}
