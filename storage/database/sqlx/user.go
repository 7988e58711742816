package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/ofertaeducativa/catalogo/core"
	"github.com/ofertaeducativa/catalogo/core/auth"
)

const resourceUser = "usuario"

type userRow struct {
	ID              int64  `db:"id"`
	Email           string `db:"email"`
	PasswordHash    []byte `db:"password_hash"`
	InstitutionID   int64  `db:"institucion_id"`
	InstitutionName string `db:"institucion"`
}

func (r userRow) user() auth.User {
	return auth.User{
		ID:              r.ID,
		Email:           r.Email,
		PasswordHash:    r.PasswordHash,
		InstitutionID:   r.InstitutionID,
		InstitutionName: r.InstitutionName,
	}
}

type userRepository struct {
	db core.DBExecutor
}

func NewUserRepository(db core.DBExecutor) auth.Repository {
	return &userRepository{db: db}
}

// GetUserByEmail resolves the owning institution in the same query.
func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (auth.User, error) {
	var row userRow
	q := repo.db.Rebind(`SELECT u.id, u.email, u.password_hash, u.institucion_id, i.nombre AS institucion
FROM usuarios u
JOIN instituciones i ON i.id = u.institucion_id
WHERE u.email = ?`)
	if err := repo.db.GetContext(ctx, &row, q, email); err != nil {
		if err == sql.ErrNoRows {
			return auth.User{}, auth.ErrUserNotFound
		}
		return auth.User{}, core.NewStorageError("getting user by email", err)
	}
	return row.user(), nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr auth.User) (auth.User, error) {
	q := repo.db.Rebind(`INSERT INTO usuarios (email, password_hash, institucion_id) VALUES (?, ?, ?) RETURNING id`)
	if err := repo.db.GetContext(ctx, &usr.ID, q, usr.Email, usr.PasswordHash, usr.InstitutionID); err != nil {
		if isUniqueViolation(err) {
			return auth.User{}, auth.ErrEmailExists
		}
		return auth.User{}, core.NewStorageError("creating user", err)
	}
	return usr, nil
}

func (repo *userRepository) UpdateUserPassword(ctx context.Context, id int64, hash []byte) error {
	const op = "updating user password"
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(`UPDATE usuarios SET password_hash = ? WHERE id = ?`), hash, id)
	if err != nil {
		return core.NewStorageError(op, err)
	}
	return checkAffected(res, op, resourceUser, id)
}
