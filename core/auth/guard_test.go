package auth_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ofertaeducativa/catalogo/core"
	"github.com/ofertaeducativa/catalogo/core/auth"
	inmemdb "github.com/ofertaeducativa/catalogo/storage/database/inmem"
	testutil "github.com/ofertaeducativa/catalogo/tests"
)

const pwd = "S3cret!pass"

type failingStore struct{}

func (failingStore) GetUserByEmail(context.Context, string) (auth.User, error) {
	return auth.User{}, errors.New("connection refused")
}

func setupGuard(t *testing.T) (*auth.Guard, auth.User) {
	db := inmemdb.Open()
	inst := testutil.CreateInstitution(t, inmemdb.NewCatalogRepository(db), "UTN")
	users := inmemdb.NewUserRepository(db)
	usr := testutil.CreateUser(t, users, "admin@utn.edu.ar", pwd, inst.ID)
	return auth.NewGuard(users, "/login"), usr
}

func TestGuard_Login(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		email     string
		password  string
		wantErr   error
		wantState string
	}{
		{name: "success", email: "admin@utn.edu.ar", password: pwd, wantState: auth.StateAuthenticated},
		{name: "email is normalized", email: "  ADMIN@utn.edu.ar ", password: pwd, wantState: auth.StateAuthenticated},
		{name: "wrong password", email: "admin@utn.edu.ar", password: "nope", wantErr: auth.ErrWrongPassword, wantState: auth.StateAnonymous},
		{name: "unknown email", email: "otro@utn.edu.ar", password: pwd, wantErr: auth.ErrUnknownEmail, wantState: auth.StateAnonymous},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guard, usr := setupGuard(t)

			sess, err := guard.Login(ctx, tt.email, tt.password)
			assert.Equal(t, tt.wantState, guard.State())
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				assert.True(t, auth.IsAuthError(err))
				assert.Equal(t, auth.Session{}, sess)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, usr.ID, sess.UserID)
			assert.Equal(t, "admin@utn.edu.ar", sess.Email)
			assert.Equal(t, usr.InstitutionID, sess.InstitutionID)
			assert.Equal(t, "UTN", sess.InstitutionName)
			assert.False(t, sess.StartedAt.IsZero())

			got, err := guard.Session()
			require.NoError(t, err)
			assert.Equal(t, sess, got)
		})
	}
}

func TestGuard_Login_failureEndsPreviousSession(t *testing.T) {
	guard, _ := setupGuard(t)
	_, err := guard.Login(context.Background(), "admin@utn.edu.ar", pwd)
	require.NoError(t, err)

	_, err = guard.Login(context.Background(), "admin@utn.edu.ar", "wrong")
	assert.Equal(t, auth.ErrWrongPassword, err)
	assert.Equal(t, auth.StateAnonymous, guard.State())
	assert.True(t, auth.IsRedirect(guard.Authorize()))
}

func TestGuard_Login_storageError(t *testing.T) {
	guard := auth.NewGuard(failingStore{}, "/login")

	_, err := guard.Login(context.Background(), "admin@utn.edu.ar", pwd)
	assert.True(t, core.IsStorage(err))
	assert.False(t, auth.IsAuthError(err))
	assert.Equal(t, auth.StateAnonymous, guard.State())
}

func TestGuard_Authorize(t *testing.T) {
	guard, _ := setupGuard(t)

	err := guard.Authorize("/admin/cursos")
	require.True(t, auth.IsRedirect(err))
	redirect := errors.Cause(err).(*auth.Redirect)
	assert.Equal(t, "/login", redirect.Target)
	assert.Equal(t, "/admin/cursos", redirect.Next)
	assert.Equal(t, "/login?next=%2Fadmin%2Fcursos", redirect.Location())

	err = guard.Authorize()
	require.True(t, auth.IsRedirect(err))
	assert.Equal(t, "/login", errors.Cause(err).(*auth.Redirect).Location())

	_, err = guard.Login(context.Background(), "admin@utn.edu.ar", pwd)
	require.NoError(t, err)
	assert.NoError(t, guard.Authorize())
	assert.NoError(t, guard.Authorize("/admin"))
}

func TestGuard_Logout(t *testing.T) {
	guard, _ := setupGuard(t)
	var resets int32
	guard.OnLogout(func() { atomic.AddInt32(&resets, 1) })

	// logging out while anonymous is a no-op
	guard.Logout()
	assert.Equal(t, auth.StateAnonymous, guard.State())
	assert.EqualValues(t, 0, atomic.LoadInt32(&resets))

	for i := 1; i <= 2; i++ {
		_, err := guard.Login(context.Background(), "admin@utn.edu.ar", pwd)
		require.NoError(t, err)

		guard.Logout()
		assert.Equal(t, auth.StateAnonymous, guard.State())
		assert.True(t, auth.IsRedirect(guard.Authorize()))
		_, err = guard.Session()
		assert.True(t, auth.IsRedirect(err))
		assert.EqualValues(t, i, atomic.LoadInt32(&resets))
	}
}

func TestGuard_reloginResetsViewState(t *testing.T) {
	guard, _ := setupGuard(t)
	var resets int32
	guard.OnLogout(func() { atomic.AddInt32(&resets, 1) })

	_, err := guard.Login(context.Background(), "admin@utn.edu.ar", pwd)
	require.NoError(t, err)
	_, err = guard.Login(context.Background(), "admin@utn.edu.ar", pwd)
	require.NoError(t, err)

	assert.EqualValues(t, 1, atomic.LoadInt32(&resets))
	assert.Equal(t, auth.StateAuthenticated, guard.State())
}
