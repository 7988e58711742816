package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	echoapi "github.com/ofertaeducativa/catalogo/apps/api/echo"
	"github.com/ofertaeducativa/catalogo/core"
	"github.com/ofertaeducativa/catalogo/core/admin"
	"github.com/ofertaeducativa/catalogo/core/auth"
	"github.com/ofertaeducativa/catalogo/core/catalog"
	sessionsvc "github.com/ofertaeducativa/catalogo/services/session"
	"github.com/ofertaeducativa/catalogo/storage/database"
	sqlxrepos "github.com/ofertaeducativa/catalogo/storage/database/sqlx"
	testutil "github.com/ofertaeducativa/catalogo/tests"
)

const pwd = "S3cret!pass"

type testApp struct {
	server   *echoapi.Server
	repo     catalog.Repository
	users    auth.Repository
	sessions *sessionsvc.Store
	conf     *core.Config
}

func setup(t *testing.T) *testApp {
	// set up DB & repos
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, "sqlite"))
	repo := sqlxrepos.NewCatalogRepository(db)
	users := sqlxrepos.NewUserRepository(db)

	// set up services
	conf := &core.Config{
		AppName:   "Oferta Educativa",
		Env:       "TEST",
		TestMode:  true,
		SecretKey: "test-secret",
		Server: core.ServerConfig{
			Address:    ":0",
			SessionTTL: time.Hour,
			LoginPath:  "/login",
		},
	}
	validate, translator := testutil.NewValidator()
	logger, _ := testutil.NewLogger()
	sessions := sessionsvc.NewStore(conf.Server.SessionTTL, time.Minute, func() (*auth.Guard, *admin.Coordinator) {
		guard := auth.NewGuard(users, conf.Server.LoginPath)
		return guard, admin.NewCoordinator(repo, guard, validate, translator, logger)
	}, logger)

	// set up server
	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:           conf,
		Logger:         logger,
		CatalogSvc:     catalog.NewService(repo),
		Sessions:       sessions,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})

	t.Cleanup(func() {
		_ = server.Shutdown(context.Background())
		_ = db.Close()
	})
	return &testApp{server: server, repo: repo, users: users, sessions: sessions, conf: conf}
}

// login returns the token of a new session of `email`.
func (app *testApp) login(t *testing.T, email string) string {
	body := marchallObj(t, echoapi.LoginRequest{Email: email, Password: pwd})
	req, rec := newRequest(http.MethodPost, "/v1/auth/login", body)
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res echoapi.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res.Token
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app *testApp, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
