package echoapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ofertaeducativa/catalogo/core"
	"github.com/ofertaeducativa/catalogo/core/auth"
	sessionsvc "github.com/ofertaeducativa/catalogo/services/session"
)

const (
	sessionCookie     = "session"
	contextClaimsKey  = "claims"
	contextSessionKey = "session"
)

var signingMethod = jwt.SigningMethodHS256

// Claims represents the authorization claims transmitted via a JWT.
// Id holds the server-side session id.
type Claims struct {
	jwt.StandardClaims
	Email         string `json:"email,omitempty"`
	InstitutionID int64  `json:"institucion_id,omitempty"`
	Institution   string `json:"institucion,omitempty"`
}

func NewClaims(sid string, sess auth.Session, conf *core.Config) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        sid,
			Issuer:    conf.AppName,
			Subject:   strconv.FormatInt(sess.UserID, 10),
			ExpiresAt: now.Add(conf.Server.SessionTTL).Unix(),
			IssuedAt:  now.Unix(),
		},
		Email:         sess.Email,
		InstitutionID: sess.InstitutionID,
		Institution:   sess.InstitutionName,
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(claims *Claims, signingKey []byte) (string, error) {
	token := jwt.NewWithClaims(signingMethod, claims)
	ss, err := token.SignedString(signingKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func parseToken(tokenStr string, signingKey []byte) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != signingMethod.Alg() {
			return nil, errors.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return signingKey, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// extractToken reads the bearer token, falling back to the session cookie.
func extractToken(ctx echo.Context) string {
	if h := ctx.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		if parts := strings.SplitN(h, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := ctx.Cookie(sessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// sessionMiddleware attaches the session entry of a valid token to the context.
// Requests without one go through anonymously; protected routes decide what to do.
func sessionMiddleware(sessions *sessionsvc.Store, signingKey []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if tokenStr := extractToken(ctx); tokenStr != "" {
				if claims, err := parseToken(tokenStr, signingKey); err == nil {
					if entry, found := sessions.Get(claims.Id); found {
						ctx.Set(contextClaimsKey, claims)
						ctx.Set(contextSessionKey, entry)
					}
				}
			}
			return next(ctx)
		}
	}
}

func getContextEntry(ctx echo.Context) (*sessionsvc.Entry, bool) {
	entry, ok := ctx.Get(contextSessionKey).(*sessionsvc.Entry)
	return entry, ok
}

func getContextClaims(ctx echo.Context) (Claims, bool) {
	if claims, ok := ctx.Get(contextClaimsKey).(*Claims); ok {
		return *claims, true
	}
	return Claims{}, false
}

type (
	LoginRequest struct {
		Email    string `json:"email" form:"email" validate:"required,email"`
		Password string `json:"password" form:"password" validate:"required"`
		Next     string `json:"next" form:"next"`
	}

	LoginResponse struct {
		Token   string       `json:"token"`
		Session auth.Session `json:"sesion"`
		Next    string       `json:"next,omitempty"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate, translator ut.Translator) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	if !isLocalPath(lr.Next) {
		lr.Next = ""
	}
	return core.ValidateStruct(validate, translator, lr)
}

// isLocalPath only accepts same-origin paths as post-login destinations.
func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.Contains(p, `\`)
}

type authApi struct {
	sessions   *sessionsvc.Store
	conf       *core.Config
	validate   *validator.Validate
	translator ut.Translator
}

func registerAuthAPI(
	g *echo.Group,
	sessions *sessionsvc.Store,
	conf *core.Config,
	validate *validator.Validate,
	translator ut.Translator,
) {
	api := authApi{
		sessions:   sessions,
		conf:       conf,
		validate:   validate,
		translator: translator,
	}

	ag := g.Group("/auth")
	ag.POST("/login", api.login)
	ag.POST("/logout", api.logout)
	ag.GET("/sesion", api.session, adminMiddleware(conf.Server.LoginPath))
}

// Handlers

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	// a new login always replaces the current session
	if prev, ok := getContextEntry(ctx); ok {
		api.sessions.Delete(prev.ID)
	}

	entry := api.sessions.New()
	sess, err := entry.Guard.Login(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		api.sessions.Delete(entry.ID)
		return err
	}

	claims := NewClaims(entry.ID, sess, api.conf)
	token, err := GenerateToken(claims, []byte(api.conf.SecretKey))
	if err != nil {
		api.sessions.Delete(entry.ID)
		return errors.Wrap(err, "generating token")
	}

	ctx.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Unix(claims.ExpiresAt, 0),
		HttpOnly: true,
		Secure:   !api.conf.Debug,
		SameSite: http.SameSiteLaxMode,
	})
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, Session: sess, Next: data.Next})
}

func (api *authApi) logout(ctx echo.Context) error {
	if entry, ok := getContextEntry(ctx); ok {
		api.sessions.Delete(entry.ID)
	}
	ctx.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	return ctx.NoContent(http.StatusNoContent)
}

func (api *authApi) session(ctx echo.Context) error {
	entry, _ := getContextEntry(ctx)
	sess, err := entry.Guard.Session(ctx.Request().URL.RequestURI())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess)
}
