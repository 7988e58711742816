package auth

import (
	"context"
	"sync"
	"time"

	"github.com/looplab/fsm"
	"github.com/pkg/errors"

	"github.com/ofertaeducativa/catalogo/core"
)

// Guard states
const (
	StateAnonymous      = "anonymous"
	StateAuthenticating = "authenticating"
	StateAuthenticated  = "authenticated"
)

const (
	eventBegin   = "begin"
	eventSucceed = "succeed"
	eventFail    = "fail"
	eventLogout  = "logout"
)

// CredentialStore looks users up by their (lower-cased) email.
// It returns ErrUserNotFound when no user matches; the institution name must be resolved.
type CredentialStore interface {
	GetUserByEmail(ctx context.Context, email string) (User, error)
}

// Guard owns the session of one actor and gates access to admin operations.
// Every method is safe for concurrent use.
type Guard struct {
	mu        sync.Mutex
	users     CredentialStore
	loginPath string
	machine   *fsm.FSM
	session   *Session
	onLogout  []func()
	now       func() time.Time
}

func NewGuard(users CredentialStore, loginPath string) *Guard {
	g := &Guard{
		users:     users,
		loginPath: loginPath,
		now:       time.Now,
	}
	g.machine = fsm.NewFSM(
		StateAnonymous,
		fsm.Events{
			{Name: eventBegin, Src: []string{StateAnonymous, StateAuthenticated}, Dst: StateAuthenticating},
			{Name: eventSucceed, Src: []string{StateAuthenticating}, Dst: StateAuthenticated},
			{Name: eventFail, Src: []string{StateAuthenticating}, Dst: StateAnonymous},
			{Name: eventLogout, Src: []string{StateAuthenticating, StateAuthenticated}, Dst: StateAnonymous},
		},
		fsm.Callbacks{
			"enter_" + StateAnonymous:      g.clearSession,
			"enter_" + StateAuthenticating: g.clearSession,
		},
	)
	return g
}

func (g *Guard) clearSession(_ context.Context, _ *fsm.Event) {
	g.session = nil
}

// OnLogout registers `fn` to run every time an authenticated session ends
// (explicit logout or a new login replacing it). Hooks run outside the guard lock.
func (g *Guard) OnLogout(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onLogout = append(g.onLogout, fn)
}

func (g *Guard) State() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.machine.Current()
}

// Login verifies the credentials and opens a new session, replacing any previous one.
// On failure the guard is left anonymous and the error is ErrUnknownEmail or ErrWrongPassword,
// or a *core.StorageError when the credential store cannot be reached.
func (g *Guard) Login(ctx context.Context, email, password string) (Session, error) {
	g.mu.Lock()
	hooks := g.endingHooks()
	sess, err := g.login(ctx, email, password)
	g.mu.Unlock()

	runHooks(hooks)
	return sess, err
}

func (g *Guard) login(ctx context.Context, email, password string) (Session, error) {
	if err := g.machine.Event(ctx, eventBegin); err != nil {
		return Session{}, errors.Wrap(err, "beginning authentication")
	}

	usr, err := g.users.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		g.fail(ctx)
		if errors.Cause(err) == ErrUserNotFound {
			return Session{}, ErrUnknownEmail
		}
		return Session{}, core.NewStorageError("getting user by email", err)
	}
	if err = usr.CheckPassword(password); err != nil {
		g.fail(ctx)
		return Session{}, ErrWrongPassword
	}

	if err = g.machine.Event(ctx, eventSucceed); err != nil {
		g.fail(ctx)
		return Session{}, errors.Wrap(err, "completing authentication")
	}
	g.session = &Session{
		UserID:          usr.ID,
		Email:           usr.Email,
		InstitutionID:   usr.InstitutionID,
		InstitutionName: usr.InstitutionName,
		StartedAt:       g.now().UTC(),
	}
	return *g.session, nil
}

func (g *Guard) fail(ctx context.Context) {
	_ = g.machine.Event(ctx, eventFail)
}

// Logout ends the session. It is a no-op when already anonymous.
func (g *Guard) Logout() {
	g.mu.Lock()
	hooks := g.endingHooks()
	if !g.machine.Is(StateAnonymous) {
		_ = g.machine.Event(context.Background(), eventLogout)
	}
	g.mu.Unlock()

	runHooks(hooks)
}

// endingHooks returns the logout hooks to run if the current session is about to end. g.mu must be held.
func (g *Guard) endingHooks() []func() {
	if !g.machine.Is(StateAuthenticated) {
		return nil
	}
	hooks := make([]func(), len(g.onLogout))
	copy(hooks, g.onLogout)
	return hooks
}

func runHooks(hooks []func()) {
	for _, fn := range hooks {
		fn()
	}
}

// Authorize returns nil when a session is active, otherwise a *Redirect to the login path
// carrying `next` (the requested path) when provided.
func (g *Guard) Authorize(next ...string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.authorize(next...)
}

func (g *Guard) authorize(next ...string) error {
	if g.machine.Is(StateAuthenticated) && g.session != nil {
		return nil
	}
	r := &Redirect{Target: g.loginPath}
	if len(next) > 0 {
		r.Next = next[0]
	}
	return r
}

// Session returns the active session, or a *Redirect when there is none.
func (g *Guard) Session(next ...string) (Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.authorize(next...); err != nil {
		return Session{}, err
	}
	return *g.session, nil
}
