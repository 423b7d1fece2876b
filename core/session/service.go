package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/restclient"
)

// networkErrMsg is what callers render when the backend could not be
// reached at all.
const networkErrMsg = "Network error"

// Store is the single source of truth for "who is logged in, with what
// role, under what preferences". It bridges persisted storage and the REST
// client: login/logout configure the client's auth headers as a side
// effect, and every state transition is written back to the Repository.
//
// All network-backed operations convert failures into tagged Results or
// booleans; none propagate errors to callers.
type Store struct {
	repo   Repository
	client *restclient.Client
	logger core.Logger
	conf   *core.Config

	mu      sync.RWMutex
	sess    Session
	loading bool
}

func NewStore(repo Repository, client *restclient.Client, logger core.Logger, conf *core.Config) *Store {
	return &Store{
		repo:    repo,
		client:  client,
		logger:  logger,
		conf:    conf,
		loading: true,
	}
}

// Init restores the persisted session on boot. Theme and currency are
// applied whether or not a token is found; a found token configures the
// client's auth headers. It always terminates with the loading flag
// cleared.
func (st *Store) Init() {
	st.mu.Lock()
	defer func() {
		st.loading = false
		st.mu.Unlock()
	}()

	st.sess.Theme = st.lookup(KeyTheme, st.conf.DefaultTheme)
	st.sess.Currency = st.lookup(KeyCurrency, st.conf.DefaultCurrency)
	if business := st.lookup(KeyBusinessData, ""); business != "" {
		st.sess.Business = json.RawMessage(business)
	}

	token := st.lookup(KeyToken, "")
	if token == "" {
		return
	}

	var usr *restclient.User
	if data := st.lookup(KeyUserData, ""); data != "" {
		usr = new(restclient.User)
		if err := json.Unmarshal([]byte(data), usr); err != nil {
			st.logger.Warn(fmt.Sprintf("discarding bad persisted user record: %v", err), err)
			usr = nil
		}
	}

	role := st.lookup(KeyRole, "")
	if role == "" && usr != nil {
		role = usr.Role
	}

	st.sess.Token = token
	st.sess.User = usr
	st.sess.Role = role
	st.client.ConfigureAuth(token)
}

// Client returns the REST client this store configures.
func (st *Store) Client() *restclient.Client {
	return st.client
}

// Initializing reports whether Init is still restoring persisted state.
func (st *Store) Initializing() bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.loading
}

// Current returns a copy of the in-memory session.
func (st *Store) Current() Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.sess
}

func (st *Store) LoggedIn() bool {
	return st.Current().LoggedIn()
}

// Login exchanges credentials for a token. On success the token, user and
// derived role are persisted, the client's auth headers are configured and
// the in-memory session updated. Structured rejections come back as a
// warning Result, unreachable-backend failures as a danger Result; neither
// mutates any state.
func (st *Store) Login(ctx context.Context, creds Credentials) Result {
	if err := creds.Validate(); err != nil {
		return warningResult(err.Error())
	}

	res, err := st.client.Auth().Login(ctx, creds)
	if err != nil {
		if apiErr, ok := restclient.IsAPIError(err); ok {
			return warningResult(apiErr.Message)
		}
		return dangerResult(networkErrMsg)
	}
	if !res.Success || res.Token == "" || res.User == nil {
		msg := res.Message
		if msg == "" {
			msg = "login failed"
		}
		return warningResult(msg)
	}

	st.authenticate(res.Token, res.User, res.User.Role)

	msg := res.Message
	if msg == "" {
		msg = "logged in"
	}
	return successResult(msg)
}

// Register creates an account and logs it in. The persisted role is always
// "user", whatever role the server echoes back.
func (st *Store) Register(ctx context.Context, reg Registration) Result {
	if err := reg.Validate(); err != nil {
		return warningResult(err.Error())
	}

	res, err := st.client.Auth().Register(ctx, reg)
	if err != nil {
		if apiErr, ok := restclient.IsAPIError(err); ok {
			return warningResult(apiErr.Message)
		}
		return dangerResult(networkErrMsg)
	}
	if !res.Success || res.Token == "" || res.User == nil {
		msg := res.Message
		if msg == "" {
			msg = "registration failed"
		}
		return warningResult(msg)
	}

	st.authenticate(res.Token, res.User, RoleUser)

	msg := res.Message
	if msg == "" {
		msg = "registered"
	}
	return successResult(msg)
}

// Logout invalidates the session locally: persisted token/user/role entries
// are cleared, the client's auth headers removed and the in-memory session
// reset to anonymous defaults. No server round trip; idempotent.
func (st *Store) Logout() {
	if err := st.repo.Delete(KeyToken, KeyUserData, KeyRole); err != nil {
		st.logger.Error(fmt.Sprintf("clearing persisted session: %v", err), err)
	}
	st.client.ClearAuth()

	st.mu.Lock()
	st.sess.Token = ""
	st.sess.User = nil
	st.sess.Role = ""
	st.mu.Unlock()
}

// ChangeTheme updates the preference optimistically — persisted and
// in-memory state change before the server hears about it and are not
// rolled back if it never does. The return value reflects only the server
// notification's outcome.
func (st *Store) ChangeTheme(ctx context.Context, theme string) bool {
	theme = core.CleanString(theme, true)
	st.persist(KeyTheme, theme)
	st.mu.Lock()
	st.sess.Theme = theme
	st.mu.Unlock()

	env, err := st.client.Auth().ToggleTheme(ctx, theme)
	if err != nil {
		return false
	}
	return env.Success
}

// SetCurrency updates the currency preference. Local-only.
func (st *Store) SetCurrency(currency string) {
	currency = strings.ToUpper(core.CleanString(currency))
	st.persist(KeyCurrency, currency)
	st.mu.Lock()
	st.sess.Currency = currency
	st.mu.Unlock()
}

// SetBusiness replaces the opaque business record attached to the session.
// Local-only.
func (st *Store) SetBusiness(data json.RawMessage) {
	st.persist(KeyBusinessData, string(data))
	st.mu.Lock()
	st.sess.Business = data
	st.mu.Unlock()
}

func (st *Store) authenticate(token string, usr *restclient.User, role string) {
	st.persist(KeyToken, token)
	if data, err := json.Marshal(usr); err != nil {
		st.logger.Error(fmt.Sprintf("persisting user record: %v", err), errors.Wrap(err, "marshalling user"))
	} else {
		st.persist(KeyUserData, string(data))
	}
	st.persist(KeyRole, role)

	st.client.ConfigureAuth(token)

	st.mu.Lock()
	st.sess.Token = token
	st.sess.User = usr
	st.sess.Role = role
	st.mu.Unlock()
}

func (st *Store) persist(key, value string) {
	if err := st.repo.Set(key, value); err != nil {
		st.logger.Error(fmt.Sprintf("persisting %q: %v", key, err), err)
	}
}

func (st *Store) lookup(key, fallback string) string {
	val, err := st.repo.Get(key)
	if err != nil {
		if err != ErrKeyNotFound {
			st.logger.Error(fmt.Sprintf("reading %q: %v", key, err), err)
		}
		return fallback
	}
	if val == "" {
		return fallback
	}
	return val
}
