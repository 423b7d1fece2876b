package session

import (
	"encoding/json"
	"errors"

	"github.com/trezcool/darasa/restclient"
)

// Roles (as assigned by the backend)
const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"

	// RoleUser is what register always assigns locally, whatever the
	// server echoes back.
	RoleUser = "user"
)

// Themes
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// persisted storage keys
const (
	KeyToken        = "token"
	KeyUserData     = "user_data"
	KeyRole         = "role"
	KeyTheme        = "theme"
	KeyCurrency     = "currency"
	KeyBusinessData = "business_data"
)

// ErrKeyNotFound is returned by a Repository when a key has never been set.
var ErrKeyNotFound = errors.New("key not found")

// Repository is the durable key-value storage sessions survive restarts in.
// Reads and writes are synchronous; implementations must be safe for
// concurrent use.
type Repository interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(keys ...string) error
}

// Session is the in-memory authenticated identity. Token present iff
// logged in; Role is derived from User.Role at login time and kept in sync
// by every state-changing operation.
type Session struct {
	Token    string
	User     *restclient.User
	Role     string
	Theme    string
	Currency string
	Business json.RawMessage
}

func (s Session) LoggedIn() bool {
	return s.Token != ""
}

// Result types
const (
	TypeSuccess = "success"
	TypeWarning = "warning"
	TypeDanger  = "danger"
)

// Result is the tagged outcome of an identity operation. Callers receive
// one of these instead of an error; the three-way Type distinction drives
// UI messaging.
type Result struct {
	Status  bool   `json:"status"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

func successResult(msg string) Result {
	return Result{Status: true, Type: TypeSuccess, Message: msg}
}

func warningResult(msg string) Result {
	return Result{Status: false, Type: TypeWarning, Message: msg}
}

func dangerResult(msg string) Result {
	return Result{Status: false, Type: TypeDanger, Message: msg}
}
