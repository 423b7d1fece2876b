package echoapi

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

var (
	errNotFound    = errors.New("record not found")
	errEmailExists = errors.New("an account with this email already exists")
)

// Account is a backend-side user record.
type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	Theme        string    `json:"theme"`
	Currency     string    `json:"currency"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (a *Account) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

func (a *Account) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pwd))
}

type (
	DB struct {
		accounts    *accountTable
		collections map[string]*collection
	}

	accountTable struct {
		sync.RWMutex
		table map[string]*Account
	}

	// collection is one schemaless CRUD table; records are JSON objects
	// with injected id and timestamps.
	collection struct {
		sync.RWMutex
		name  string
		table map[string]echo.Map
	}
)

func newDB() *DB {
	db := &DB{
		accounts:    &accountTable{table: make(map[string]*Account)},
		collections: make(map[string]*collection, len(collectionNames)),
	}
	for _, name := range collectionNames {
		db.collections[name] = &collection{name: name, table: make(map[string]echo.Map)}
	}
	return db
}

func (db *DB) collection(name string) *collection {
	return db.collections[name]
}

// accounts

func (db *DB) CreateAccount(acct Account) (Account, error) {
	db.accounts.Lock()
	defer db.accounts.Unlock()

	for _, a := range db.accounts.table {
		if a.Email == acct.Email {
			return Account{}, errEmailExists
		}
	}

	now := time.Now().UTC()
	acct.ID = uuid.NewString()
	acct.CreatedAt = now
	acct.UpdatedAt = now
	db.accounts.table[acct.ID] = &acct
	return acct, nil
}

func (db *DB) GetAccountByID(id string) (Account, error) {
	db.accounts.RLock()
	defer db.accounts.RUnlock()

	if acct, ok := db.accounts.table[id]; ok {
		return *acct, nil
	}
	return Account{}, errNotFound
}

func (db *DB) GetAccountByEmail(email string) (Account, error) {
	db.accounts.RLock()
	defer db.accounts.RUnlock()

	for _, acct := range db.accounts.table {
		if acct.Email == email {
			return *acct, nil
		}
	}
	return Account{}, errNotFound
}

func (db *DB) QueryAllAccounts() []Account {
	db.accounts.RLock()
	defer db.accounts.RUnlock()

	accts := make([]Account, 0, len(db.accounts.table))
	for _, acct := range db.accounts.table {
		accts = append(accts, *acct)
	}
	return accts
}

func (db *DB) UpdateAccount(acct Account) (Account, error) {
	db.accounts.Lock()
	defer db.accounts.Unlock()

	if _, ok := db.accounts.table[acct.ID]; !ok {
		return Account{}, errNotFound
	}
	acct.UpdatedAt = time.Now().UTC()
	db.accounts.table[acct.ID] = &acct
	return acct, nil
}

func (db *DB) DeleteAccount(id string) error {
	db.accounts.Lock()
	defer db.accounts.Unlock()

	if _, ok := db.accounts.table[id]; !ok {
		return errNotFound
	}
	delete(db.accounts.table, id)
	return nil
}

// collections

func (c *collection) Create(rec echo.Map) echo.Map {
	c.Lock()
	defer c.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	rec["id"] = uuid.NewString()
	rec["created_at"] = now
	rec["updated_at"] = now
	c.table[rec["id"].(string)] = rec
	return rec
}

func (c *collection) Get(id string) (echo.Map, error) {
	c.RLock()
	defer c.RUnlock()

	if rec, ok := c.table[id]; ok {
		return rec, nil
	}
	return nil, errNotFound
}

func (c *collection) All() []echo.Map {
	c.RLock()
	defer c.RUnlock()

	recs := make([]echo.Map, 0, len(c.table))
	for _, rec := range c.table {
		recs = append(recs, rec)
	}
	return recs
}

func (c *collection) Update(id string, fields echo.Map) (echo.Map, error) {
	c.Lock()
	defer c.Unlock()

	rec, ok := c.table[id]
	if !ok {
		return nil, errNotFound
	}
	for key, val := range fields {
		if key == "id" || key == "created_at" {
			continue
		}
		rec[key] = val
	}
	rec["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	return rec, nil
}

func (c *collection) Delete(id string) error {
	c.Lock()
	defer c.Unlock()

	if _, ok := c.table[id]; !ok {
		return errNotFound
	}
	delete(c.table, id)
	return nil
}
