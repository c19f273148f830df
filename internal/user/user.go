package user

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrExists             = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User data model. Passwords are only kept as bcrypt hashes.
type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"username"`
	PasswordHash []byte `json:"-"`
}

// Registry is an in-memory user table.
type Registry struct {
	mutex sync.RWMutex
	users map[string]*User
	cost  int
}

func NewRegistry() *Registry {
	return &Registry{users: map[string]*User{}, cost: bcrypt.DefaultCost}
}

// WithCost sets the bcrypt cost of new password hashes.
func (reg *Registry) WithCost(cost int) *Registry {
	reg.cost = cost

	return reg
}

func (reg *Registry) Register(name, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), reg.cost)
	if err != nil {
		return nil, err
	}

	reg.mutex.Lock()
	defer reg.mutex.Unlock()

	if _, ok := reg.users[name]; ok {
		return nil, ErrExists
	}

	u := &User{ID: int64(len(reg.users) + 1), Name: name, PasswordHash: hash}
	reg.users[name] = u

	return u, nil
}

func (reg *Registry) Authenticate(name, password string) (*User, error) {
	reg.mutex.RLock()
	u, ok := reg.users[name]
	reg.mutex.RUnlock()

	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}
