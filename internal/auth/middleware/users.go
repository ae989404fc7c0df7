package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/mindengage-qbank/internal/db"
	"github.com/mind-engage/mindengage-qbank/internal/rbac"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const ProviderLocal = "local"

type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Fullname     string `json:"fullname,omitempty"`
	Provider     string `json:"provider"`
	Role         string `json:"role"`
	RegisterDate int64  `json:"register_date"`
	passwordHash string
}

type UserStore struct{ db *sql.DB }

func NewUserStore(h *sql.DB) *UserStore { return &UserStore{db: h} }

func normalizeUsername(u string) string { return strings.ToLower(strings.TrimSpace(u)) }

// Create registers a local user with a bcrypt password hash.
func (s *UserStore) Create(ctx context.Context, username, password, fullname, role string) (User, error) {
	username = normalizeUsername(username)
	if username == "" || len(password) < 8 {
		return User{}, fmt.Errorf("username and a password of at least 8 characters are required")
	}
	if role == "" {
		role = rbac.RoleStudent
	}
	if !rbac.ValidRole(role) {
		return User{}, fmt.Errorf("unknown role %q", role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	return s.insert(ctx, username, string(hash), fullname, role)
}

func (s *UserStore) insert(ctx context.Context, username, hash, fullname, role string) (User, error) {
	u := User{Username: username, Fullname: fullname, Provider: ProviderLocal, Role: role, RegisterDate: time.Now().Unix(), passwordHash: hash}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, password_hash, provider, fullname, role, register_date)
		VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
		u.Username, hash, u.Provider, u.Fullname, u.Role, u.RegisterDate).Scan(&u.ID)
	if db.IsUniqueViolation(err) {
		return User{}, ErrUserExists
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// EnsureAdmin creates the bootstrap admin from an existing bcrypt hash
// unless a local user with that name exists.
func (s *UserStore) EnsureAdmin(ctx context.Context, username, bcryptHash string) error {
	username = normalizeUsername(username)
	if username == "" || bcryptHash == "" {
		return nil
	}
	_, err := s.insert(ctx, username, bcryptHash, "", rbac.RoleAdmin)
	if errors.Is(err, ErrUserExists) {
		return nil
	}
	return err
}

func (s *UserStore) Get(ctx context.Context, username string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, provider, fullname, role, register_date
		FROM users WHERE username=$1 AND provider=$2`, normalizeUsername(username), ProviderLocal).
		Scan(&u.ID, &u.Username, &u.passwordHash, &u.Provider, &u.Fullname, &u.Role, &u.RegisterDate)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrInvalidCredentials
	}
	return u, err
}

// Authenticate checks a password against the stored hash.
func (s *UserStore) Authenticate(ctx context.Context, username, password string) (User, error) {
	u, err := s.Get(ctx, username)
	if err != nil {
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}
