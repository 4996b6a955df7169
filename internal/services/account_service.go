package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/isdelr/weight-tracker-be/internal/auth"
	"github.com/isdelr/weight-tracker-be/internal/database"
	"github.com/isdelr/weight-tracker-be/internal/models"
)

// AccountServiceProvider defines the interface for account services.
type AccountServiceProvider interface {
	Register(ctx context.Context, username, email, password string) (models.Account, error)
	Authenticate(ctx context.Context, username, password string) (models.Account, error)
	GetAccountByID(ctx context.Context, id int64) (models.Account, error)
}

// AccountService provides business logic for trainer accounts.
type AccountService struct {
	db  *database.DB
	now func() time.Time
}

// NewAccountService creates a new AccountService.
func NewAccountService(db *database.DB) *AccountService {
	return &AccountService{db: db, now: time.Now}
}

const accountColumns = "id, username, email, password_hash, created_at"

// Register creates a new account, hashing its password. Username and email
// must both be unused.
func (s *AccountService) Register(ctx context.Context, username, email, password string) (models.Account, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return models.Account{}, newError(ErrValidation, "Missing required fields")
	}

	hashedPassword, err := auth.HashPassword(password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return models.Account{}, wrapError(ErrValidation,
			fmt.Sprintf("Password must be at most %d bytes", auth.MaxPasswordLength), err)
	}
	if err != nil {
		return models.Account{}, err
	}

	account := models.Account{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		CreatedAt:    s.now().UTC().Truncate(time.Microsecond),
	}

	err = s.db.WithTx(ctx, func(tx *database.Tx) error {
		if taken, err := exists(ctx, tx, "SELECT 1 FROM account WHERE username = ?", username); err != nil {
			return err
		} else if taken {
			return newError(ErrConflict, "Username already exists")
		}
		if taken, err := exists(ctx, tx, "SELECT 1 FROM account WHERE email = ?", email); err != nil {
			return err
		} else if taken {
			return newError(ErrConflict, "Email already exists")
		}

		row := tx.QueryRowContext(ctx, tx.Rebind(
			"INSERT INTO account (username, email, password_hash, created_at) VALUES (?, ?, ?, ?) RETURNING id"),
			account.Username, account.Email, account.PasswordHash, account.CreatedAt)
		return row.Scan(&account.ID)
	})
	if err != nil {
		if errors.Is(database.MapError(err), database.ErrConflict) {
			return models.Account{}, wrapError(ErrConflict, "Username or email already exists", err)
		}
		return models.Account{}, err
	}

	// Return account without password hash
	account.PasswordHash = ""
	return account, nil
}

// Authenticate verifies an account's credentials. Unknown usernames and
// wrong passwords fail the same way.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (models.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.Account{}, newError(ErrValidation, "Missing required fields")
	}

	account, err := s.getAccount(ctx, "username = ?", username)
	if errors.Is(err, database.ErrNotFound) {
		return models.Account{}, newError(ErrUnauthorized, "Invalid username or password")
	}
	if err != nil {
		return models.Account{}, err
	}

	if err := auth.VerifyPassword(account.PasswordHash, password); err != nil {
		return models.Account{}, wrapError(ErrUnauthorized, "Invalid username or password", err)
	}

	// Don't send the password hash to the client
	account.PasswordHash = ""
	return account, nil
}

// GetAccountByID retrieves a single account by its ID, without the password hash.
func (s *AccountService) GetAccountByID(ctx context.Context, id int64) (models.Account, error) {
	account, err := s.getAccount(ctx, "id = ?", id)
	if errors.Is(err, database.ErrNotFound) {
		return models.Account{}, newError(ErrNotFound, "User not found")
	}
	if err != nil {
		return models.Account{}, err
	}
	account.PasswordHash = ""
	return account, nil
}

func (s *AccountService) getAccount(ctx context.Context, where string, arg any) (models.Account, error) {
	var account models.Account
	row := s.db.QueryRowContext(ctx, s.db.Rebind("SELECT "+accountColumns+" FROM account WHERE "+where), arg)
	err := row.Scan(&account.ID, &account.Username, &account.Email, &account.PasswordHash, &account.CreatedAt)
	if err != nil {
		return models.Account{}, fmt.Errorf("failed to load account: %w", database.MapError(err))
	}
	return account, nil
}

// exists reports whether query returns at least one row.
func exists(ctx context.Context, q database.Querier, query string, args ...any) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, q.Rebind(query), args...).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}
