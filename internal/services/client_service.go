package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/isdelr/weight-tracker-be/internal/database"
	"github.com/isdelr/weight-tracker-be/internal/models"
)

// ClientServiceProvider defines the interface for client services.
type ClientServiceProvider interface {
	CreateClient(ctx context.Context, caller models.Caller, name, email string) (models.Client, error)
	GetClientsForAccount(ctx context.Context, caller models.Caller) ([]models.Client, error)
	GetClient(ctx context.Context, caller models.Caller, id int64) (models.Client, error)
	DeleteClient(ctx context.Context, caller models.Caller, id int64) error
}

// ClientService provides business logic for a trainer's clients. Every
// operation is scoped to clients the caller owns.
type ClientService struct {
	db  *database.DB
	now func() time.Time
}

// NewClientService creates a new ClientService.
func NewClientService(db *database.DB) *ClientService {
	return &ClientService{db: db, now: time.Now}
}

const clientColumns = "id, name, email, created_at, user_id"

// CreateClient adds a client owned by the caller. Client emails are unique
// across all trainers.
func (s *ClientService) CreateClient(ctx context.Context, caller models.Caller, name, email string) (models.Client, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return models.Client{}, newError(ErrValidation, "Name and email are required")
	}

	client := models.Client{
		Name:      name,
		Email:     email,
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
		Owner:     models.OwnedBy(caller.AccountID),
	}

	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		taken, err := exists(ctx, tx, "SELECT 1 FROM client WHERE email = ?", email)
		if err != nil {
			return err
		}
		if taken {
			return newError(ErrConflict, "Email already registered")
		}

		row := tx.QueryRowContext(ctx, tx.Rebind(
			"INSERT INTO client (name, email, created_at, user_id) VALUES (?, ?, ?, ?) RETURNING id"),
			client.Name, client.Email, client.CreatedAt, client.Owner)
		return row.Scan(&client.ID)
	})
	if err != nil {
		if errors.Is(database.MapError(err), database.ErrConflict) {
			return models.Client{}, wrapError(ErrConflict, "Email already registered", err)
		}
		return models.Client{}, err
	}
	return client, nil
}

// GetClientsForAccount lists the caller's clients in insertion order.
func (s *ClientService) GetClientsForAccount(ctx context.Context, caller models.Caller) ([]models.Client, error) {
	rows, err := s.db.QueryContext(ctx, s.db.Rebind(
		"SELECT "+clientColumns+" FROM client WHERE user_id = ? ORDER BY id"), caller.AccountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := []models.Client{}
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	return clients, rows.Err()
}

// GetClient retrieves one of the caller's clients.
func (s *ClientService) GetClient(ctx context.Context, caller models.Caller, id int64) (models.Client, error) {
	return ownedClient(ctx, s.db, caller, id)
}

// DeleteClient removes one of the caller's clients together with all of its
// weight entries.
func (s *ClientService) DeleteClient(ctx context.Context, caller models.Caller, id int64) error {
	return s.db.WithTx(ctx, func(tx *database.Tx) error {
		if _, err := ownedClient(ctx, tx, caller, id); err != nil {
			return err
		}
		// Children first so the cascade holds on stores without ON DELETE CASCADE.
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM weight_entry WHERE client_id = ?"), id); err != nil {
			return fmt.Errorf("failed to delete weight entries: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM client WHERE id = ?"), id); err != nil {
			return fmt.Errorf("failed to delete client: %w", err)
		}
		return nil
	})
}

// ownedClient loads a client and checks that the caller owns it. A client
// that exists but belongs to someone else, or to no one, is Forbidden.
func ownedClient(ctx context.Context, q database.Querier, caller models.Caller, id int64) (models.Client, error) {
	row := q.QueryRowContext(ctx, q.Rebind("SELECT "+clientColumns+" FROM client WHERE id = ?"), id)
	client, err := scanClient(row)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return models.Client{}, newError(ErrNotFound, "Client not found")
		}
		return models.Client{}, err
	}

	if !client.Owner.Is(caller.AccountID) {
		return models.Client{}, newError(ErrForbidden, "Unauthorized access")
	}
	return client, nil
}

// scanClient is a helper function to scan a single row into a Client struct.
func scanClient(scanner interface{ Scan(...any) error }) (models.Client, error) {
	var client models.Client
	err := scanner.Scan(&client.ID, &client.Name, &client.Email, &client.CreatedAt, &client.Owner)
	if err != nil {
		return models.Client{}, database.MapError(err)
	}
	return client, nil
}
