package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/isdelr/weight-tracker-be/internal/database"
	"github.com/isdelr/weight-tracker-be/internal/models"
)

// MeasurementInput carries the fields of a create or update request. Nil
// fields were absent from the request.
type MeasurementInput struct {
	Weight   *float64
	ClientID *int64
	Date     *string
	// Unit of Weight; empty means kilograms.
	Unit string
}

// MeasurementServiceProvider defines the interface for measurement services.
type MeasurementServiceProvider interface {
	CreateMeasurement(ctx context.Context, caller models.Caller, in MeasurementInput) (models.Measurement, error)
	GetMeasurementsForClient(ctx context.Context, caller models.Caller, clientID int64) ([]models.Measurement, error)
	UpdateMeasurement(ctx context.Context, caller models.Caller, id int64, in MeasurementInput) (models.Measurement, error)
	DeleteMeasurement(ctx context.Context, caller models.Caller, id int64) error
}

// MeasurementService provides business logic for weight entries. Access
// follows the ownership chain account → client → measurement.
type MeasurementService struct {
	db  *database.DB
	now func() time.Time
}

// NewMeasurementService creates a new MeasurementService.
func NewMeasurementService(db *database.DB) *MeasurementService {
	return &MeasurementService{db: db, now: time.Now}
}

const measurementColumns = "id, weight, date, client_id"

const invalidDateMessage = "Invalid date format. Use YYYY-MM-DD"

// CreateMeasurement records a weight for one of the caller's clients. The
// date defaults to today.
func (s *MeasurementService) CreateMeasurement(ctx context.Context, caller models.Caller, in MeasurementInput) (models.Measurement, error) {
	if in.Weight == nil || in.ClientID == nil {
		return models.Measurement{}, newError(ErrValidation, "Weight and client_id are required")
	}

	var m models.Measurement
	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		client, err := ownedClient(ctx, tx, caller, *in.ClientID)
		if err != nil {
			return err
		}

		date := models.NewDate(s.now())
		if in.Date != nil && *in.Date != "" {
			if date, err = parseDate(*in.Date); err != nil {
				return err
			}
		}
		weight, err := normalizeWeight(*in.Weight, in.Unit)
		if err != nil {
			return err
		}

		m = models.Measurement{Weight: weight, Date: date, ClientID: client.ID}
		row := tx.QueryRowContext(ctx, tx.Rebind(
			"INSERT INTO weight_entry (weight, date, client_id) VALUES (?, ?, ?) RETURNING id"),
			m.Weight, m.Date, m.ClientID)
		return row.Scan(&m.ID)
	})
	if err != nil {
		return models.Measurement{}, err
	}
	return m, nil
}

// GetMeasurementsForClient lists a client's weight entries by ascending date.
// Entries on the same day keep their insertion order.
func (s *MeasurementService) GetMeasurementsForClient(ctx context.Context, caller models.Caller, clientID int64) ([]models.Measurement, error) {
	if _, err := ownedClient(ctx, s.db, caller, clientID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, s.db.Rebind(
		"SELECT "+measurementColumns+" FROM weight_entry WHERE client_id = ? ORDER BY date ASC, id ASC"), clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.Measurement{}
	for rows.Next() {
		m, err := scanMeasurement(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, m)
	}
	return entries, rows.Err()
}

// UpdateMeasurement applies the fields present in in. ClientID is ignored;
// an entry never moves between clients.
func (s *MeasurementService) UpdateMeasurement(ctx context.Context, caller models.Caller, id int64, in MeasurementInput) (models.Measurement, error) {
	var m models.Measurement
	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		var err error
		if m, err = s.ownedMeasurement(ctx, tx, caller, id); err != nil {
			return err
		}

		if in.Weight != nil {
			if m.Weight, err = normalizeWeight(*in.Weight, in.Unit); err != nil {
				return err
			}
		}
		if in.Date != nil {
			if m.Date, err = parseDate(*in.Date); err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx, tx.Rebind("UPDATE weight_entry SET weight = ?, date = ? WHERE id = ?"),
			m.Weight, m.Date, m.ID)
		if err != nil {
			return fmt.Errorf("failed to update weight entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Measurement{}, err
	}
	return m, nil
}

// DeleteMeasurement removes one weight entry of a client the caller owns.
func (s *MeasurementService) DeleteMeasurement(ctx context.Context, caller models.Caller, id int64) error {
	return s.db.WithTx(ctx, func(tx *database.Tx) error {
		if _, err := s.ownedMeasurement(ctx, tx, caller, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM weight_entry WHERE id = ?"), id); err != nil {
			return fmt.Errorf("failed to delete weight entry: %w", err)
		}
		return nil
	})
}

func (s *MeasurementService) ownedMeasurement(ctx context.Context, q database.Querier, caller models.Caller, id int64) (models.Measurement, error) {
	row := q.QueryRowContext(ctx, q.Rebind("SELECT "+measurementColumns+" FROM weight_entry WHERE id = ?"), id)
	m, err := scanMeasurement(row)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return models.Measurement{}, newError(ErrNotFound, "Weight entry not found")
		}
		return models.Measurement{}, err
	}

	// The owning client always exists while the entry does.
	if _, err := ownedClient(ctx, q, caller, m.ClientID); err != nil {
		return models.Measurement{}, err
	}
	return m, nil
}

func parseDate(s string) (models.Date, error) {
	date, err := models.ParseDate(s)
	if err != nil {
		return models.Date{}, wrapError(ErrValidation, invalidDateMessage, err)
	}
	return date, nil
}

func normalizeWeight(value float64, unit string) (float64, error) {
	kg, err := models.ToKilograms(value, unit)
	if err != nil {
		return 0, wrapError(ErrValidation, "Unit must be kg or lb", err)
	}
	if kg <= 0 {
		return 0, newError(ErrValidation, "Weight must be a positive number")
	}
	return kg, nil
}

func scanMeasurement(scanner interface{ Scan(...any) error }) (models.Measurement, error) {
	var m models.Measurement
	if err := scanner.Scan(&m.ID, &m.Weight, &m.Date, &m.ClientID); err != nil {
		return models.Measurement{}, database.MapError(err)
	}
	return m, nil
}
