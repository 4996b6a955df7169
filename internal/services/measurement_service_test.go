package services

import (
	"context"
	"testing"
	"time"

	"github.com/isdelr/weight-tracker-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestMeasurementService_CreateDefaultsDateToToday(t *testing.T) {
	f := newFixture(t)
	f.measurements.now = fixedClock(time.Date(2024, 3, 15, 23, 30, 0, 0, time.UTC))
	bob := f.createClient(t, f.alice, "Bob", "b@x.com")

	m, err := f.measurements.CreateMeasurement(context.Background(), f.alice,
		MeasurementInput{Weight: ptr(70.5), ClientID: &bob.ID})
	require.NoError(t, err)
	assert.Positive(t, m.ID)
	assert.Equal(t, 70.5, m.Weight)
	assert.Equal(t, bob.ID, m.ClientID)
	assert.Equal(t, "2024-03-15", m.Date.String())

	empty, err := f.measurements.CreateMeasurement(context.Background(), f.alice,
		MeasurementInput{Weight: ptr(70.0), ClientID: &bob.ID, Date: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", empty.Date.String())
}

func TestMeasurementService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	bob := f.createClient(t, f.alice, "Bob", "b@x.com")
	ctx := context.Background()

	tests := []struct {
		name    string
		in      MeasurementInput
		kind    error
		message string
	}{
		{"missing weight", MeasurementInput{ClientID: &bob.ID}, ErrValidation, "Weight and client_id are required"},
		{"missing client", MeasurementInput{Weight: ptr(70.0)}, ErrValidation, "Weight and client_id are required"},
		{"impossible date", MeasurementInput{Weight: ptr(70.0), ClientID: &bob.ID, Date: ptr("2024-02-30")}, ErrValidation, "Invalid date format. Use YYYY-MM-DD"},
		{"wrong layout", MeasurementInput{Weight: ptr(70.0), ClientID: &bob.ID, Date: ptr("03/15/2024")}, ErrValidation, "Invalid date format. Use YYYY-MM-DD"},
		{"zero weight", MeasurementInput{Weight: ptr(0.0), ClientID: &bob.ID}, ErrValidation, "Weight must be a positive number"},
		{"negative weight", MeasurementInput{Weight: ptr(-3.0), ClientID: &bob.ID}, ErrValidation, "Weight must be a positive number"},
		{"unknown unit", MeasurementInput{Weight: ptr(70.0), ClientID: &bob.ID, Unit: "stone"}, ErrValidation, "Unit must be kg or lb"},
		{"unknown client", MeasurementInput{Weight: ptr(70.0), ClientID: ptr(int64(999))}, ErrNotFound, "Client not found"},
		{"foreign client", MeasurementInput{Weight: ptr(70.0), ClientID: &bob.ID}, ErrForbidden, "Unauthorized access"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller := f.alice
			if tt.kind == ErrForbidden {
				caller = f.mallory
			}
			_, err := f.measurements.CreateMeasurement(ctx, caller, tt.in)
			require.ErrorIs(t, err, tt.kind)
			assert.EqualError(t, err, tt.message)
		})
	}

	entries, err := f.measurements.GetMeasurementsForClient(ctx, f.alice, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMeasurementService_CreateConvertsPounds(t *testing.T) {
	f := newFixture(t)
	bob := f.createClient(t, f.alice, "Bob", "b@x.com")

	m, err := f.measurements.CreateMeasurement(context.Background(), f.alice,
		MeasurementInput{Weight: ptr(155.0), ClientID: &bob.ID, Unit: models.UnitPounds})
	require.NoError(t, err)
	assert.Equal(t, 70.3, m.Weight)
}

func TestMeasurementService_ListIsOrderedByDate(t *testing.T) {
	f := newFixture(t)
	bob := f.createClient(t, f.alice, "Bob", "b@x.com")
	ctx := context.Background()

	for _, d := range []string{"2024-03-01", "2023-12-31", "2024-01-15", "2024-01-02"} {
		_, err := f.measurements.CreateMeasurement(ctx, f.alice,
			MeasurementInput{Weight: ptr(80.0), ClientID: &bob.ID, Date: ptr(d)})
		require.NoError(t, err)
	}

	entries, err := f.measurements.GetMeasurementsForClient(ctx, f.alice, bob.ID)
	require.NoError(t, err)
	var dates []string
	for _, e := range entries {
		dates = append(dates, e.Date.String())
	}
	assert.Equal(t, []string{"2023-12-31", "2024-01-02", "2024-01-15", "2024-03-01"}, dates)

	_, err = f.measurements.GetMeasurementsForClient(ctx, f.mallory, bob.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestMeasurementService_UpdateAppliesPresentFields(t *testing.T) {
	f := newFixture(t)
	bob := f.createClient(t, f.alice, "Bob", "b@x.com")
	ctx := context.Background()

	m, err := f.measurements.CreateMeasurement(ctx, f.alice,
		MeasurementInput{Weight: ptr(80.0), ClientID: &bob.ID, Date: ptr("2024-01-01")})
	require.NoError(t, err)

	updated, err := f.measurements.UpdateMeasurement(ctx, f.alice, m.ID, MeasurementInput{Weight: ptr(79.2)})
	require.NoError(t, err)
	assert.Equal(t, 79.2, updated.Weight)
	assert.Equal(t, "2024-01-01", updated.Date.String())

	updated, err = f.measurements.UpdateMeasurement(ctx, f.alice, m.ID, MeasurementInput{Date: ptr("2024-01-05")})
	require.NoError(t, err)
	assert.Equal(t, 79.2, updated.Weight)
	assert.Equal(t, "2024-01-05", updated.Date.String())

	_, err = f.measurements.UpdateMeasurement(ctx, f.alice, m.ID, MeasurementInput{Date: ptr("")})
	require.ErrorIs(t, err, ErrValidation)

	entries, err := f.measurements.GetMeasurementsForClient(ctx, f.alice, bob.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, updated.ID, entries[0].ID)
	assert.Equal(t, 79.2, entries[0].Weight)
	assert.True(t, updated.Date.Equal(entries[0].Date))
}

func TestMeasurementService_UpdateAndDeleteEnforceOwnership(t *testing.T) {
	f := newFixture(t)
	bob := f.createClient(t, f.alice, "Bob", "b@x.com")
	ctx := context.Background()

	m, err := f.measurements.CreateMeasurement(ctx, f.alice, MeasurementInput{Weight: ptr(80.0), ClientID: &bob.ID})
	require.NoError(t, err)

	_, err = f.measurements.UpdateMeasurement(ctx, f.mallory, m.ID, MeasurementInput{Weight: ptr(1.0)})
	require.ErrorIs(t, err, ErrForbidden)
	require.ErrorIs(t, f.measurements.DeleteMeasurement(ctx, f.mallory, m.ID), ErrForbidden)

	_, err = f.measurements.UpdateMeasurement(ctx, f.alice, m.ID+100, MeasurementInput{Weight: ptr(1.0)})
	require.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, "Weight entry not found")

	require.NoError(t, f.measurements.DeleteMeasurement(ctx, f.alice, m.ID))
	assert.ErrorIs(t, f.measurements.DeleteMeasurement(ctx, f.alice, m.ID), ErrNotFound)
}
