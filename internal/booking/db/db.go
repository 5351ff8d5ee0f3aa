package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"nudem-backend/internal/models"
)

// ErrNoRows is returned when a lookup matches nothing. Callers translate it
// into their own not-found error.
var ErrNoRows = sql.ErrNoRows

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	_, err := d.Bun.NewInsert().Model(booking).Exec(ctx)
	return err
}

func (d *DB) GetBookingByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	err := d.Bun.NewSelect().
		Model(&booking).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (d *DB) GetBookingsByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := d.Bun.NewSelect().
		Model(&bookings).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// GetBookingByTicketAndEmail requires both fields to match, which keeps
// ticket numbers alone from being enumerable.
func (d *DB) GetBookingByTicketAndEmail(ctx context.Context, ticketNumber, customerEmail string) (*models.Booking, error) {
	var booking models.Booking
	err := d.Bun.NewSelect().
		Model(&booking).
		Where("ticket_number = ?", ticketNumber).
		Where("customer_email = ?", customerEmail).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (d *DB) GetBookingByTicketAndToken(ctx context.Context, ticketNumber, ticketToken string) (*models.Booking, error) {
	var booking models.Booking
	err := d.Bun.NewSelect().
		Model(&booking).
		Where("ticket_number = ?", ticketNumber).
		Where("ticket_token = ?", ticketToken).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (d *DB) TicketNumberExists(ctx context.Context, ticketNumber string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.Booking)(nil)).
		Where("ticket_number = ?", ticketNumber).
		Exists(ctx)
}

func (d *DB) UpdateBooking(ctx context.Context, booking *models.Booking) error {
	res, err := d.Bun.NewUpdate().
		Model(booking).
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (d *DB) DeleteBooking(ctx context.Context, id string) error {
	res, err := d.Bun.NewDelete().
		Model((*models.Booking)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoRows
	}
	return nil
}

// IsNoRows reports whether err means the query matched nothing.
func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
