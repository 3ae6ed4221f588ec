package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tourbook/internal/models"
)

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (
				tour_id, tour_name, date, time, participants, total_price, currency,
				first_name, last_name, email, phone, country, hotel, room_number,
				billing_street, billing_city, billing_state, billing_postal_code,
				billing_country, billing_phone, billing_birthday,
				card_last4, cardholder_name, notes, status, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		booking.TourID,
		booking.TourName,
		booking.Date,
		booking.Time,
		booking.Participants,
		booking.TotalPrice,
		booking.Currency,
		booking.Customer.FirstName,
		booking.Customer.LastName,
		booking.Customer.Email,
		booking.Customer.Phone,
		booking.Customer.Country,
		booking.Customer.Hotel,
		booking.Customer.RoomNumber,
		booking.Billing.Street,
		booking.Billing.City,
		booking.Billing.State,
		booking.Billing.PostalCode,
		booking.Billing.Country,
		booking.Billing.Phone,
		booking.Billing.Birthday,
		booking.CardLast4,
		booking.CardholderName,
		booking.Notes,
		booking.Status,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now

	return nil
}

func (db *DB) CreatePayment(ctx context.Context, payment *models.Payment) error {
	query := `INSERT INTO payments (booking_id, provider, amount, currency, status, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		payment.BookingID,
		payment.Provider,
		payment.Amount,
		payment.Currency,
		payment.Status,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	payment.ID = id
	payment.CreatedAt = now

	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`

	booking, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	payments, err := db.GetPayments(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	booking.Payments = payments

	return booking, nil
}

func (db *DB) GetPayments(ctx context.Context, bookingID int64) ([]models.Payment, error) {
	query := `SELECT id, booking_id, provider, amount, currency, status, created_at
			FROM payments WHERE booking_id = ? ORDER BY created_at`

	rows, err := db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.BookingID, &p.Provider, &p.Amount, &p.Currency, &p.Status, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// GetBookingsByDateRange returns bookings whose tour date falls in
// [start, end], ordered by date then start time. Payments are not attached.
func (db *DB) GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
			WHERE date >= ? AND date <= ? ORDER BY date, time`

	rows, err := db.QueryContext(ctx, query, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings: %w", err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *booking)
	}
	return bookings, rows.Err()
}

const bookingColumns = `id, tour_id, tour_name, date, time, participants, total_price, currency,
			first_name, last_name, email, phone, country, hotel, room_number,
			billing_street, billing_city, billing_state, billing_postal_code,
			billing_country, billing_phone, billing_birthday,
			card_last4, cardholder_name, notes, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var b models.Booking
	err := row.Scan(
		&b.ID,
		&b.TourID,
		&b.TourName,
		&b.Date,
		&b.Time,
		&b.Participants,
		&b.TotalPrice,
		&b.Currency,
		&b.Customer.FirstName,
		&b.Customer.LastName,
		&b.Customer.Email,
		&b.Customer.Phone,
		&b.Customer.Country,
		&b.Customer.Hotel,
		&b.Customer.RoomNumber,
		&b.Billing.Street,
		&b.Billing.City,
		&b.Billing.State,
		&b.Billing.PostalCode,
		&b.Billing.Country,
		&b.Billing.Phone,
		&b.Billing.Birthday,
		&b.CardLast4,
		&b.CardholderName,
		&b.Notes,
		&b.Status,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
