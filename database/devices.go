package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"inspectlog/model"

	"github.com/jmoiron/sqlx"
)

var ErrDeviceNotFound = errors.New("device not found")

const deviceColumns = `id, name, location, qr_code_url, created_at, updated_at`

func GetAllDevices(ctx context.Context, q sqlx.QueryerContext) ([]model.Device, error) {
	devices := []model.Device{}
	err := sqlx.SelectContext(ctx, q, &devices, `SELECT `+deviceColumns+` FROM devices ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all devices: %w", err)
	}
	return devices, nil
}

// GetDeviceByID returns ErrDeviceNotFound when no row matches.
func GetDeviceByID(ctx context.Context, q sqlx.QueryerContext, id string) (*model.Device, error) {
	var d model.Device
	err := sqlx.GetContext(ctx, q, &d, `SELECT `+deviceColumns+` FROM devices WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
		}
		return nil, fmt.Errorf("failed to get device %s: %w", id, err)
	}
	return &d, nil
}

func CreateDevice(ctx context.Context, ext sqlx.ExtContext, d *model.Device) error {
	now := time.Now().UTC()
	d.CreatedAt, d.UpdatedAt = now, now
	const q = `
		INSERT INTO devices (id, name, location, qr_code_url, created_at, updated_at)
		VALUES (:id, :name, :location, :qr_code_url, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, ext, q, d); err != nil {
		return fmt.Errorf("CreateDevice (ID: %s) failed: %w", d.ID, err)
	}
	return nil
}

// UpsertDeviceInTx inserts a device or refreshes its name and location.
// The QR image is left untouched.
func UpsertDeviceInTx(ctx context.Context, tx *sqlx.Tx, d model.Device) error {
	now := time.Now().UTC()
	const q = `
		INSERT INTO devices (id, name, location, qr_code_url, created_at, updated_at)
		VALUES (?, ?, ?, '', ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			location = excluded.location,
			updated_at = excluded.updated_at`
	if _, err := tx.ExecContext(ctx, q, d.ID, d.Name, d.Location, now, now); err != nil {
		return fmt.Errorf("UpsertDeviceInTx (ID: %s, Name: %s) failed: %w", d.ID, d.Name, err)
	}
	return nil
}

func UpdateDeviceQRCode(ctx context.Context, ext sqlx.ExtContext, id, qrCodeURL string) error {
	const q = `UPDATE devices SET qr_code_url = ?, updated_at = ? WHERE id = ?`
	res, err := ext.ExecContext(ctx, q, qrCodeURL, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update QR code for device %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}
	return nil
}

// DeleteDeviceWithLogs removes the device and every log that references it in
// one transaction. It returns the number of logs removed.
func DeleteDeviceWithLogs(ctx context.Context, db *sqlx.DB, id string) (int64, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM logs WHERE device_id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete logs of device %s: %w", id, err)
	}
	removedLogs, _ := res.RowsAffected()

	res, err = tx.ExecContext(ctx, `DELETE FROM devices WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete device %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit device deletion: %w", err)
	}
	return removedLogs, nil
}
