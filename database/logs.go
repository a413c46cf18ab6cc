package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"inspectlog/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrLogNotFound = errors.New("log not found")

const logColumns = `
	id, device_id, day, week_day, time,
	daily_code_readiness_test, daily_battery_check, weekly_manual_defib_test,
	weekly_pacer_test, weekly_recorder, pads_not_expired,
	expiration_date, corrective_action, nurse_name, created_at`

// GetLogsByDevice returns the device's logs, newest first.
func GetLogsByDevice(ctx context.Context, q sqlx.QueryerContext, deviceID string) ([]model.Log, error) {
	logs := []model.Log{}
	err := sqlx.SelectContext(ctx, q, &logs,
		`SELECT `+logColumns+` FROM logs WHERE device_id = ? ORDER BY created_at DESC, rowid DESC`, deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get logs for device %s: %w", deviceID, err)
	}
	return logs, nil
}

func GetLogByID(ctx context.Context, q sqlx.QueryerContext, id string) (*model.Log, error) {
	var l model.Log
	if err := sqlx.GetContext(ctx, q, &l, `SELECT `+logColumns+` FROM logs WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrLogNotFound, id)
		}
		return nil, fmt.Errorf("failed to get log %s: %w", id, err)
	}
	return &l, nil
}

// InsertLog assigns an id and creation time and stores the log.
// The referenced device must already exist.
func InsertLog(ctx context.Context, db *sqlx.DB, l *model.Log) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := GetDeviceByID(ctx, tx, l.DeviceID); err != nil {
		return err
	}

	l.ID = uuid.NewString()
	l.CreatedAt = time.Now().UTC()
	const q = `
		INSERT INTO logs (` + logColumns + `)
		VALUES (
			:id, :device_id, :day, :week_day, :time,
			:daily_code_readiness_test, :daily_battery_check, :weekly_manual_defib_test,
			:weekly_pacer_test, :weekly_recorder, :pads_not_expired,
			:expiration_date, :corrective_action, :nurse_name, :created_at)`
	if _, err := tx.NamedExecContext(ctx, q, l); err != nil {
		return fmt.Errorf("InsertLog (Device: %s) failed: %w", l.DeviceID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit log insert: %w", err)
	}
	return nil
}

// UpdateLog rewrites every editable field of the log. A blank DeviceID keeps
// the current owner; otherwise the new device must exist.
func UpdateLog(ctx context.Context, db *sqlx.DB, id string, l model.Log) (*model.Log, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := GetLogByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if l.DeviceID == "" {
		l.DeviceID = current.DeviceID
	} else if l.DeviceID != current.DeviceID {
		if _, err := GetDeviceByID(ctx, tx, l.DeviceID); err != nil {
			return nil, err
		}
	}
	l.ID = id
	l.CreatedAt = current.CreatedAt

	const q = `
		UPDATE logs SET
			device_id = :device_id, day = :day, week_day = :week_day, time = :time,
			daily_code_readiness_test = :daily_code_readiness_test,
			daily_battery_check = :daily_battery_check,
			weekly_manual_defib_test = :weekly_manual_defib_test,
			weekly_pacer_test = :weekly_pacer_test,
			weekly_recorder = :weekly_recorder,
			pads_not_expired = :pads_not_expired,
			expiration_date = :expiration_date,
			corrective_action = :corrective_action,
			nurse_name = :nurse_name
		WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, q, l); err != nil {
		return nil, fmt.Errorf("UpdateLog (ID: %s) failed: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit log update: %w", err)
	}
	return &l, nil
}

func DeleteLog(ctx context.Context, ext sqlx.ExecerContext, id string) error {
	res, err := ext.ExecContext(ctx, `DELETE FROM logs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete log %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrLogNotFound, id)
	}
	return nil
}
