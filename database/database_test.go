package database_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"inspectlog/database"
	"inspectlog/loader"
	"inspectlog/model"

	"github.com/jmoiron/sqlx"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := loader.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := loader.InitDatabase(context.Background(), db, "", "Unknown"); err != nil {
		t.Fatalf("InitDatabase: %v", err)
	}
	return db
}

func addDevice(t *testing.T, db *sqlx.DB, id string) {
	t.Helper()
	d := model.PlaceholderDevice(id, "")
	if err := database.CreateDevice(context.Background(), db, &d); err != nil {
		t.Fatalf("CreateDevice(%s): %v", id, err)
	}
}

func newLog(deviceID, day, nurse string) *model.Log {
	return &model.Log{
		DeviceID:               deviceID,
		Day:                    day,
		WeekDay:                "Tuesday",
		Time:                   "08:00",
		DailyCodeReadinessTest: true,
		DailyBatteryCheck:      true,
		PadsNotExpired:         true,
		ExpirationDate:         "2025-01-31",
		NurseName:              nurse,
	}
}

func TestInsertLogRequiresDevice(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	err := database.InsertLog(ctx, db, newLog("NOPE-1", "2024-01-02", "Alice"))
	if !errors.Is(err, database.ErrDeviceNotFound) {
		t.Fatalf("InsertLog error = %v, want ErrDeviceNotFound", err)
	}
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM logs`); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("logs = %d, want 0", n)
	}
}

func TestInsertAndReadLogs(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	addDevice(t, db, "DEF-001")

	first := newLog("DEF-001", "2024-01-02", "Alice")
	second := newLog("DEF-001", "2024-01-01", "Bob")
	second.DailyBatteryCheck = false
	second.CorrectiveAction = "replaced battery"
	for _, l := range []*model.Log{first, second} {
		if err := database.InsertLog(ctx, db, l); err != nil {
			t.Fatalf("InsertLog: %v", err)
		}
		if l.ID == "" || l.CreatedAt.IsZero() {
			t.Fatalf("InsertLog did not assign id/createdAt: %+v", l)
		}
	}

	logs, err := database.GetLogsByDevice(ctx, db, "DEF-001")
	if err != nil {
		t.Fatalf("GetLogsByDevice: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("logs = %d, want 2", len(logs))
	}
	if logs[0].ID != second.ID {
		t.Fatalf("first log = %s, want most recently created %s", logs[0].ID, second.ID)
	}
	got := logs[0]
	if got.DailyBatteryCheck || !got.PadsNotExpired || got.CorrectiveAction != "replaced battery" || got.ExpirationDate != "2025-01-31" {
		t.Fatalf("stored log = %+v", got)
	}
}

func TestUpdateLog(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	addDevice(t, db, "DEF-001")

	l := newLog("DEF-001", "2024-01-02", "Alice")
	if err := database.InsertLog(ctx, db, l); err != nil {
		t.Fatalf("InsertLog: %v", err)
	}

	edit := *newLog("", "2024-01-09", "Alice RN")
	edit.PadsNotExpired = false
	updated, err := database.UpdateLog(ctx, db, l.ID, edit)
	if err != nil {
		t.Fatalf("UpdateLog: %v", err)
	}
	if updated.DeviceID != "DEF-001" || updated.Day != "2024-01-09" || updated.PadsNotExpired {
		t.Fatalf("updated = %+v", updated)
	}

	stored, err := database.GetLogByID(ctx, db, l.ID)
	if err != nil {
		t.Fatalf("GetLogByID: %v", err)
	}
	if stored.NurseName != "Alice RN" || !stored.CreatedAt.Equal(l.CreatedAt) {
		t.Fatalf("stored = %+v", stored)
	}

	edit.DeviceID = "NOPE-1"
	if _, err := database.UpdateLog(ctx, db, l.ID, edit); !errors.Is(err, database.ErrDeviceNotFound) {
		t.Fatalf("UpdateLog to unknown device error = %v", err)
	}
	if _, err := database.UpdateLog(ctx, db, "missing", edit); !errors.Is(err, database.ErrLogNotFound) {
		t.Fatalf("UpdateLog missing error = %v", err)
	}
}

func TestDeleteLog(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	addDevice(t, db, "DEF-001")

	l := newLog("DEF-001", "2024-01-02", "Alice")
	if err := database.InsertLog(ctx, db, l); err != nil {
		t.Fatalf("InsertLog: %v", err)
	}
	if err := database.DeleteLog(ctx, db, l.ID); err != nil {
		t.Fatalf("DeleteLog: %v", err)
	}
	if err := database.DeleteLog(ctx, db, l.ID); !errors.Is(err, database.ErrLogNotFound) {
		t.Fatalf("second DeleteLog error = %v, want ErrLogNotFound", err)
	}
}

func TestDeleteDeviceCascades(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	addDevice(t, db, "DEF-001")
	addDevice(t, db, "DEF-002")

	for _, id := range []string{"DEF-001", "DEF-001", "DEF-002"} {
		if err := database.InsertLog(ctx, db, newLog(id, "2024-01-02", "Alice")); err != nil {
			t.Fatalf("InsertLog: %v", err)
		}
	}

	removed, err := database.DeleteDeviceWithLogs(ctx, db, "DEF-001")
	if err != nil {
		t.Fatalf("DeleteDeviceWithLogs: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed logs = %d, want 2", removed)
	}

	logs, err := database.GetLogsByDevice(ctx, db, "DEF-001")
	if err != nil {
		t.Fatalf("GetLogsByDevice: %v", err)
	}
	if logs == nil || len(logs) != 0 {
		t.Fatalf("logs after delete = %v, want empty slice", logs)
	}
	if _, err := database.GetDeviceByID(ctx, db, "DEF-001"); !errors.Is(err, database.ErrDeviceNotFound) {
		t.Fatalf("GetDeviceByID after delete error = %v", err)
	}

	other, err := database.GetLogsByDevice(ctx, db, "DEF-002")
	if err != nil || len(other) != 1 {
		t.Fatalf("DEF-002 logs = %d (%v), want 1", len(other), err)
	}

	if _, err := database.DeleteDeviceWithLogs(ctx, db, "DEF-001"); !errors.Is(err, database.ErrDeviceNotFound) {
		t.Fatalf("second delete error = %v, want ErrDeviceNotFound", err)
	}
}

func TestUpdateDeviceQRCode(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	addDevice(t, db, "DEF-001")

	if err := database.UpdateDeviceQRCode(ctx, db, "DEF-001", "data:image/png;base64,AAAA"); err != nil {
		t.Fatalf("UpdateDeviceQRCode: %v", err)
	}
	d, err := database.GetDeviceByID(ctx, db, "DEF-001")
	if err != nil {
		t.Fatalf("GetDeviceByID: %v", err)
	}
	if d.QRCodeURL != "data:image/png;base64,AAAA" {
		t.Fatalf("QRCodeURL = %q", d.QRCodeURL)
	}
	if err := database.UpdateDeviceQRCode(ctx, db, "NOPE", "x"); !errors.Is(err, database.ErrDeviceNotFound) {
		t.Fatalf("unknown device error = %v", err)
	}
}
