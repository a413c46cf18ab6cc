package deviceqr

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"inspectlog/config"
	"inspectlog/database"
	"inspectlog/loader"

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

func testSettings() config.Config {
	c := config.Defaults()
	c.BaseURL = "https://inspect.example.org/"
	c.QRSize = 128
	return c
}

func TestIssueCreatesThenUpdates(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db, testSettings)
	ctx := context.Background()

	first, err := svc.Issue(ctx, "DEF-001")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if first.Status != StatusCreated {
		t.Fatalf("status = %q, want %q", first.Status, StatusCreated)
	}
	if first.Device.Name != "Device DEF-001" || first.Device.Location != "Unknown" {
		t.Fatalf("device = %+v, want placeholder", first.Device)
	}
	if !strings.HasPrefix(first.QRCodeURL, "data:image/png;base64,") || first.Device.QRCodeURL != first.QRCodeURL {
		t.Fatalf("qrCodeUrl = %.40q", first.QRCodeURL)
	}

	png, err := DecodePNG(first.QRCodeURL)
	if err != nil {
		t.Fatalf("DecodePNG: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Fatalf("decoded image is not a PNG")
	}

	second, err := svc.Issue(ctx, " DEF-001 ")
	if err != nil {
		t.Fatalf("second Issue: %v", err)
	}
	if second.Status != StatusUpdated {
		t.Fatalf("status = %q, want %q", second.Status, StatusUpdated)
	}

	devices, err := database.GetAllDevices(ctx, db)
	if err != nil {
		t.Fatalf("GetAllDevices: %v", err)
	}
	if len(devices) != 1 {
		t.Fatalf("devices = %d, want 1", len(devices))
	}
	if devices[0].QRCodeURL != second.QRCodeURL {
		t.Fatalf("stored QR code differs from returned one")
	}
}

func TestIssueRejectsBlankID(t *testing.T) {
	svc := NewService(nil, testSettings)
	if _, err := svc.Issue(context.Background(), "   "); !errors.Is(err, ErrMissingDeviceID) {
		t.Fatalf("Issue error = %v, want ErrMissingDeviceID", err)
	}
}

func TestLogURL(t *testing.T) {
	got := LogURL("https://inspect.example.org/", "ICU 3/A")
	want := "https://inspect.example.org/log/ICU%203%2FA"
	if got != want {
		t.Fatalf("LogURL = %q, want %q", got, want)
	}
}
