// Package deviceqr issues the QR codes printed on devices. Each code points
// at the public logging form of one device.
package deviceqr

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"inspectlog/config"
	"inspectlog/database"
	"inspectlog/model"

	"github.com/jmoiron/sqlx"
	"github.com/skip2/go-qrcode"
)

var ErrMissingDeviceID = errors.New("device ID is required")

const (
	StatusCreated = "created"
	StatusUpdated = "updated"

	dataURIPrefix = "data:image/png;base64,"
)

type Result struct {
	QRCodeURL string       `json:"qrCodeUrl"`
	Device    model.Device `json:"device"`
	Status    string       `json:"status"`
}

type Service struct {
	db       *sqlx.DB
	settings func() config.Config
}

// NewService reads base URL, QR size and default location from settings on
// every call so changes saved through the config endpoint apply at once.
// A nil settings uses config.GetConfig.
func NewService(db *sqlx.DB, settings func() config.Config) *Service {
	if settings == nil {
		settings = config.GetConfig
	}
	return &Service{db: db, settings: settings}
}

// LogURL is the address encoded in a device's QR code.
func LogURL(baseURL, deviceID string) string {
	return strings.TrimRight(baseURL, "/") + "/log/" + url.PathEscape(deviceID)
}

// Issue creates the device if it does not exist yet, then (re)generates and
// stores its QR code.
func (s *Service) Issue(ctx context.Context, deviceID string) (Result, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return Result{}, ErrMissingDeviceID
	}
	cfg := s.settings()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return Result{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	status := StatusUpdated
	device, err := database.GetDeviceByID(ctx, tx, deviceID)
	if errors.Is(err, database.ErrDeviceNotFound) {
		placeholder := model.PlaceholderDevice(deviceID, cfg.DefaultLocation)
		if err := database.CreateDevice(ctx, tx, &placeholder); err != nil {
			return Result{}, err
		}
		device, status = &placeholder, StatusCreated
	} else if err != nil {
		return Result{}, err
	}

	dataURI, err := Encode(LogURL(cfg.BaseURL, deviceID), cfg.QRSize)
	if err != nil {
		return Result{}, err
	}
	if err := database.UpdateDeviceQRCode(ctx, tx, deviceID, dataURI); err != nil {
		return Result{}, err
	}
	if err := tx.Commit(); err != nil {
		return Result{}, fmt.Errorf("failed to commit QR code for %s: %w", deviceID, err)
	}

	device.QRCodeURL = dataURI
	return Result{QRCodeURL: dataURI, Device: *device, Status: status}, nil
}

// Encode renders content as a PNG QR code and returns it as a data URI.
func Encode(content string, size int) (string, error) {
	if size <= 0 {
		size = config.Defaults().QRSize
	}
	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR code: %w", err)
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(png), nil
}

// DecodePNG returns the PNG bytes of a data URI produced by Encode.
func DecodePNG(dataURI string) ([]byte, error) {
	if !strings.HasPrefix(dataURI, dataURIPrefix) {
		return nil, fmt.Errorf("not a PNG data URI")
	}
	return base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURI, dataURIPrefix))
}
