package model

import "time"

// Device is one piece of monitored equipment, keyed by its externally assigned code.
type Device struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Location  string    `db:"location" json:"location"`
	QRCodeURL string    `db:"qr_code_url" json:"qrCodeUrl"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// PlaceholderDevice returns the record created for an id seen for the first time.
func PlaceholderDevice(id, location string) Device {
	if location == "" {
		location = "Unknown"
	}
	return Device{
		ID:       id,
		Name:     "Device " + id,
		Location: location,
	}
}
