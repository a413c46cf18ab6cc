// Package device serves the admin endpoints that list, (re)issue QR codes
// for, label and delete devices.
package device

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"inspectlog/config"
	"inspectlog/database"
	"inspectlog/deviceqr"
	"inspectlog/label"
	"inspectlog/respond"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
)

type deviceRequest struct {
	DeviceID string `json:"deviceId"`
}

func decodeDeviceID(r *http.Request) (string, error) {
	var req deviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", fmt.Errorf("%w: %v", deviceqr.ErrMissingDeviceID, err)
	}
	id := strings.TrimSpace(req.DeviceID)
	if id == "" {
		return "", deviceqr.ErrMissingDeviceID
	}
	return id, nil
}

// ListDevicesHandler returns every device.
func ListDevicesHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		devices, err := database.GetAllDevices(r.Context(), db)
		if err != nil {
			respond.Error(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, devices)
	}
}

// GenerateQRHandler creates the device on first use and (re)issues its QR code.
func GenerateQRHandler(svc *deviceqr.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := decodeDeviceID(r)
		if err != nil {
			respond.Error(w, err)
			return
		}
		result, err := svc.Issue(r.Context(), id)
		if err != nil {
			respond.Error(w, err)
			return
		}
		log.Printf("QR code %s for device %s", result.Status, id)
		respond.JSON(w, http.StatusOK, result)
	}
}

// DeleteDeviceHandler removes a device together with all of its logs.
func DeleteDeviceHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := decodeDeviceID(r)
		if err != nil {
			respond.Error(w, err)
			return
		}
		removed, err := database.DeleteDeviceWithLogs(r.Context(), db, id)
		if err != nil {
			respond.Error(w, err)
			return
		}
		log.Printf("Deleted device %s and %d logs", id, removed)
		respond.JSON(w, http.StatusOK, map[string]interface{}{
			"message":     fmt.Sprintf("Device %s and its logs deleted successfully.", id),
			"deletedLogs": removed,
		})
	}
}

// LabelHandler serves the printable label of a device as HTML (default),
// PDF (?format=pdf) or the bare QR image (?format=png).
func LabelHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["deviceId"]
		d, err := database.GetDeviceByID(r.Context(), db, id)
		if err != nil {
			respond.Error(w, err)
			return
		}

		format := r.URL.Query().Get("format")
		if format == "png" {
			png, err := deviceqr.DecodePNG(d.QRCodeURL)
			if err != nil {
				respond.Message(w, http.StatusBadRequest, "Device has no QR code yet")
				return
			}
			w.Header().Set("Content-Type", "image/png")
			w.Write(png)
			return
		}

		page, err := label.HTML(*d, deviceqr.LogURL(config.GetConfig().BaseURL, d.ID))
		if err != nil {
			respond.Error(w, err)
			return
		}

		switch format {
		case "", "html":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte(page))
		case "pdf":
			pdf, err := label.PDF(r.Context(), page)
			if err != nil {
				respond.Error(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/pdf")
			w.Header().Set("Content-Disposition", "inline; filename*=UTF-8''"+url.PathEscape("label_"+d.ID+".pdf"))
			w.Write(pdf)
		default:
			respond.Message(w, http.StatusBadRequest, "Unknown label format: "+format)
		}
	}
}
