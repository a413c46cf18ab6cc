// Package inspection serves the log endpoints: the public form submission and
// the admin read, edit, delete, view and export calls.
package inspection

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"time"

	"inspectlog/database"
	"inspectlog/export"
	"inspectlog/logview"
	"inspectlog/model"
	"inspectlog/respond"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// clock dates export filenames.
var clock = time.Now

// LoadView reads the device's logs and runs them through the view pipeline
// using the filter, sort and page parameters in query.
func LoadView(ctx context.Context, db *sqlx.DB, deviceID string, query url.Values) (logview.View, logview.Params, error) {
	params, err := logview.ParseParams(query)
	if err != nil {
		return logview.View{}, logview.Params{}, err
	}
	logs, err := database.GetLogsByDevice(ctx, db, deviceID)
	if err != nil {
		return logview.View{}, logview.Params{}, err
	}
	return logview.Apply(logs, params), params, nil
}

// LogsByDeviceHandler returns a device's logs, newest first.
func LogsByDeviceHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logs, err := database.GetLogsByDevice(r.Context(), db, mux.Vars(r)["deviceId"])
		if err != nil {
			respond.Error(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, logs)
	}
}

// CreateLogHandler stores a submitted checklist. The device must exist.
func CreateLogHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in model.LogInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			respond.Message(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		entry, err := in.Normalize()
		if err != nil {
			respond.Error(w, err)
			return
		}
		if err := database.InsertLog(r.Context(), db, &entry); err != nil {
			respond.Error(w, err)
			return
		}
		log.Printf("Log %s recorded for device %s by %s", entry.ID, entry.DeviceID, entry.NurseName)
		respond.JSON(w, http.StatusCreated, entry)
	}
}

// UpdateLogHandler rewrites every field of an existing log. A body without
// deviceId keeps the log on its current device.
func UpdateLogHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["logId"]
		var in model.LogInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			respond.Message(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if in.DeviceID == "" {
			current, err := database.GetLogByID(r.Context(), db, id)
			if err != nil {
				respond.Error(w, err)
				return
			}
			in.DeviceID = current.DeviceID
		}
		entry, err := in.Normalize()
		if err != nil {
			respond.Error(w, err)
			return
		}
		updated, err := database.UpdateLog(r.Context(), db, id, entry)
		if err != nil {
			respond.Error(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, updated)
	}
}

// DeleteLogHandler removes one log and answers 204.
func DeleteLogHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := database.DeleteLog(r.Context(), db, mux.Vars(r)["logId"]); err != nil {
			respond.Error(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ViewHandler returns the filtered, sorted and paginated logs of a device.
func ViewHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, _, err := LoadView(r.Context(), db, mux.Vars(r)["deviceId"], r.URL.Query())
		if err != nil {
			respond.Error(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, view)
	}
}

// ExportHandler downloads every filtered row (all pages) of a device's logs.
// variant selects the checklist workbook (default), the simple workbook or CSV.
func ExportHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deviceID := mux.Vars(r)["deviceId"]
		view, _, err := LoadView(r.Context(), db, deviceID, r.URL.Query())
		if err != nil {
			respond.Error(w, err)
			return
		}

		now := clock().UTC()
		switch variant := r.URL.Query().Get("variant"); variant {
		case "", "template", "simple":
			build, filename := export.Template, export.TemplateFilename(deviceID, now)
			if variant == "simple" {
				build, filename = export.Simple, export.SimpleFilename()
			}
			book, err := build(view.Rows)
			if err != nil {
				respond.Error(w, err)
				return
			}
			defer book.Close()

			w.Header().Set("Content-Type", xlsxContentType)
			setAttachment(w, filename)
			if _, err := book.WriteTo(w); err != nil {
				log.Printf("ERROR: failed to write export for %s: %v", deviceID, err)
			}
		case "csv":
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			setAttachment(w, export.CSVFilename(deviceID, now))
			if err := export.CSV(w, view.Rows); err != nil {
				log.Printf("ERROR: failed to write CSV export for %s: %v", deviceID, err)
			}
		default:
			respond.Message(w, http.StatusBadRequest, "Unknown export variant: "+variant)
		}
	}
}

func setAttachment(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
}
