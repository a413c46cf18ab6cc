// Package respond writes the JSON bodies shared by every API handler.
package respond

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"inspectlog/database"
	"inspectlog/deviceqr"
	"inspectlog/logview"
	"inspectlog/model"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("WARN: failed to encode JSON response: %v", err)
	}
}

// Message writes {"message": msg}.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"message": msg})
}

// Error maps err onto the API's status codes. Validation and unknown-record
// errors are 400; anything else is logged and returned as 500 with its text.
func Error(w http.ResponseWriter, err error) {
	if Status(err) == http.StatusBadRequest {
		Message(w, http.StatusBadRequest, clientMessage(err))
		return
	}
	log.Printf("ERROR: %v", err)
	JSON(w, http.StatusInternalServerError, map[string]string{
		"message": "Internal server error",
		"error":   err.Error(),
	})
}

// Status reports the status code Error uses for err.
func Status(err error) int {
	switch {
	case errors.Is(err, database.ErrDeviceNotFound),
		errors.Is(err, database.ErrLogNotFound),
		errors.Is(err, deviceqr.ErrMissingDeviceID),
		errors.Is(err, model.ErrMissingField),
		errors.Is(err, model.ErrInvalidField),
		errors.Is(err, logview.ErrInvalidParam):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func clientMessage(err error) string {
	switch {
	case errors.Is(err, database.ErrDeviceNotFound):
		return "Device not found"
	case errors.Is(err, database.ErrLogNotFound):
		return "Log not found"
	case errors.Is(err, deviceqr.ErrMissingDeviceID):
		return "Device ID is required."
	}
	return err.Error()
}
