package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"

	"inspectlog/config"
	"inspectlog/respond"
)

const (
	minQRSize = 64
	maxQRSize = 2048
)

// GetConfigHandler returns the settings an admin may change at runtime.
func GetConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, config.GetConfig())
	}
}

// SaveConfigHandler updates baseUrl, qrSize and defaultLocation. Fields not
// present in the body keep their current values.
func SaveConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		newCfg := config.GetConfig()
		if err := json.NewDecoder(r.Body).Decode(&newCfg); err != nil {
			respond.Message(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if err := validateBaseURL(newCfg.BaseURL); err != nil {
			respond.Message(w, http.StatusBadRequest, err.Error())
			return
		}
		if newCfg.QRSize < minQRSize || newCfg.QRSize > maxQRSize {
			respond.Message(w, http.StatusBadRequest, "qrSize must be between 64 and 2048")
			return
		}

		if err := config.SaveConfig(newCfg); err != nil {
			log.Printf("Error saving config: %v", err)
			respond.Message(w, http.StatusInternalServerError, "Failed to save settings.")
			return
		}
		respond.Message(w, http.StatusOK, "Settings saved.")
	}
}

// validateBaseURL accepts absolute http(s) URLs. QR codes issued afterwards point there.
func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return errors.New("baseUrl must be an absolute URL: " + raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("baseUrl must use http or https: " + raw)
	}
	return nil
}
