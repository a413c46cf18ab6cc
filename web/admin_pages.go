package web

import (
	"fmt"
	"log"
	"net/http"

	"inspectlog/database"
	"inspectlog/model"
)

type adminPage struct {
	pageData
	Devices []model.Device
}

func (p *Pages) admin(w http.ResponseWriter, r *http.Request) {
	devices, err := database.GetAllDevices(r.Context(), p.db)
	if err != nil {
		log.Printf("ERROR: failed to load devices: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	p.render(w, http.StatusOK, "admin.html", adminPage{pageData: newPageData(r), Devices: devices})
}

func (p *Pages) issueQR(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	result, err := p.qr.Issue(r.Context(), r.PostForm.Get("deviceId"))
	if err != nil {
		log.Printf("WARN: QR code not issued: %v", err)
		redirectWithNotice(w, r, "/admin", "QR code not generated: "+formError(err))
		return
	}
	redirectWithNotice(w, r, "/admin", fmt.Sprintf("QR code %s for %s.", result.Status, result.Device.ID))
}

func (p *Pages) deleteDevice(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	id := r.PostForm.Get("deviceId")
	removed, err := database.DeleteDeviceWithLogs(r.Context(), p.db, id)
	if err != nil {
		log.Printf("WARN: device %s not deleted: %v", id, err)
		redirectWithNotice(w, r, "/admin", "Device not deleted: "+formError(err))
		return
	}
	redirectWithNotice(w, r, "/admin", fmt.Sprintf("Device %s and its %d logs deleted.", id, removed))
}
