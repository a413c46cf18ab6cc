package web

import (
	"errors"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"strings"

	"inspectlog/database"
	"inspectlog/logview"
	"inspectlog/model"
	"inspectlog/render"
	"inspectlog/respond"

	"github.com/gorilla/mux"
)

type logFormPage struct {
	pageData
	DeviceID string
	Action   string
	Form     model.LogInput
	Saved    *model.Log
}

// inputFromForm reads the checklist form. Checked boxes post "true"; unchecked
// boxes are absent and read as false.
func inputFromForm(form url.Values, deviceID string) model.LogInput {
	check := func(name string) model.FormBool {
		return model.FormBool(strings.EqualFold(form.Get(name), "true"))
	}
	return model.LogInput{
		DeviceID:               deviceID,
		Day:                    form.Get("day"),
		WeekDay:                form.Get("weekDay"),
		Time:                   form.Get("time"),
		DailyCodeReadinessTest: check("dailyCodeReadinessTest"),
		DailyBatteryCheck:      check("dailyBatteryCheck"),
		WeeklyManualDefibTest:  check("weeklyManualDefibTest"),
		WeeklyPacerTest:        check("weeklyPacerTest"),
		WeeklyRecorder:         check("weeklyRecorder"),
		PadsNotExpired:         check("padsNotExpired"),
		ExpirationDate:         form.Get("expirationDate"),
		CorrectiveAction:       form.Get("correctiveAction"),
		NurseName:              form.Get("nurseName"),
	}
}

func formError(err error) string {
	switch {
	case errors.Is(err, database.ErrDeviceNotFound):
		return "This device is not registered. Ask an administrator to generate its QR code first."
	case respond.Status(err) == http.StatusBadRequest:
		return err.Error()
	}
	return "The inspection could not be saved. Please try again."
}

func (p *Pages) logForm(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["deviceId"]
	now := p.now()
	p.render(w, http.StatusOK, "log_form.html", logFormPage{
		pageData: newPageData(r),
		DeviceID: id,
		Action:   "/log/" + url.PathEscape(id),
		Form: model.LogInput{
			Day:  now.Format(model.DateLayout),
			Time: now.Format("15:04"),
		},
	})
}

func (p *Pages) logSubmit(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["deviceId"]
	data := logFormPage{pageData: newPageData(r), DeviceID: id, Action: "/log/" + url.PathEscape(id)}
	if err := r.ParseForm(); err != nil {
		data.Error = "The form could not be read."
		p.render(w, http.StatusBadRequest, "log_form.html", data)
		return
	}
	data.Form = inputFromForm(r.PostForm, id)

	entry, err := data.Form.Normalize()
	if err == nil {
		err = database.InsertLog(r.Context(), p.db, &entry)
	}
	if err != nil {
		status := respond.Status(err)
		if status == http.StatusInternalServerError {
			log.Printf("ERROR: failed to record log for %s: %v", id, err)
		}
		data.Error = formError(err)
		p.render(w, status, "log_form.html", data)
		return
	}

	log.Printf("Log %s recorded for device %s by %s", entry.ID, entry.DeviceID, entry.NurseName)
	data.Saved = &entry
	p.render(w, http.StatusCreated, "log_form.html", data)
}

type adminLogsPage struct {
	pageData
	DeviceID    string
	Params      logview.Params
	Status      string
	Statuses    []string
	View        logview.View
	Table       template.HTML
	PageLinks   []pageLink
	ExportLinks map[string]string
	Prev        map[string]string
	Edit        *model.Log
}

type pageLink struct {
	Number  int
	Href    string
	Current bool
}

// prevParams reads the filter values the form was rendered with. ok is false
// when the request did not come from the filter form.
func prevParams(q url.Values) (prev logview.Params, ok bool) {
	if _, ok := q["prev_status"]; !ok {
		return logview.Params{}, false
	}
	return logview.Params{
		From:   q.Get("prev_from"),
		To:     q.Get("prev_to"),
		Nurse:  q.Get("prev_nurse"),
		Status: logview.Status(q.Get("prev_status")),
		Search: q.Get("prev_q"),
	}, true
}

func (p *Pages) adminLogs(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["deviceId"]
	q := r.URL.Query()
	data := adminLogsPage{
		pageData: newPageData(r),
		DeviceID: id,
		Statuses: []string{string(logview.StatusAll), string(logview.StatusComplete), string(logview.StatusIssues)},
	}

	params, err := logview.ParseParams(q)
	if err != nil {
		data.Error = err.Error()
		params = logview.Params{Page: 1}
	}
	if prev, ok := prevParams(q); ok {
		params = params.Next(prev)
	}

	logs, err := database.GetLogsByDevice(r.Context(), p.db, id)
	if err != nil {
		log.Printf("ERROR: failed to load logs for %s: %v", id, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	view := logview.Apply(logs, params)

	base := "/admin/logs/" + url.PathEscape(id)
	data.Params = params
	data.View = view
	data.Status = string(params.Status)
	if data.Status == "" {
		data.Status = string(logview.StatusAll)
	}
	data.Prev = map[string]string{
		"prev_from":   params.From,
		"prev_to":     params.To,
		"prev_nurse":  params.Nurse,
		"prev_status": data.Status,
		"prev_q":      params.Search,
	}

	for n := 1; n <= view.TotalPages; n++ {
		pp := params
		pp.Page = n
		data.PageLinks = append(data.PageLinks, pageLink{Number: n, Href: withQuery(base, pp.Query()), Current: n == view.Page})
	}

	data.ExportLinks = make(map[string]string)
	for _, variant := range []string{"template", "simple", "csv"} {
		eq := params.Query()
		eq.Del("page")
		eq.Set("variant", variant)
		data.ExportLinks[variant] = withQuery("/api/loggers/"+url.PathEscape(id)+"/export", eq)
	}

	current := params
	current.Page = view.Page
	editQuery := current.Query().Encode()
	if editQuery != "" {
		editQuery += "&"
	}
	data.Table = template.HTML(render.RenderLogTableHTML(view.PageRows, sortLinker(base, current), base+"?"+editQuery+"edit="))

	if editID := q.Get("edit"); editID != "" {
		entry, err := database.GetLogByID(r.Context(), p.db, editID)
		if err != nil || entry.DeviceID != id {
			data.Error = "Log not found."
		} else {
			data.Edit = entry
		}
	}

	p.render(w, http.StatusOK, "admin_logs.html", data)
}

// sortLinker returns header links that sort by a column, newest or largest
// first, flipping the direction when the column is already the sort key.
func sortLinker(base string, current logview.Params) render.SortLink {
	field, dir := current.SortField, current.SortDir
	if field == "" {
		field = "day"
	}
	if dir == "" {
		dir = logview.Desc
	}
	return func(f string) string {
		next := current
		next.SortField = f
		next.SortDir = logview.Desc
		if f == field && dir == logview.Desc {
			next.SortDir = logview.Asc
		}
		return withQuery(base, next.Query())
	}
}

func withQuery(base string, q url.Values) string {
	if enc := q.Encode(); enc != "" {
		return base + "?" + enc
	}
	return base
}

func (p *Pages) editLog(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	base := "/admin/logs/" + url.PathEscape(vars["deviceId"])
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	entry, err := inputFromForm(r.PostForm, vars["deviceId"]).Normalize()
	if err == nil {
		_, err = database.UpdateLog(r.Context(), p.db, vars["logId"], entry)
	}
	if err != nil {
		if respond.Status(err) == http.StatusInternalServerError {
			log.Printf("ERROR: failed to update log %s: %v", vars["logId"], err)
		}
		redirectWithNotice(w, r, base, "Update failed: "+formError(err))
		return
	}
	redirectWithNotice(w, r, base, "Log updated.")
}

func (p *Pages) deleteLog(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	base := "/admin/logs/" + url.PathEscape(vars["deviceId"])
	if err := database.DeleteLog(r.Context(), p.db, vars["logId"]); err != nil {
		if respond.Status(err) == http.StatusInternalServerError {
			log.Printf("ERROR: failed to delete log %s: %v", vars["logId"], err)
		}
		redirectWithNotice(w, r, base, "Delete failed: "+formError(err))
		return
	}
	redirectWithNotice(w, r, base, "Log deleted.")
}
