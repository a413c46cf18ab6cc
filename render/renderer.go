package render

import (
	"fmt"
	"html"
	"strings"

	"inspectlog/logview"
	"inspectlog/model"
)

// Column is one header cell of the log table. Field is the sort key sent back
// when the header is clicked; only fields logview can sort by get a link.
type Column struct {
	Label string
	Field string
}

var LogColumns = []Column{
	{"Day", "day"},
	{"Week Day", "weekDay"},
	{"Time", "time"},
	{"Code Readiness", "dailyCodeReadinessTest"},
	{"Battery", "dailyBatteryCheck"},
	{"Manual Defib", "weeklyManualDefibTest"},
	{"Pacer", "weeklyPacerTest"},
	{"Recorder", "weeklyRecorder"},
	{"Pads OK", "padsNotExpired"},
	{"Pads Expire", "expirationDate"},
	{"Corrective Action", "correctiveAction"},
	{"Nurse", "nurseName"},
	{"Status", ""},
	{"", ""},
}

// SortLink builds the href for a header cell from the current query.
type SortLink func(field string) string

// RenderLogTableHTML returns the <thead> and <tbody> of the admin log table.
// sortLink may be nil for a static table.
func RenderLogTableHTML(rows []model.Log, sortLink SortLink, editBase string) string {
	var sb strings.Builder

	sortable := make(map[string]bool)
	for _, f := range logview.SortFields() {
		sortable[f] = true
	}

	sb.WriteString(`<thead><tr>`)
	for _, c := range LogColumns {
		if !sortable[c.Field] || sortLink == nil {
			sb.WriteString(fmt.Sprintf(`<th>%s</th>`, html.EscapeString(c.Label)))
			continue
		}
		sb.WriteString(fmt.Sprintf(`<th><a href="%s">%s</a></th>`,
			html.EscapeString(sortLink(c.Field)), html.EscapeString(c.Label)))
	}
	sb.WriteString(`</tr></thead>`)

	sb.WriteString(`<tbody>`)
	if len(rows) == 0 {
		sb.WriteString(fmt.Sprintf(`<tr><td colspan="%d">No logs found.</td></tr>`, len(LogColumns)))
	}
	for _, l := range rows {
		rowClass := "complete"
		status := "Complete"
		if l.HasIssues() {
			rowClass, status = "issues", "Issues"
		}
		sb.WriteString(fmt.Sprintf(`<tr class="%s">`, rowClass))
		sb.WriteString(cell(l.Day))
		sb.WriteString(cell(l.WeekDay))
		sb.WriteString(cell(l.Time))
		for _, ok := range []bool{
			l.DailyCodeReadinessTest, l.DailyBatteryCheck, l.WeeklyManualDefibTest,
			l.WeeklyPacerTest, l.WeeklyRecorder, l.PadsNotExpired,
		} {
			sb.WriteString(mark(ok))
		}
		sb.WriteString(cell(l.ExpirationDate))
		sb.WriteString(cell(l.CorrectiveAction))
		sb.WriteString(cell(l.NurseName))
		sb.WriteString(cell(status))
		if editBase != "" {
			sb.WriteString(fmt.Sprintf(`<td><a href="%s">Edit</a></td>`, html.EscapeString(editBase+l.ID)))
		} else {
			sb.WriteString(`<td></td>`)
		}
		sb.WriteString(`</tr>`)
	}
	sb.WriteString(`</tbody>`)
	return sb.String()
}

func cell(s string) string {
	return `<td>` + html.EscapeString(s) + `</td>`
}

func mark(ok bool) string {
	if ok {
		return `<td class="center ok">&#10003;</td>`
	}
	return `<td class="center ng">&#10007;</td>`
}
