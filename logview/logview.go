// Package logview turns a device's raw logs and a set of view parameters into
// the rows shown on screen and exported.
package logview

import (
	"sort"
	"strings"

	"inspectlog/model"

	"golang.org/x/text/cases"
)

type View struct {
	Rows       []model.Log `json:"rows"`     // filtered and sorted, all pages
	PageRows   []model.Log `json:"pageRows"` // the requested page of Rows
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
	Total      int         `json:"total"`    // logs before filtering
	Filtered   int         `json:"filtered"` // len(Rows)
	Start      int         `json:"start"`    // 1-based index of the first page row, 0 when empty
	End        int         `json:"end"`

	HasActiveFilters bool     `json:"hasActiveFilters"`
	Nurses           []string `json:"nurses"`
}

// Apply filters by date range, nurse, status and search term (in that order),
// sorts, then slices out the requested page. logs is not modified.
func Apply(logs []model.Log, p Params) View {
	rows := make([]model.Log, len(logs))
	copy(rows, logs)

	rows = filterDateRange(rows, p.From, p.To)
	if p.Nurse != "" {
		rows = filter(rows, func(l model.Log) bool { return l.NurseName == p.Nurse })
	}
	switch p.status() {
	case StatusIssues:
		rows = filter(rows, model.Log.HasIssues)
	case StatusComplete:
		rows = filter(rows, func(l model.Log) bool { return !l.HasIssues() })
	}
	if p.Search != "" {
		rows = filter(rows, searchMatcher(p.Search))
	}
	Sort(rows, p.sortField(), p.sortDir())

	v := View{
		Rows:             rows,
		PageSize:         PageSize,
		Total:            len(logs),
		Filtered:         len(rows),
		TotalPages:       (len(rows) + PageSize - 1) / PageSize,
		HasActiveFilters: p.HasActiveFilters(),
		Nurses:           nurseNames(logs),
	}

	v.Page = p.Page
	if v.Page > v.TotalPages {
		v.Page = v.TotalPages
	}
	if v.Page < 1 {
		v.Page = 1
	}

	start := (v.Page - 1) * PageSize
	end := min(start+PageSize, len(rows))
	v.PageRows = rows[start:end]
	if len(v.PageRows) > 0 {
		v.Start, v.End = start+1, end
	}
	return v
}

func filter(rows []model.Log, keep func(model.Log) bool) []model.Log {
	out := rows[:0]
	for _, l := range rows {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}

func filterDateRange(rows []model.Log, from, to string) []model.Log {
	if from == "" && to == "" {
		return rows
	}
	lo, loErr := model.ParseDate(from)
	hi, hiErr := model.ParseDate(to)
	return filter(rows, func(l model.Log) bool {
		day, err := model.ParseDate(l.Day)
		if err != nil {
			return false
		}
		if from != "" && loErr == nil && day.Before(lo) {
			return false
		}
		if to != "" && hiErr == nil && day.After(hi) {
			return false
		}
		return true
	})
}

func searchMatcher(term string) func(model.Log) bool {
	fold := cases.Fold()
	needle := fold.String(term)
	return func(l model.Log) bool {
		for _, s := range []string{l.NurseName, l.CorrectiveAction, l.DeviceID} {
			if strings.Contains(fold.String(s), needle) {
				return true
			}
		}
		return false
	}
}

func nurseNames(logs []model.Log) []string {
	seen := make(map[string]bool)
	names := []string{}
	for _, l := range logs {
		if l.NurseName == "" || seen[l.NurseName] {
			continue
		}
		seen[l.NurseName] = true
		names = append(names, l.NurseName)
	}
	return names
}

// sortKeys maps each sortable JSON field to a three-way comparison.
var sortKeys = map[string]func(a, b model.Log) int{
	"id":                     func(a, b model.Log) int { return strings.Compare(a.ID, b.ID) },
	"deviceId":               func(a, b model.Log) int { return strings.Compare(a.DeviceID, b.DeviceID) },
	"day":                    func(a, b model.Log) int { return compareDates(a.Day, b.Day) },
	"weekDay":                func(a, b model.Log) int { return strings.Compare(a.WeekDay, b.WeekDay) },
	"time":                   func(a, b model.Log) int { return strings.Compare(a.Time, b.Time) },
	"dailyCodeReadinessTest": func(a, b model.Log) int { return compareBools(a.DailyCodeReadinessTest, b.DailyCodeReadinessTest) },
	"dailyBatteryCheck":      func(a, b model.Log) int { return compareBools(a.DailyBatteryCheck, b.DailyBatteryCheck) },
	"weeklyManualDefibTest":  func(a, b model.Log) int { return compareBools(a.WeeklyManualDefibTest, b.WeeklyManualDefibTest) },
	"weeklyPacerTest":        func(a, b model.Log) int { return compareBools(a.WeeklyPacerTest, b.WeeklyPacerTest) },
	"weeklyRecorder":         func(a, b model.Log) int { return compareBools(a.WeeklyRecorder, b.WeeklyRecorder) },
	"padsNotExpired":         func(a, b model.Log) int { return compareBools(a.PadsNotExpired, b.PadsNotExpired) },
	"expirationDate":         func(a, b model.Log) int { return compareDates(a.ExpirationDate, b.ExpirationDate) },
	"correctiveAction":       func(a, b model.Log) int { return strings.Compare(a.CorrectiveAction, b.CorrectiveAction) },
	"nurseName":              func(a, b model.Log) int { return strings.Compare(a.NurseName, b.NurseName) },
	"createdAt":              func(a, b model.Log) int { return a.CreatedAt.Compare(b.CreatedAt) },
}

// SortFields lists the accepted sort keys.
func SortFields() []string {
	fields := make([]string, 0, len(sortKeys))
	for k := range sortKeys {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}

// Sort orders rows in place by field. Equal rows keep their relative order.
// An unknown field leaves rows as they are.
func Sort(rows []model.Log, field string, dir Direction) {
	cmp, ok := sortKeys[field]
	if !ok {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if dir == Asc {
			return cmp(rows[i], rows[j]) < 0
		}
		return cmp(rows[i], rows[j]) > 0
	})
}

func compareBools(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// compareDates orders unparseable or empty dates before any real date.
func compareDates(a, b string) int {
	ta, errA := model.ParseDate(a)
	tb, errB := model.ParseDate(b)
	switch {
	case errA != nil && errB != nil:
		return strings.Compare(a, b)
	case errA != nil:
		return -1
	case errB != nil:
		return 1
	}
	return ta.Compare(tb)
}
