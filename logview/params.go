package logview

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"inspectlog/model"
)

// PageSize is the number of rows shown per page.
const PageSize = 30

var ErrInvalidParam = errors.New("invalid view parameter")

type Status string

const (
	StatusAll      Status = "all"
	StatusComplete Status = "complete"
	StatusIssues   Status = "issues"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Params selects, orders and pages a device's logs. The zero value shows
// everything sorted by day, newest first.
type Params struct {
	From      string // inclusive lower bound on day, YYYY-MM-DD
	To        string // inclusive upper bound on day, YYYY-MM-DD
	Nurse     string
	Status    Status
	Search    string
	SortField string
	SortDir   Direction
	Page      int
}

func (p Params) status() Status {
	if p.Status == "" {
		return StatusAll
	}
	return p.Status
}

func (p Params) sortField() string {
	if p.SortField == "" {
		return "day"
	}
	return p.SortField
}

func (p Params) sortDir() Direction {
	if p.SortDir == "" {
		return Desc
	}
	return p.SortDir
}

// HasActiveFilters reports whether any filter narrows the log set.
func (p Params) HasActiveFilters() bool {
	return p.From != "" || p.To != "" || p.Nurse != "" || p.status() != StatusAll || p.Search != ""
}

// FilterKey identifies the filter values only; sort and page are excluded.
func (p Params) FilterKey() string {
	return strings.Join([]string{p.From, p.To, p.Nurse, string(p.status()), p.Search}, "\x1f")
}

// Next returns p with the page reset to 1 when any filter differs from prev.
func (p Params) Next(prev Params) Params {
	if p.FilterKey() != prev.FilterKey() {
		p.Page = 1
	}
	return p
}

// Query encodes the params in the form read by ParseParams. Page is omitted when <= 1.
func (p Params) Query() url.Values {
	v := url.Values{}
	set := func(k, s string) {
		if s != "" {
			v.Set(k, s)
		}
	}
	set("from", p.From)
	set("to", p.To)
	set("nurse", p.Nurse)
	if p.status() != StatusAll {
		v.Set("status", string(p.status()))
	}
	set("q", p.Search)
	if p.SortField != "" {
		v.Set("sort", p.SortField)
	}
	if p.SortDir != "" {
		v.Set("dir", string(p.SortDir))
	}
	if p.Page > 1 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	return v
}

// ParseParams reads from, to, nurse, status, q, sort, dir and page.
func ParseParams(v url.Values) (Params, error) {
	p := Params{
		From:      strings.TrimSpace(v.Get("from")),
		To:        strings.TrimSpace(v.Get("to")),
		Nurse:     v.Get("nurse"),
		Status:    Status(strings.ToLower(strings.TrimSpace(v.Get("status")))),
		Search:    strings.TrimSpace(v.Get("q")),
		SortField: strings.TrimSpace(v.Get("sort")),
		SortDir:   Direction(strings.ToLower(strings.TrimSpace(v.Get("dir")))),
		Page:      1,
	}

	for name, d := range map[string]string{"from": p.From, "to": p.To} {
		if d == "" {
			continue
		}
		if _, err := model.ParseDate(d); err != nil {
			return Params{}, fmt.Errorf("%w: %s %q is not a date", ErrInvalidParam, name, d)
		}
	}
	switch p.Status {
	case "", StatusAll, StatusComplete, StatusIssues:
	default:
		return Params{}, fmt.Errorf("%w: status %q", ErrInvalidParam, p.Status)
	}
	if p.SortField != "" {
		if _, ok := sortKeys[p.SortField]; !ok {
			return Params{}, fmt.Errorf("%w: sort field %q", ErrInvalidParam, p.SortField)
		}
	}
	switch p.SortDir {
	case "", Asc, Desc:
	default:
		return Params{}, fmt.Errorf("%w: sort direction %q", ErrInvalidParam, p.SortDir)
	}
	if s := v.Get("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return Params{}, fmt.Errorf("%w: page %q", ErrInvalidParam, s)
		}
		p.Page = n
	}
	return p, nil
}
