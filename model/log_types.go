package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the storage format of Log.Day and Log.ExpirationDate.
const DateLayout = "2006-01-02"

var (
	ErrMissingField = errors.New("missing required field")
	ErrInvalidField = errors.New("invalid field")
)

// Log is one completed inspection of a device.
type Log struct {
	ID                     string    `db:"id" json:"id"`
	DeviceID               string    `db:"device_id" json:"deviceId"`
	Day                    string    `db:"day" json:"day"`
	WeekDay                string    `db:"week_day" json:"weekDay"`
	Time                   string    `db:"time" json:"time"`
	DailyCodeReadinessTest bool      `db:"daily_code_readiness_test" json:"dailyCodeReadinessTest"`
	DailyBatteryCheck      bool      `db:"daily_battery_check" json:"dailyBatteryCheck"`
	WeeklyManualDefibTest  bool      `db:"weekly_manual_defib_test" json:"weeklyManualDefibTest"`
	WeeklyPacerTest        bool      `db:"weekly_pacer_test" json:"weeklyPacerTest"`
	WeeklyRecorder         bool      `db:"weekly_recorder" json:"weeklyRecorder"`
	PadsNotExpired         bool      `db:"pads_not_expired" json:"padsNotExpired"`
	ExpirationDate         string    `db:"expiration_date" json:"expirationDate"`
	CorrectiveAction       string    `db:"corrective_action" json:"correctiveAction"`
	NurseName              string    `db:"nurse_name" json:"nurseName"`
	CreatedAt              time.Time `db:"created_at" json:"createdAt"`
}

// HasIssues reports whether a required daily check failed or a corrective action was recorded.
func (l Log) HasIssues() bool {
	return !l.DailyCodeReadinessTest ||
		!l.DailyBatteryCheck ||
		!l.PadsNotExpired ||
		strings.TrimSpace(l.CorrectiveAction) != ""
}

// FormBool decodes the "true"/"false" strings sent by the checklist form.
// Plain JSON booleans are accepted too; any other string is false.
type FormBool bool

func (b *FormBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*b = false
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*b = FormBool(strings.EqualFold(strings.TrimSpace(s), "true"))
		return nil
	}
	var v bool
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: boolean expected, got %s", ErrInvalidField, data)
	}
	*b = FormBool(v)
	return nil
}

// LogInput is the request body of the create and edit endpoints.
type LogInput struct {
	DeviceID               string   `json:"deviceId"`
	Day                    string   `json:"day"`
	WeekDay                string   `json:"weekDay"`
	Time                   string   `json:"time"`
	DailyCodeReadinessTest FormBool `json:"dailyCodeReadinessTest"`
	DailyBatteryCheck      FormBool `json:"dailyBatteryCheck"`
	WeeklyManualDefibTest  FormBool `json:"weeklyManualDefibTest"`
	WeeklyPacerTest        FormBool `json:"weeklyPacerTest"`
	WeeklyRecorder         FormBool `json:"weeklyRecorder"`
	PadsNotExpired         FormBool `json:"padsNotExpired"`
	ExpirationDate         string   `json:"expirationDate"`
	CorrectiveAction       string   `json:"correctiveAction"`
	NurseName              string   `json:"nurseName"`
}

// Normalize validates the input and converts it to a typed Log.
// The returned Log has no ID or CreatedAt; the store assigns those.
func (in LogInput) Normalize() (Log, error) {
	l := Log{
		DeviceID:               sanitize(in.DeviceID),
		WeekDay:                sanitize(in.WeekDay),
		Time:                   sanitize(in.Time),
		DailyCodeReadinessTest: bool(in.DailyCodeReadinessTest),
		DailyBatteryCheck:      bool(in.DailyBatteryCheck),
		WeeklyManualDefibTest:  bool(in.WeeklyManualDefibTest),
		WeeklyPacerTest:        bool(in.WeeklyPacerTest),
		WeeklyRecorder:         bool(in.WeeklyRecorder),
		PadsNotExpired:         bool(in.PadsNotExpired),
		CorrectiveAction:       sanitize(in.CorrectiveAction),
		NurseName:              sanitize(in.NurseName),
	}
	if l.DeviceID == "" {
		return Log{}, fmt.Errorf("%w: deviceId", ErrMissingField)
	}
	if strings.TrimSpace(in.Day) == "" {
		return Log{}, fmt.Errorf("%w: day", ErrMissingField)
	}
	if l.NurseName == "" {
		return Log{}, fmt.Errorf("%w: nurseName", ErrMissingField)
	}

	day, err := ParseDate(in.Day)
	if err != nil {
		return Log{}, fmt.Errorf("%w: day %q", ErrInvalidField, in.Day)
	}
	l.Day = day.Format(DateLayout)
	if l.WeekDay == "" {
		l.WeekDay = day.Weekday().String()
	}

	if strings.TrimSpace(in.ExpirationDate) != "" {
		exp, err := ParseDate(in.ExpirationDate)
		if err != nil {
			return Log{}, fmt.Errorf("%w: expirationDate %q", ErrInvalidField, in.ExpirationDate)
		}
		l.ExpirationDate = exp.Format(DateLayout)
	}
	return l, nil
}

// ParseDate accepts a calendar day (2006-01-02) or a full RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// sanitize strips NUL bytes and surrounding whitespace from form text.
func sanitize(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\x00", ""))
}
