package model

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestFormBoolUnmarshal(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{`"true"`, true},
		{`"TRUE"`, true},
		{`" true "`, true},
		{`"false"`, false},
		{`"yes"`, false},
		{`"on"`, false},
		{`""`, false},
		{`true`, true},
		{`false`, false},
		{`null`, false},
	}
	for _, c := range cases {
		var b FormBool
		if err := json.Unmarshal([]byte(c.in), &b); err != nil {
			t.Fatalf("Unmarshal(%s): %v", c.in, err)
		}
		if bool(b) != c.want {
			t.Fatalf("Unmarshal(%s) = %v, want %v", c.in, b, c.want)
		}
	}

	var b FormBool
	if err := json.Unmarshal([]byte(`1`), &b); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("Unmarshal(1) err = %v, want ErrInvalidField", err)
	}
}

func TestNormalize(t *testing.T) {
	var in LogInput
	body := `{"deviceId":"DEF-\u0000001","day":"2024-01-02T15:04:05Z","time":"09:00",
		"dailyCodeReadinessTest":"true","dailyBatteryCheck":true,"padsNotExpired":"nope",
		"expirationDate":"2025-06-30","correctiveAction":"  swapped\u0000 pads ","nurseName":"Ann\u0000 RN"}`
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	l, err := in.Normalize()
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if l.DeviceID != "DEF-001" || l.NurseName != "Ann RN" || l.CorrectiveAction != "swapped pads" {
		t.Fatalf("NUL bytes not stripped: %+v", l)
	}
	if l.Day != "2024-01-02" || l.WeekDay != "Tuesday" || l.ExpirationDate != "2025-06-30" {
		t.Fatalf("dates = %q %q %q", l.Day, l.WeekDay, l.ExpirationDate)
	}
	if !l.DailyCodeReadinessTest || !l.DailyBatteryCheck || l.PadsNotExpired || l.WeeklyPacerTest {
		t.Fatalf("booleans = %+v", l)
	}
	if !l.HasIssues() {
		t.Fatalf("log with a failed pads check should have issues")
	}
}

func TestNormalizeRejects(t *testing.T) {
	valid := LogInput{DeviceID: "DEF-001", Day: "2024-01-02", NurseName: "Ann"}
	cases := []struct {
		name   string
		modify func(*LogInput)
		want   error
	}{
		{"missing device", func(in *LogInput) { in.DeviceID = "\x00 " }, ErrMissingField},
		{"missing day", func(in *LogInput) { in.Day = " " }, ErrMissingField},
		{"missing nurse", func(in *LogInput) { in.NurseName = "" }, ErrMissingField},
		{"bad day", func(in *LogInput) { in.Day = "01/02/2024" }, ErrInvalidField},
		{"bad expiration", func(in *LogInput) { in.ExpirationDate = "soon" }, ErrInvalidField},
	}
	for _, c := range cases {
		in := valid
		c.modify(&in)
		if _, err := in.Normalize(); !errors.Is(err, c.want) {
			t.Fatalf("%s: err = %v, want %v", c.name, err, c.want)
		}
	}
}

func TestHasIssues(t *testing.T) {
	ok := Log{DailyCodeReadinessTest: true, DailyBatteryCheck: true, PadsNotExpired: true}
	if ok.HasIssues() {
		t.Fatalf("all required checks passed, want no issues")
	}
	withAction := ok
	withAction.CorrectiveAction = "replaced pad"
	if !withAction.HasIssues() {
		t.Fatalf("corrective action recorded, want issues")
	}
	weeklyMissed := ok
	weeklyMissed.WeeklyRecorder = false
	if weeklyMissed.HasIssues() {
		t.Fatalf("weekly checks do not affect status")
	}
}
