package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"inspectlog/model"

	"github.com/xuri/excelize/v2"
)

func testLogs() []model.Log {
	return []model.Log{
		{
			ID: "a", DeviceID: "DEF-001", Day: "2024-01-02", Time: "08:00",
			DailyCodeReadinessTest: true, DailyBatteryCheck: true, WeeklyManualDefibTest: true,
			WeeklyPacerTest: true, WeeklyRecorder: true, PadsNotExpired: true,
			ExpirationDate: "2025-06-30", NurseName: "Alice RN",
		},
		{
			ID: "b", DeviceID: "DEF-001", Day: "2024-01-03", WeekDay: "Wednesday", Time: "09:15",
			DailyCodeReadinessTest: true, PadsNotExpired: true,
			CorrectiveAction: `replaced "pad"`, NurseName: "Bob RN",
		},
	}
}

func reopen(t *testing.T, f *excelize.File) *excelize.File {
	t.Helper()
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	out, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	t.Cleanup(func() { out.Close() })
	return out
}

func TestTemplateLayout(t *testing.T) {
	f, err := Template(testLogs())
	if err != nil {
		t.Fatalf("Template: %v", err)
	}
	defer f.Close()

	book := reopen(t, f)
	rows, err := book.GetRows(TemplateSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != HeaderRows+2 {
		t.Fatalf("rows = %d, want %d", len(rows), HeaderRows+2)
	}
	if rows[0][0] != legendText {
		t.Fatalf("A1 = %q", rows[0][0])
	}
	if rows[3][3] != "Defibrillator or Device ID" {
		t.Fatalf("D4 = %q", rows[3][3])
	}

	first := rows[4]
	want := []string{"1/2/2024", "Tuesday", "08:00", "DEF-001", "√", "√", "√", "√", "√", "√", "6/30/2025", "", "Alice RN"}
	for i, w := range want {
		if first[i] != w {
			t.Fatalf("row 5 col %d = %q, want %q", i+1, first[i], w)
		}
	}

	second := rows[5]
	if second[4] != CheckMark || second[5] != CrossMark || second[9] != CheckMark {
		t.Fatalf("row 6 checks = %v", second[4:10])
	}
	if second[10] != "" || second[11] != `replaced "pad"` {
		t.Fatalf("row 6 expiration/action = %q/%q", second[10], second[11])
	}

	merged, err := book.GetMergeCells(TemplateSheet)
	if err != nil {
		t.Fatalf("GetMergeCells: %v", err)
	}
	if len(merged) != 5 {
		t.Fatalf("merged ranges = %d, want 5", len(merged))
	}

	width, err := book.GetColWidth(TemplateSheet, "L")
	if err != nil || width != 30 {
		t.Fatalf("column L width = %v (%v), want 30", width, err)
	}
}

func TestTemplateTuesdayFill(t *testing.T) {
	f, err := Template(testLogs())
	if err != nil {
		t.Fatalf("Template: %v", err)
	}
	defer f.Close()

	fillOf := func(cell string) string {
		id, err := f.GetCellStyle(TemplateSheet, cell)
		if err != nil {
			t.Fatalf("GetCellStyle(%s): %v", cell, err)
		}
		style, err := f.GetStyle(id)
		if err != nil {
			t.Fatalf("GetStyle(%s): %v", cell, err)
		}
		if len(style.Fill.Color) == 0 {
			return ""
		}
		c := strings.ToUpper(style.Fill.Color[0])
		if len(c) == 8 {
			c = c[2:] // ARGB
		}
		return c
	}

	if got := fillOf("G5"); got != weeklyHighlight {
		t.Fatalf("G5 fill = %q, want %q", got, weeklyHighlight)
	}
	if got := fillOf("A5"); got != weeklyHighlight {
		t.Fatalf("A5 fill = %q, want %q", got, weeklyHighlight)
	}
	if got := fillOf("H6"); got != weeklyPlain {
		t.Fatalf("H6 fill = %q, want %q", got, weeklyPlain)
	}
	if got := fillOf("A6"); got != "" {
		t.Fatalf("A6 fill = %q, want none", got)
	}
}

func TestTemplateEmpty(t *testing.T) {
	f, err := Template(nil)
	if err != nil {
		t.Fatalf("Template: %v", err)
	}
	defer f.Close()

	rows, err := reopen(t, f).GetRows(TemplateSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != HeaderRows {
		t.Fatalf("rows = %d, want %d", len(rows), HeaderRows)
	}
}

func TestSimple(t *testing.T) {
	f, err := Simple(testLogs())
	if err != nil {
		t.Fatalf("Simple: %v", err)
	}
	defer f.Close()

	rows, err := reopen(t, f).GetRows(SimpleSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if strings.Join(rows[0], "|") != strings.Join(simpleHeader, "|") {
		t.Fatalf("header = %v", rows[0])
	}
	if rows[2][4] != "Yes" || rows[2][5] != "No" {
		t.Fatalf("row 3 booleans = %q %q, want Yes No", rows[2][4], rows[2][5])
	}
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := CSV(&buf, testLogs()); err != nil {
		t.Fatalf("CSV: %v", err)
	}
	data := buf.Bytes()
	if !bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		t.Fatalf("missing UTF-8 BOM")
	}

	records, err := csv.NewReader(bytes.NewReader(data[3:])).ReadAll()
	if err != nil {
		t.Fatalf("csv.ReadAll: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	if records[2][11] != `replaced "pad"` {
		t.Fatalf("action = %q", records[2][11])
	}
}

func TestFilenames(t *testing.T) {
	now := time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC)
	if got := TemplateFilename("DEF-001", now); got != "logs_DEF-001_2024-03-09.xlsx" {
		t.Fatalf("TemplateFilename = %q", got)
	}
	if got := CSVFilename("DEF-001", now); got != "logs_DEF-001_2024-03-09.csv" {
		t.Fatalf("CSVFilename = %q", got)
	}
}
