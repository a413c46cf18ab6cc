// Package export writes device logs as spreadsheets and CSV.
package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"inspectlog/model"

	"github.com/xuri/excelize/v2"
)

const (
	TemplateSheet = "Nurse Logs"
	SimpleSheet   = "Logs"

	// HeaderRows is the number of rows above the first log row in Template.
	HeaderRows = 4

	CheckMark = "√"
	CrossMark = "X"

	displayDate = "1/2/2006"
)

var templateHeader = []string{
	"Day",
	"Week Day",
	"Time",
	"Defibrillator or Device ID",
	"DAILY CODE READINESS TEST",
	"DAILY BATTERY CHECK",
	"WEEKLY MANUAL DEFIB TEST",
	"WEEKLY PACER TEST",
	"WEEKLY RECORDER",
	"PADS: NOT EXPIRED",
	"Freq / Earliest Expiration Date",
	"Follow up / Corrective Action",
	"Print Name & Title",
	"",
}

var simpleHeader = []string{
	"Day",
	"Week Day",
	"Time",
	"Device ID",
	"Daily Code Readiness",
	"Daily Battery Check",
	"Weekly Manual Defib",
	"Weekly Pacer",
	"Weekly Recorder",
	"Pads Not Expired",
	"Expiration Date",
	"Corrective Action",
	"Nurse Name",
}

const (
	legendText        = "Legend = check (√) mark if indicator is met or X if not met."
	dailyCheckText    = "DAILY check for CODE READINESS TEST (√), pads connected, plugged into AC"
	weeklyTestsText   = "Weekly TESTS: EVERY TUESDAY , see instructions in binder."
	batteryCheckText  = "DAILY Battery Check. If LOW send to Healthcare Technology Management (BIOMED) for replacement."
	manualTestsText   = "***Manual Defibrillator, Pacer, and Recorder. PLUGGED INTO AC."
	weeklyHighlight   = "FFFF00"
	weeklyPlain       = "F0F0F0"
	headerFill        = "D9D9D9"
	firstWeeklyColumn = 7 // G
	lastWeeklyColumn  = 9 // I
)

var (
	columnWidths = []float64{10, 12, 8, 12, 12, 12, 12, 12, 12, 12, 15, 30, 18, 3}
	rowHeights   = []float64{20, 25, 25, 30}
)

// TemplateFilename is the download name of the Template workbook.
func TemplateFilename(deviceID string, now time.Time) string {
	return fmt.Sprintf("logs_%s_%s.xlsx", deviceID, now.Format(model.DateLayout))
}

// SimpleFilename is the download name of the Simple workbook.
func SimpleFilename() string {
	return "nurse_logs_simple.xlsx"
}

// CSVFilename is the download name of the CSV export.
func CSVFilename(deviceID string, now time.Time) string {
	return fmt.Sprintf("logs_%s_%s.csv", deviceID, now.Format(model.DateLayout))
}

// Template builds the paper-checklist workbook: three legend rows, a column
// header row, then one row per log in the given order.
func Template(logs []model.Log) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), TemplateSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := writeTemplate(f, logs); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeTemplate(f *excelize.File, logs []model.Log) error {
	const sheet = TemplateSheet
	last := len(templateHeader)

	st, err := newTemplateStyles(f)
	if err != nil {
		return err
	}

	banner := [][]string{
		make([]string, last),
		make([]string, last),
		make([]string, last),
	}
	banner[0][0] = legendText
	banner[1][0], banner[1][8] = dailyCheckText, weeklyTestsText
	banner[2][0], banner[2][8] = batteryCheckText, manualTestsText
	for i, texts := range banner {
		row := toRow(texts)
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	header := toRow(templateHeader)
	if err := f.SetSheetRow(sheet, "A4", &header); err != nil {
		return err
	}

	for _, m := range [][2]string{{"A1", "N1"}, {"A2", "H2"}, {"I2", "N2"}, {"A3", "H3"}, {"I3", "N3"}} {
		if err := f.MergeCell(sheet, m[0], m[1]); err != nil {
			return fmt.Errorf("failed to merge %s:%s: %w", m[0], m[1], err)
		}
	}

	for _, s := range []struct {
		from, to string
		style    int
	}{
		{"A1", "N1", st.legend},
		{"A2", "H2", st.instruction},
		{"I2", "N2", st.weeklyTest},
		{"A3", "H3", st.instruction},
		{"I3", "N3", st.weeklyTest},
		{"A4", "N4", st.header},
	} {
		if err := f.SetCellStyle(sheet, s.from, s.to, s.style); err != nil {
			return err
		}
	}

	for i, l := range logs {
		rowNum := HeaderRows + 1 + i
		values := templateRow(l)
		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write log %s: %w", l.ID, err)
		}

		rowStyle, weeklyStyle := st.data, st.weeklyPlain
		if weekDayOf(l) == time.Tuesday.String() {
			rowStyle, weeklyStyle = st.tuesday, st.tuesday
		}
		if err := styleColumns(f, rowNum, 1, last, rowStyle); err != nil {
			return err
		}
		if err := styleColumns(f, rowNum, firstWeeklyColumn, lastWeeklyColumn, weeklyStyle); err != nil {
			return err
		}
	}

	for i, w := range columnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}
	for i, h := range rowHeights {
		if err := f.SetRowHeight(sheet, i+1, h); err != nil {
			return err
		}
	}
	return nil
}

func styleColumns(f *excelize.File, row, fromCol, toCol, style int) error {
	from, _ := excelize.CoordinatesToCellName(fromCol, row)
	to, _ := excelize.CoordinatesToCellName(toCol, row)
	return f.SetCellStyle(TemplateSheet, from, to, style)
}

func templateRow(l model.Log) []interface{} {
	return []interface{}{
		formatDay(l.Day),
		weekDayOf(l),
		l.Time,
		l.DeviceID,
		glyph(l.DailyCodeReadinessTest),
		glyph(l.DailyBatteryCheck),
		glyph(l.WeeklyManualDefibTest),
		glyph(l.WeeklyPacerTest),
		glyph(l.WeeklyRecorder),
		glyph(l.PadsNotExpired),
		formatDay(l.ExpirationDate),
		l.CorrectiveAction,
		l.NurseName,
		"",
	}
}

// Simple builds a single-sheet workbook with a plain header and Yes/No values.
func Simple(logs []model.Log) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SimpleSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	header := toRow(simpleHeader)
	if err := f.SetSheetRow(SimpleSheet, "A1", &header); err != nil {
		f.Close()
		return nil, err
	}
	for i, l := range logs {
		values := toRow(simpleRecord(l))
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SimpleSheet, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write log %s: %w", l.ID, err)
		}
	}
	return f, nil
}

// CSV writes the simple layout as a UTF-8 CSV with a BOM and every field quoted.
func CSV(w io.Writer, logs []model.Log) error {
	var buf bytes.Buffer
	buf.Write([]byte{0xEF, 0xBB, 0xBF}) // UTF-8 BOM

	writeRecord := func(fields []string) {
		quoted := make([]string, len(fields))
		for i, s := range fields {
			quoted[i] = quoteAll(s)
		}
		buf.WriteString(strings.Join(quoted, ",") + "\r\n")
	}
	writeRecord(simpleHeader)
	for _, l := range logs {
		writeRecord(simpleRecord(l))
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func simpleRecord(l model.Log) []string {
	return []string{
		formatDay(l.Day),
		weekDayOf(l),
		l.Time,
		l.DeviceID,
		yesNo(l.DailyCodeReadinessTest),
		yesNo(l.DailyBatteryCheck),
		yesNo(l.WeeklyManualDefibTest),
		yesNo(l.WeeklyPacerTest),
		yesNo(l.WeeklyRecorder),
		yesNo(l.PadsNotExpired),
		formatDay(l.ExpirationDate),
		l.CorrectiveAction,
		l.NurseName,
	}
}

func quoteAll(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func toRow(values []string) []interface{} {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}

func glyph(ok bool) string {
	if ok {
		return CheckMark
	}
	return CrossMark
}

func yesNo(ok bool) string {
	if ok {
		return "Yes"
	}
	return "No"
}

// formatDay renders a stored date as M/D/YYYY; blank or unparseable input is returned as is.
func formatDay(s string) string {
	if s == "" {
		return ""
	}
	t, err := model.ParseDate(s)
	if err != nil {
		return s
	}
	return t.Format(displayDate)
}

func weekDayOf(l model.Log) string {
	if l.WeekDay != "" {
		return l.WeekDay
	}
	if t, err := model.ParseDate(l.Day); err == nil {
		return t.Weekday().String()
	}
	return ""
}
