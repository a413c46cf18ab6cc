package render

import (
	"strings"
	"testing"

	"inspectlog/model"
)

func TestRenderLogTableHTML(t *testing.T) {
	rows := []model.Log{
		{ID: "a", Day: "2024-01-02", WeekDay: "Tuesday", DailyCodeReadinessTest: true, DailyBatteryCheck: true, PadsNotExpired: true, NurseName: "Ann <RN>"},
		{ID: "b", Day: "2024-01-03", WeekDay: "Wednesday", DailyCodeReadinessTest: true, PadsNotExpired: true, CorrectiveAction: "replaced pad", NurseName: "Bob"},
	}
	out := RenderLogTableHTML(rows, func(field string) string { return "/sort?f=" + field + "&x=1" }, "/edit?id=")

	for _, want := range []string{
		`<a href="/sort?f=day&amp;x=1">Day</a>`,
		`<th>Status</th>`,
		`<tr class="complete">`,
		`<tr class="issues">`,
		"Ann &lt;RN&gt;",
		`<a href="/edit?id=b">Edit</a>`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("table is missing %q", want)
		}
	}
	if got := strings.Count(out, `<th><a href="/sort?f=`); got != 12 {
		t.Fatalf("sortable headers = %d, want 12", got)
	}
	if !strings.Contains(out, `<a href="/sort?f=nurseName&amp;x=1">Nurse</a>`) {
		t.Fatalf("nurse column is not sortable")
	}
	if got := strings.Count(out, "<tr class="); got != len(rows) {
		t.Fatalf("body rows = %d, want %d", got, len(rows))
	}
}

func TestRenderLogTableHTMLEmpty(t *testing.T) {
	out := RenderLogTableHTML(nil, nil, "")
	if strings.Contains(out, "<a ") {
		t.Fatalf("static table should not link headers")
	}
	if !strings.Contains(out, "No logs found.") {
		t.Fatalf("empty table is missing the placeholder row")
	}
}
