package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/user/tripagent/internal/llmtypes"
	"github.com/user/tripagent/internal/session"
	"github.com/user/tripagent/internal/store"
)

const answer = `**Day 1: Arrival in Paris**
| Time | Activity | Status |
|------|----------|--------|
| 10:30 | Flight IB3436 Madrid → Paris CDG | Booked |
| General | Check in at Hotel Lumière | Planned |
`

var fixedNow = time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

func sampleRecord() *store.Record {
	return &store.Record{
		Version: store.RecordVersion,
		Key:     "paris-trip",
		Session: session.Context{
			Origin:      "Madrid",
			Destination: "Paris",
			StartDate:   "2025-07-01",
			EndDate:     "2025-07-05",
			Budget:      session.BudgetLow,
			Adults:      session.IntPtr(2),
			Interests:   "museums | food",
		},
		Messages: []llmtypes.Message{
			{Role: llmtypes.RoleUser, Content: "Create a personalized itinerary."},
			{Role: llmtypes.RoleAssistant, ToolCalls: []llmtypes.ToolCall{
				{ID: "c1", Name: "hotels_finder", Arguments: map[string]interface{}{"q": "Paris"}},
				{ID: "c2", Name: "flights_finder", Arguments: map[string]interface{}{"departure_id": "MAD"}},
			}},
			{Role: llmtypes.RoleTool, ToolID: "c1", Name: "hotels_finder", Content: `{"properties":[{"name":"Hotel Lumière"}]}`},
			{Role: llmtypes.RoleTool, ToolID: "c2", Name: "flights_finder", Content: "Tool call failed: quota exceeded"},
			{Role: llmtypes.RoleAssistant, Content: answer},
			{Role: llmtypes.RoleUser, Content: "Add a second day"},
			{Role: llmtypes.RoleAssistant, ToolCalls: []llmtypes.ToolCall{
				{ID: "c1", Name: "hotels_finder", Arguments: map[string]interface{}{"q": "Versailles"}},
			}},
			{Role: llmtypes.RoleTool, ToolID: "c1", Name: "hotels_finder", Content: `{"properties":[]}`},
			{Role: llmtypes.RoleAssistant, Content: "I could not find hotels in Versailles."},
		},
		CreatedAt: fixedNow.Add(-time.Hour),
		UpdatedAt: fixedNow,
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		name string
		ctx  session.Context
		want string
	}{
		{"with dates", session.Context{Destination: "Paris", StartDate: "2025-07-01"}, "Trip to Paris (2025-07-01)"},
		{"no dates", session.Context{Destination: "Paris"}, "Trip to Paris"},
		{"no destination", session.Context{}, "Trip plan k1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Title(&store.Record{Key: "k1", Session: tt.ctx}); got != tt.want {
				t.Errorf("Title() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFinalAnswer_UsesNewestText(t *testing.T) {
	if got := FinalAnswer(sampleRecord()); got != "I could not find hotels in Versailles." {
		t.Errorf("Unexpected final answer %q", got)
	}
	if got := FinalAnswer(&store.Record{}); got != "" {
		t.Errorf("Expected empty answer for empty session, got %q", got)
	}
}

func TestTranscript(t *testing.T) {
	md := Transcript(sampleRecord())

	expected := []string{
		"# Trip to Paris (2025-07-01)",
		"| Dates | 2025-07-01 → 2025-07-05 |",
		"| Budget | low |",
		"| Travellers | 2 adults, 0 children |",
		`| Interests | museums \| food |`,
		"## Itinerary",
		"I could not find hotels in Versailles.",
		"**User:** Add a second day",
		"- lookup `hotels_finder` (c1) {q=Paris}",
		"> result for `flights_finder` (c2): Tool call failed: quota exceeded",
	}
	for _, want := range expected {
		if !strings.Contains(md, want) {
			t.Errorf("Expected transcript to contain %q\n%s", want, md)
		}
	}
	if strings.Contains(md, "| Avoid |") {
		t.Error("Expected empty fields to be omitted")
	}
}

func TestExcerpt_TruncatesLongResults(t *testing.T) {
	long := strings.Repeat("é", maxToolExcerpt+50)
	got := excerpt(long)
	if len([]rune(got)) != maxToolExcerpt+1 {
		t.Errorf("Expected %d runes, got %d", maxToolExcerpt+1, len([]rune(got)))
	}
	if !strings.HasSuffix(got, "…") {
		t.Error("Expected ellipsis on truncated excerpt")
	}
}

func TestHTMLExporter_Render(t *testing.T) {
	exporter, err := NewHTMLExporter()
	if err != nil {
		t.Fatalf("Failed to create exporter: %v", err)
	}
	exporter.now = func() time.Time { return fixedNow }

	var buf bytes.Buffer
	md := answer + "\n<script>alert(1)</script>\n"
	if err := exporter.Render(&buf, "Paris <trip>", []byte(md)); err != nil {
		t.Fatalf("Expected no error rendering, got %v", err)
	}
	html := buf.String()

	expected := []string{
		"<!DOCTYPE html>",
		"<title>Paris &lt;trip&gt;</title>",
		"<table>",
		"<th>Time</th>",
		"<td>10:30</td>",
		"Planned with tripagent",
		"Exported on 2025-06-15 09:00:00",
	}
	for _, want := range expected {
		if !strings.Contains(html, want) {
			t.Errorf("Expected HTML to contain %q", want)
		}
	}
	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Error("Expected raw HTML from the answer to be omitted")
	}
}

func TestHTMLExporter_ExportToHTML(t *testing.T) {
	exporter, err := NewHTMLExporter()
	if err != nil {
		t.Fatalf("Failed to create exporter: %v", err)
	}

	out := filepath.Join(t.TempDir(), "trip.html")
	if err := exporter.ExportToHTML(sampleRecord(), out); err != nil {
		t.Fatalf("Expected no error exporting, got %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("Failed to read generated HTML: %v", err)
	}
	if !strings.Contains(string(data), "<h1>Trip to Paris (2025-07-01)</h1>") {
		t.Errorf("Expected session title heading in HTML")
	}
}

func TestHTMLExporter_ExportToHTML_BadPath(t *testing.T) {
	exporter, _ := NewHTMLExporter()
	out := filepath.Join(t.TempDir(), "missing", "trip.html")
	if err := exporter.ExportToHTML(sampleRecord(), out); err == nil {
		t.Fatal("Expected error for unwritable path")
	}
}

func TestJSONExporter_Build(t *testing.T) {
	rec := sampleRecord()
	rec.Messages = rec.Messages[:5]

	exporter := NewJSONExporter("1.2.3")
	exporter.now = func() time.Time { return fixedNow }
	doc := exporter.Build(rec)

	if doc.Metadata.SessionKey != "paris-trip" || doc.Metadata.MessageCount != 5 {
		t.Errorf("Unexpected metadata %+v", doc.Metadata)
	}
	if doc.Metadata.Generator.Name != GeneratorName || doc.Metadata.Generator.Version != "1.2.3" {
		t.Errorf("Unexpected generator %+v", doc.Metadata.Generator)
	}
	if len(doc.Itinerary.Days) != 1 || len(doc.Itinerary.Days[0].Rows) != 2 {
		t.Fatalf("Expected one parsed day with two rows, got %+v", doc.Itinerary)
	}
	if len(doc.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", doc.Warnings)
	}
	if len(doc.Lookups) != 2 {
		t.Fatalf("Expected 2 lookups, got %d", len(doc.Lookups))
	}
	if doc.Lookups[1].Result != "Tool call failed: quota exceeded" {
		t.Errorf("Expected failure text paired with c2, got %q", doc.Lookups[1].Result)
	}
	if doc.Messages != nil {
		t.Error("Expected messages to be left out by default")
	}
}

func TestJSONExporter_LookupsPairPerRound(t *testing.T) {
	doc := NewJSONExporter("dev").Build(sampleRecord())

	if len(doc.Lookups) != 3 {
		t.Fatalf("Expected 3 lookups, got %d", len(doc.Lookups))
	}
	if doc.Lookups[0].Result == doc.Lookups[2].Result {
		t.Error("Expected reused call id to pair with its own round")
	}
	if doc.Lookups[2].Result != `{"properties":[]}` {
		t.Errorf("Unexpected second-round result %q", doc.Lookups[2].Result)
	}
	if len(doc.Warnings) == 0 {
		t.Error("Expected a warning for an answer without day tables")
	}
}

func TestJSONExporter_ExportToJSON(t *testing.T) {
	exporter := NewJSONExporter("dev").WithMessages(true)
	out := filepath.Join(t.TempDir(), "trip.json")

	if err := exporter.ExportToJSON(sampleRecord(), out); err != nil {
		t.Fatalf("Expected no error exporting, got %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("Failed to read JSON: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Expected valid JSON, got %v", err)
	}
	for _, key := range []string{"metadata", "trip", "itinerary", "warnings", "lookups", "messages"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("Expected key %q in JSON document", key)
		}
	}
	trip := decoded["trip"].(map[string]interface{})
	if trip["destination"] != "Paris" {
		t.Errorf("Expected trip destination Paris, got %v", trip["destination"])
	}
}
