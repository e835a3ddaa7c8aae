package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/user/tripagent/internal/conversation"
	"github.com/user/tripagent/internal/llmtypes"
	"github.com/user/tripagent/internal/session"
	"github.com/user/tripagent/internal/store"
)

// maxToolExcerpt bounds how much of a lookup result a transcript shows
const maxToolExcerpt = 400

// Title names a session for document headings
func Title(rec *store.Record) string {
	dest := strings.TrimSpace(rec.Session.Destination)
	if dest == "" {
		return "Trip plan " + rec.Key
	}
	if rec.Session.StartDate != "" {
		return fmt.Sprintf("Trip to %s (%s)", dest, rec.Session.StartDate)
	}
	return "Trip to " + dest
}

// FinalAnswer returns the newest assistant text of a session
func FinalAnswer(rec *store.Record) string {
	msg, ok := conversation.New(rec.Messages...).LastAnswer()
	if !ok {
		return ""
	}
	return msg.Content
}

// Transcript renders a session as markdown: the trip form, the latest answer
// and the full exchange with lookup results abbreviated.
func Transcript(rec *store.Record) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", Title(rec))
	writeTrip(&sb, rec.Session)

	if answer := FinalAnswer(rec); answer != "" {
		sb.WriteString("## Itinerary\n\n")
		sb.WriteString(strings.TrimSpace(answer))
		sb.WriteString("\n\n")
	}

	sb.WriteString("## Conversation\n\n")
	for _, m := range rec.Messages {
		writeMessage(&sb, m)
	}

	return sb.String()
}

func writeTrip(sb *strings.Builder, c session.Context) {
	rows := [][2]string{
		{"Origin", c.Origin},
		{"Destination", c.Destination},
		{"Dates", dateRange(c.StartDate, c.EndDate)},
		{"Budget", string(session.ParseBudgetTier(string(c.Budget)))},
		{"Travellers", fmt.Sprintf("%d adults, %d children", c.AdultsOr(1), c.ChildrenOr(0))},
		{"Interests", c.Interests},
		{"Avoid", c.Avoid},
	}

	sb.WriteString("| Field | Value |\n|-------|-------|\n")
	for _, r := range rows {
		if strings.TrimSpace(r[1]) == "" {
			continue
		}
		fmt.Fprintf(sb, "| %s | %s |\n", r[0], escapeCell(r[1]))
	}
	sb.WriteString("\n")
}

func writeMessage(sb *strings.Builder, m llmtypes.Message) {
	switch m.Role {
	case llmtypes.RoleUser:
		fmt.Fprintf(sb, "**User:** %s\n\n", strings.TrimSpace(m.Content))
	case llmtypes.RoleAssistant:
		if strings.TrimSpace(m.Content) != "" {
			fmt.Fprintf(sb, "**Assistant:**\n\n%s\n\n", strings.TrimSpace(m.Content))
		}
		for _, call := range m.ToolCalls {
			fmt.Fprintf(sb, "- lookup `%s` (%s) %s\n", call.Name, call.ID, formatArgs(call.Arguments))
		}
		if len(m.ToolCalls) > 0 {
			sb.WriteString("\n")
		}
	case llmtypes.RoleTool:
		fmt.Fprintf(sb, "> result for `%s` (%s): %s\n\n", m.Name, m.ToolID, excerpt(m.Content))
	}
}

func formatArgs(args map[string]interface{}) string {
	if len(args) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, args[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func excerpt(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= maxToolExcerpt {
		return s
	}
	return string(r[:maxToolExcerpt]) + "…"
}

func dateRange(start, end string) string {
	switch {
	case start == "" && end == "":
		return ""
	case end == "":
		return start
	case start == "":
		return "until " + end
	}
	return start + " → " + end
}

func escapeCell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "|", `\|`), "\n", " ")
}
