package validation

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var dayTitleRe = regexp.MustCompile(`(?i)^\s*day\s+(\d+)\s*(?:[:.\-–]\s*(.*))?$`)

// Itinerary is the day-by-day structure of a planner answer
type Itinerary struct {
	Days []Day `json:"days"`
}

// Day is one "**Day N: Title**" section with its schedule tables
type Day struct {
	Number int      `json:"number"`
	Title  string   `json:"title"`
	Line   int      `json:"line"`
	Header []string `json:"header,omitempty"`
	Rows   []Row    `json:"rows"`
}

// Row is one line of a day's schedule
type Row struct {
	Time     string `json:"time"`
	Activity string `json:"activity"`
	Status   string `json:"status,omitempty"`
}

// ParseItinerary extracts the day sections of a markdown answer. Tables that
// appear before the first day heading are ignored.
func ParseItinerary(markdown []byte) Itinerary {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	doc := md.Parser().Parse(text.NewReader(markdown))

	var it Itinerary
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading, *ast.Paragraph:
			first := firstLine(nodeText(node, markdown))
			m := dayTitleRe.FindStringSubmatch(first)
			if m == nil {
				continue
			}
			num, _ := strconv.Atoi(m[1])
			it.Days = append(it.Days, Day{
				Number: num,
				Title:  strings.TrimSpace(m[2]),
				Line:   lineOf(node, markdown),
			})
		case *extast.Table:
			if len(it.Days) == 0 {
				continue
			}
			day := &it.Days[len(it.Days)-1]
			header, rows := tableRows(node, markdown)
			if day.Header == nil {
				day.Header = header
			}
			day.Rows = append(day.Rows, rows...)
		}
	}
	return it
}

func tableRows(table *extast.Table, src []byte) ([]string, []Row) {
	var header []string
	var rows []Row
	for c := table.FirstChild(); c != nil; c = c.NextSibling() {
		cells := cellTexts(c, src)
		if _, ok := c.(*extast.TableHeader); ok {
			header = cells
			continue
		}
		var row Row
		if len(cells) > 0 {
			row.Time = cells[0]
		}
		if len(cells) > 1 {
			row.Activity = cells[1]
		}
		if len(cells) > 2 {
			row.Status = cells[2]
		}
		rows = append(rows, row)
	}
	return header, rows
}

func cellTexts(row ast.Node, src []byte) []string {
	var cells []string
	for c := row.FirstChild(); c != nil; c = c.NextSibling() {
		cells = append(cells, strings.TrimSpace(nodeText(c, src)))
	}
	return cells
}

// nodeText concatenates the inline text under n; soft breaks become newlines
func nodeText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		switch v := n.(type) {
		case *ast.Text:
			buf.Write(v.Segment.Value(src))
			if v.SoftLineBreak() || v.HardLineBreak() {
				buf.WriteByte('\n')
			}
			return
		case *ast.String:
			buf.Write(v.Value)
			return
		case *ast.AutoLink:
			buf.Write(v.Label(src))
			return
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			walk(c)
		}
	}
	walk(n)
	return buf.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func lineOf(n ast.Node, src []byte) int {
	lines := n.Lines()
	if lines == nil || lines.Len() == 0 {
		return 0
	}
	return bytes.Count(src[:lines.At(0).Start], []byte("\n")) + 1
}
