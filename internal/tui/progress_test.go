package tui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/user/tripagent/internal/agent"
)

func TestProgress_ImplementsProgressReporter(t *testing.T) {
	var _ agent.ProgressReporter = (*Progress)(nil)
}

func TestProgress_TaskLifecycle(t *testing.T) {
	progress := NewProgress("Planning")
	progress.AddTask("1/0", "hotels_finder", "q=Paris")
	progress.AddTask("1/1", "flights_finder", "")
	progress.AddTask("1/2", "car_rental", "")

	progress.StartTask("1/0")
	if progress.taskMap["1/0"].Status != TaskRunning {
		t.Errorf("Expected TaskRunning, got %v", progress.taskMap["1/0"].Status)
	}
	progress.CompleteTask("1/0")
	progress.FailTask("1/1", errors.New("quota exceeded"))
	progress.SkipTask("1/2")

	// unknown ids are ignored
	progress.StartTask("9/9")
	progress.CompleteTask("9/9")

	succeeded, failed, skipped := progress.Counts()
	if succeeded != 1 || failed != 1 || skipped != 1 {
		t.Errorf("Expected 1/1/1, got %d/%d/%d", succeeded, failed, skipped)
	}
	if progress.taskMap["1/1"].Error == nil || progress.taskMap["1/1"].EndTime.IsZero() {
		t.Error("Expected failed task to keep its error and end time")
	}
}

func TestProgress_StartStopRendersTasks(t *testing.T) {
	var buf bytes.Buffer
	progress := NewProgress("Planning Paris")
	progress.SetWriter(&buf)

	progress.Start()
	progress.Start()
	progress.AddTask("1/0", "hotels_finder", "q=Paris")
	progress.StartTask("1/0")
	progress.CompleteTask("1/0")
	progress.Stop()
	progress.Stop()

	out := buf.String()
	if strings.Count(out, "Planning Paris") != 1 {
		t.Errorf("Expected title once, got %q", out)
	}
	if !strings.Contains(out, "hotels_finder") || !strings.Contains(out, "q=Paris") {
		t.Errorf("Expected task line with description, got %q", out)
	}
	if !strings.Contains(out, "found") {
		t.Errorf("Expected completed status, got %q", out)
	}
}

func TestProgress_RenderRewindsOnlyDrawnLines(t *testing.T) {
	var buf bytes.Buffer
	progress := NewProgress("x")
	progress.SetWriter(&buf)

	progress.AddTask("a", "hotels_finder", "")
	progress.render()
	if strings.Contains(buf.String(), "\033[A") {
		t.Error("Expected first render not to move the cursor")
	}

	buf.Reset()
	progress.AddTask("b", "flights_finder", "")
	progress.render()
	if got := strings.Count(buf.String(), "\033[A"); got != 1 {
		t.Errorf("Expected one line rewound, got %d", got)
	}
	if progress.drawn != 2 {
		t.Errorf("Expected 2 drawn lines, got %d", progress.drawn)
	}
}

func TestProgress_PrintSummary(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(*Progress)
		expected []string
	}{
		{
			name:     "no lookups",
			setup:    func(p *Progress) {},
			expected: []string{"No lookups were needed."},
		},
		{
			name: "all found",
			setup: func(p *Progress) {
				p.AddTask("a", "hotels_finder", "")
				p.CompleteTask("a")
			},
			expected: []string{"Lookups: 1/1 succeeded"},
		},
		{
			name: "mixed",
			setup: func(p *Progress) {
				p.AddTask("a", "hotels_finder", "")
				p.AddTask("b", "flights_finder", "")
				p.AddTask("c", "car_rental", "")
				p.CompleteTask("a")
				p.FailTask("b", errors.New("timed out"))
				p.SkipTask("c")
			},
			expected: []string{"Lookups: 1/2 succeeded, 1 failed, 1 unknown", "flights_finder: timed out"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			p := NewProgress("x")
			p.SetWriter(&buf)
			tt.setup(p)
			p.PrintSummary()

			for _, want := range tt.expected {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("Expected %q in summary, got %q", want, buf.String())
				}
			}
		})
	}
}

func TestSimpleProgress(t *testing.T) {
	var buf bytes.Buffer
	sp := NewSimpleProgress("tripagent")
	sp.SetWriter(&buf)

	sp.Start()
	sp.Start()
	sp.Step("Loading configuration")
	sp.Info("store: file")
	sp.Warning("day 2 has no schedule table")
	sp.Success("Saved session abc")
	sp.Failed(errors.New("reasoning unavailable"))
	sp.Failed(nil)

	out := buf.String()
	if strings.Count(out, "tripagent") != 1 {
		t.Errorf("Expected title printed once, got %q", out)
	}
	for _, want := range []string{"Loading configuration", "store: file", "day 2 has no schedule table", "Saved session abc", "reasoning unavailable", "✗ Failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output", want)
		}
	}
}
