package tui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Progress styles for the TUI
var (
	progressTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FAFAFA")).
				Background(ColorPrimary).
				Padding(0, 1)

	progressStepStyle = lipgloss.NewStyle().
				Foreground(ColorPrimary)

	progressInfoStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#A0A0A0"))

	progressSuccessStyle = lipgloss.NewStyle().
				Foreground(ColorSuccess)

	progressErrorStyle = lipgloss.NewStyle().
				Foreground(ColorError)

	progressWarningStyle = lipgloss.NewStyle().
				Foreground(ColorWarning)
)

type TaskStatus int

const (
	TaskPending TaskStatus = iota
	TaskRunning
	TaskSuccess
	TaskError
	TaskSkipped
)

// Task is one lookup line
type Task struct {
	ID          string
	Name        string
	Description string
	Status      TaskStatus
	Error       error
	StartTime   time.Time
	EndTime     time.Time
}

// Progress draws a live list of lookups. Tasks may be added after Start;
// each redraw rewinds exactly the lines drawn before.
type Progress struct {
	mu           sync.Mutex
	writer       io.Writer
	title        string
	tasks        []*Task
	taskMap      map[string]*Task
	spinnerFrame int
	drawn        int
	ticker       *time.Ticker
	done         chan struct{}
	started      bool
	stopped      bool
}

func NewProgress(title string) *Progress {
	return &Progress{
		title:   title,
		tasks:   make([]*Task, 0),
		taskMap: make(map[string]*Task),
		done:    make(chan struct{}),
	}
}

func (p *Progress) SetWriter(w io.Writer) {
	p.writer = w
}

func (p *Progress) getWriter() io.Writer {
	if p.writer == nil {
		return os.Stderr
	}
	return p.writer
}

func (p *Progress) AddTask(id, name, description string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	task := &Task{
		ID:          id,
		Name:        name,
		Description: description,
		Status:      TaskPending,
	}
	p.tasks = append(p.tasks, task)
	p.taskMap[id] = task
}

func (p *Progress) StartTask(id string) {
	p.update(id, func(t *Task) {
		t.Status = TaskRunning
		t.StartTime = time.Now()
	})
}

func (p *Progress) CompleteTask(id string) {
	p.update(id, func(t *Task) {
		t.Status = TaskSuccess
		t.EndTime = time.Now()
	})
}

func (p *Progress) FailTask(id string, err error) {
	p.update(id, func(t *Task) {
		t.Status = TaskError
		t.Error = err
		t.EndTime = time.Now()
	})
}

func (p *Progress) SkipTask(id string) {
	p.update(id, func(t *Task) {
		t.Status = TaskSkipped
	})
}

// update mutates a known task; render() owns all output
func (p *Progress) update(id string, fn func(*Task)) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if task, ok := p.taskMap[id]; ok {
		fn(task)
	}
}

func (p *Progress) Start() {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true

	_, _ = fmt.Fprintln(p.getWriter())
	_, _ = fmt.Fprintln(p.getWriter(), progressTitleStyle.Render(" "+p.title+" "))
	_, _ = fmt.Fprintln(p.getWriter())
	p.render()
	p.mu.Unlock()

	p.ticker = time.NewTicker(100 * time.Millisecond)
	go p.animate()
}

func (p *Progress) animate() {
	for {
		select {
		case <-p.done:
			return
		case <-p.ticker.C:
			p.mu.Lock()
			p.spinnerFrame = (p.spinnerFrame + 1) % len(SpinnerFrames)
			p.render()
			p.mu.Unlock()
		}
	}
}

func (p *Progress) render() {
	w := p.getWriter()
	if p.drawn > 0 {
		_, _ = fmt.Fprint(w, strings.Repeat("\033[A\033[2K", p.drawn))
	}
	for _, task := range p.tasks {
		_, _ = fmt.Fprintln(w, p.formatTaskLine(task))
	}
	p.drawn = len(p.tasks)
}

func (p *Progress) formatTaskLine(task *Task) string {
	var icon, status string
	var style lipgloss.Style

	switch task.Status {
	case TaskPending:
		icon = progressInfoStyle.Render(IconPending)
		status = progressInfoStyle.Render("queued")
		style = progressInfoStyle
	case TaskRunning:
		icon = progressStepStyle.Render(SpinnerFrames[p.spinnerFrame])
		elapsed := time.Since(task.StartTime).Round(time.Second)
		status = progressStepStyle.Render(fmt.Sprintf("searching %s", elapsed))
		style = progressStepStyle
	case TaskSuccess:
		icon = progressSuccessStyle.Render(IconSuccess)
		duration := task.EndTime.Sub(task.StartTime).Round(time.Millisecond)
		status = progressSuccessStyle.Render(fmt.Sprintf("found %s", duration))
		style = progressSuccessStyle
	case TaskError:
		icon = progressErrorStyle.Render(IconError)
		status = progressErrorStyle.Render("failed")
		style = progressErrorStyle
	case TaskSkipped:
		icon = progressInfoStyle.Render(IconPending)
		status = progressInfoStyle.Render("unknown tool")
		style = progressInfoStyle
	}

	name := style.Render(task.Name)
	if task.Description != "" {
		name += " " + StyleMuted.Render(task.Description)
	}

	return fmt.Sprintf("  %s %s %s", icon, name, status)
}

func (p *Progress) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started || p.stopped {
		return
	}
	p.stopped = true

	if p.ticker != nil {
		p.ticker.Stop()
	}
	close(p.done)

	p.render()
}

// Counts returns how many lookups succeeded, failed and were skipped
func (p *Progress) Counts() (succeeded, failed, skipped int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, t := range p.tasks {
		switch t.Status {
		case TaskSuccess:
			succeeded++
		case TaskError:
			failed++
		case TaskSkipped:
			skipped++
		}
	}
	return succeeded, failed, skipped
}

func (p *Progress) PrintSummary() {
	succeeded, failed, skipped := p.Counts()

	p.mu.Lock()
	defer p.mu.Unlock()

	w := p.getWriter()
	if len(p.tasks) == 0 {
		_, _ = fmt.Fprintln(w, progressInfoStyle.Render("No lookups were needed."))
		return
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 50))

	summary := fmt.Sprintf("Lookups: %d/%d succeeded", succeeded, len(p.tasks)-skipped)
	if failed > 0 {
		summary += fmt.Sprintf(", %d failed", failed)
	}
	if skipped > 0 {
		summary += fmt.Sprintf(", %d unknown", skipped)
	}

	if failed == 0 {
		_, _ = fmt.Fprintf(w, "%s %s\n", progressSuccessStyle.Render(IconSuccess), progressSuccessStyle.Render(summary))
		return
	}

	_, _ = fmt.Fprintf(w, "%s %s\n", progressErrorStyle.Render(IconError), progressWarningStyle.Render(summary))
	for _, t := range p.tasks {
		if t.Status == TaskError && t.Error != nil {
			_, _ = fmt.Fprintf(w, "  %s %s: %s\n", progressErrorStyle.Render(IconError), t.Name, t.Error.Error())
		}
	}
}

// SimpleProgress prints one line per step without redrawing
type SimpleProgress struct {
	writer  io.Writer
	title   string
	started bool
}

func NewSimpleProgress(title string) *SimpleProgress {
	return &SimpleProgress{
		title: title,
	}
}

func (sp *SimpleProgress) SetWriter(w io.Writer) {
	sp.writer = w
}

func (sp *SimpleProgress) getWriter() io.Writer {
	if sp.writer == nil {
		return os.Stderr
	}
	return sp.writer
}

func (sp *SimpleProgress) Start() {
	if sp.started {
		return
	}
	sp.started = true
	_, _ = fmt.Fprintln(sp.getWriter())
	_, _ = fmt.Fprintln(sp.getWriter(), progressTitleStyle.Render(" "+sp.title+" "))
	_, _ = fmt.Fprintln(sp.getWriter())
}

func (sp *SimpleProgress) Step(message string) {
	_, _ = fmt.Fprintf(sp.getWriter(), "%s %s\n", progressStepStyle.Render(IconRunning), message)
}

func (sp *SimpleProgress) Success(message string) {
	_, _ = fmt.Fprintf(sp.getWriter(), "%s %s\n", progressSuccessStyle.Render(IconSuccess), progressSuccessStyle.Render(message))
}

func (sp *SimpleProgress) Warning(message string) {
	_, _ = fmt.Fprintf(sp.getWriter(), "%s %s\n", progressWarningStyle.Render("⚠"), message)
}

func (sp *SimpleProgress) Info(message string) {
	_, _ = fmt.Fprintf(sp.getWriter(), "  %s\n", progressInfoStyle.Render(message))
}

func (sp *SimpleProgress) Failed(err error) {
	_, _ = fmt.Fprintln(sp.getWriter())
	if err != nil {
		_, _ = fmt.Fprintf(sp.getWriter(), "%s %s\n", progressErrorStyle.Render("✗ Failed:"), err.Error())
		return
	}
	_, _ = fmt.Fprintf(sp.getWriter(), "%s\n", progressErrorStyle.Render("✗ Failed"))
}
