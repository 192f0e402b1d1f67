// Package clock provides cancellable recurring tasks for Bubble Tea programs.
package clock

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

var lastID atomic.Int64

func nextID() int {
	return int(lastID.Add(1))
}

// TickMsg is delivered once per interval while a task runs.
type TickMsg struct {
	ID   int
	Time time.Time
	tag  int
}

// Task fires TickMsg values at a fixed interval. Every Start or Stop
// invalidates ticks already in flight, so a tick scheduled for a previous
// question never reaches the current one.
type Task struct {
	id       int
	tag      int
	interval time.Duration
	running  bool
}

// New returns a stopped task.
func New(interval time.Duration) *Task {
	return &Task{id: nextID(), interval: interval}
}

// ID identifies the task's messages.
func (t *Task) ID() int { return t.id }

// Running reports whether ticks are being accepted.
func (t *Task) Running() bool { return t.running }

// Start (re)starts the task and schedules the first tick.
func (t *Task) Start() tea.Cmd {
	t.tag++
	t.running = true
	return t.schedule()
}

// Stop cancels the pending tick.
func (t *Task) Stop() {
	t.tag++
	t.running = false
}

// Accept reports whether msg belongs to the current run of the task and, if
// so, schedules the next tick.
func (t *Task) Accept(msg TickMsg) (bool, tea.Cmd) {
	if !t.running || msg.ID != t.id || msg.tag != t.tag {
		return false, nil
	}
	return true, t.schedule()
}

func (t *Task) schedule() tea.Cmd {
	id, tag := t.id, t.tag
	return tea.Tick(t.interval, func(now time.Time) tea.Msg {
		return TickMsg{ID: id, Time: now, tag: tag}
	})
}
