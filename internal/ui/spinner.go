package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

var (
	globalSpinner     *Spinner
	globalSpinnerOnce sync.Once
)

// GlobalSpinner returns the spinner shared by every command, so that the root
// command can always stop it before the process exits.
func GlobalSpinner() *Spinner {
	globalSpinnerOnce.Do(func() {
		globalSpinner = NewSpinner()
	})
	return globalSpinner
}

// Spinner draws a Bubble Tea spinner on stderr. Start and Stop are counted and
// the spinner keeps running until every Start has been matched.
type Spinner struct {
	mu      sync.Mutex
	out     io.Writer
	isTTY   bool
	count   int
	message string
	program *tea.Program
	quitCh  chan struct{}
}

type spinnerModel struct {
	spinner spinner.Model
	message string
	done    bool
}

type msgUpdate string
type msgQuit struct{}

func newSpinnerModel(message string) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle
	return spinnerModel{spinner: s, message: message}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case msgUpdate:
		m.message = string(msg)
	case msgQuit:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), DimStyle.Render(m.message))
}

func NewSpinner() *Spinner {
	return &Spinner{
		out:   os.Stderr,
		isTTY: term.IsTerminal(int(os.Stderr.Fd())),
	}
}

// Start shows message, starting the spinner if it is not already running.
// Without a terminal the message is printed once instead.
func (s *Spinner) Start(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.count++
	s.message = message

	if s.program != nil {
		s.program.Send(msgUpdate(message))
		return
	}
	if !s.isTTY {
		fmt.Fprintln(s.out, DimStyle.Render(message))
		return
	}

	s.quitCh = make(chan struct{})
	s.program = tea.NewProgram(newSpinnerModel(message), tea.WithOutput(s.out))
	go func(p *tea.Program, done chan struct{}) {
		_, _ = p.Run()
		close(done)
	}(s.program, s.quitCh)
}

// Update replaces the message without touching the count.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.message = message
	if s.program != nil {
		s.program.Send(msgUpdate(message))
	}
}

// Stop matches one Start.
func (s *Spinner) Stop() {
	s.halt(false)
}

// StopAll stops the spinner whatever the count.
func (s *Spinner) StopAll() {
	s.halt(true)
}

// halt blocks until the program has cleared its line.
func (s *Spinner) halt(all bool) {
	s.mu.Lock()
	if all {
		s.count = 0
	} else if s.count > 0 {
		s.count--
	}
	if s.count > 0 || s.program == nil {
		s.mu.Unlock()
		return
	}

	p, done := s.program, s.quitCh
	s.program = nil
	s.mu.Unlock()

	p.Send(msgQuit{})
	<-done
}
