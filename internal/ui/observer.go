package ui

import (
	"io"
	"os"
	"sync"
)

// SpinnerObserver renders progress events on a spinner and prints the final
// message of each operation.
type SpinnerObserver struct {
	spinner *Spinner
	quiet   bool

	mu      sync.Mutex
	message string
}

// NewSpinnerObserver reports on spinner. When quiet is set only the spinner is
// shown and completion messages are dropped.
func NewSpinnerObserver(spinner *Spinner, quiet bool) *SpinnerObserver {
	return &SpinnerObserver{spinner: spinner, quiet: quiet}
}

func (o *SpinnerObserver) Start(msg string) {
	o.setMessage(msg)
	o.spinner.Start(msg)
}

func (o *SpinnerObserver) Update(msg string) {
	o.setMessage(msg)
	o.spinner.Update(msg)
}

// Finish stops the spinner. An empty msg marks a failed operation and prints
// nothing.
func (o *SpinnerObserver) Finish(msg string) {
	o.spinner.Stop()
	if msg != "" && !o.quiet {
		Success(msg)
	}
}

// Download has the signature of archivecache.Copier. It hands the terminal to
// the progress bar for the duration of the copy and resumes the spinner after.
func (o *SpinnerObserver) Download(body io.ReadCloser, contentLength int64, dst *os.File, message string) error {
	o.spinner.StopAll()
	err := DownloadWithProgress(body, contentLength, dst, message)

	o.mu.Lock()
	resume := o.message
	o.mu.Unlock()
	o.spinner.Start(resume)
	return err
}

func (o *SpinnerObserver) setMessage(msg string) {
	o.mu.Lock()
	o.message = msg
	o.mu.Unlock()
}
