package logger

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

var (
	// ErrAppNameIsEmpty is returned if Log.AppName was not defined.
	ErrAppNameIsEmpty = errors.New("config Log.AppName can not be empty")

	// ErrServiceNameIsEmpty is returned if Log.ServiceName was not defined.
	ErrServiceNameIsEmpty = errors.New("config Log.ServiceName can not be empty")

	// ErrInvalidLogLevel is returned if Log.LogLevel is not a zerolog level.
	ErrInvalidLogLevel = errors.New("config Log.LogLevel is not supported")
)

// repeatReport is how many identical write failures are folded into one line.
const repeatReport = 100

// NewErrorHandler returns a zerolog error handler writing to w. A failing
// output tends to fail on every event, so consecutive identical errors are
// folded and only reported every repeatReport occurrences.
func NewErrorHandler(w io.Writer, service string) func(error) {
	var (
		mu       sync.Mutex
		last     string
		repeated int
	)

	return func(err error) {
		mu.Lock()
		defer mu.Unlock()

		msg := err.Error()

		if msg == last {
			repeated++
			if repeated%repeatReport == 0 {
				_, _ = fmt.Fprintf(w, "%s: zerolog: could not write event: %s (repeated %d times)\n", service, msg, repeated)
			}

			return
		}

		if repeated > 0 {
			_, _ = fmt.Fprintf(w, "%s: zerolog: previous write error repeated %d times\n", service, repeated)
		}

		last, repeated = msg, 0

		_, _ = fmt.Fprintf(w, "%s: zerolog: could not write event: %s\n", service, msg)
	}
}
