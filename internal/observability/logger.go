package observability

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// NewLogger returns a console logger writing to out. Debug messages are
// enabled when verbose is set.
func NewLogger(out io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	writer := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.TimeOnly,
		NoColor:    !isTerminal(out),
	}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// Setup installs a stderr logger as the global zerolog logger and returns it.
func Setup(verbose bool) zerolog.Logger {
	logger := NewLogger(os.Stderr, verbose)
	log.Logger = logger
	return logger
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
