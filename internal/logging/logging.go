package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"scoundrel/internal/config"
)

// New builds the root logger. Pretty output is meant for terminals; the
// default is one JSON object per line.
func New(c config.LogConfig, w io.Writer) (zerolog.Logger, error) {
	if w == nil {
		w = os.Stdout
	}
	level := zerolog.InfoLevel
	if c.Level != "" {
		l, err := zerolog.ParseLevel(c.Level)
		if err != nil {
			return zerolog.Nop(), err
		}
		level = l
	}
	if c.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
