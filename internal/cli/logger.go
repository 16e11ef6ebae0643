package cli

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"

	"github.com/mrz1836/clickplan/internal/config"
	"github.com/mrz1836/clickplan/internal/logging"
)

var (
	logFileWriter     io.WriteCloser //nolint:gochecknoglobals // closed on shutdown
	logFileMu         sync.Mutex     //nolint:gochecknoglobals // Protects logFileWriter
	zerologConfigOnce sync.Once      //nolint:gochecknoglobals // One-time configuration
	zerologGlobalMu   sync.Mutex     //nolint:gochecknoglobals // Protects the zerolog global logger
)

// configureZerologGlobals shortens the timestamp and message field names
// once per process.
func configureZerologGlobals() {
	zerologConfigOnce.Do(func() {
		zerolog.TimestampFieldName = "ts"
		zerolog.MessageFieldName = "event"
	})
}

// InitLogger creates the CLI logger.
//
// Levels: verbose selects debug, quiet selects warn, otherwise info.
// On a terminal without NO_COLOR the console gets a human-readable writer,
// otherwise JSON lines on stderr. Every event is also appended to
// ~/.clickplan/logs/clickplan.log, rotated per rotation; when the file
// cannot be opened logging continues on the console only.
func InitLogger(verbose, quiet bool, rotation logging.Rotation) zerolog.Logger {
	configureZerologGlobals()

	writer := selectOutput()
	if fw, err := createLogFileWriter(rotation); err == nil {
		logFileMu.Lock()
		logFileWriter = fw
		logFileMu.Unlock()
		writer = zerolog.MultiLevelWriter(writer, fw)
	}

	logger := zerolog.New(writer).Level(selectLevel(verbose, quiet)).With().Timestamp().Logger()
	setGlobalLogger(logger)
	return logger
}

// InitLoggerWithWriter creates a logger writing only to w. Tests use it.
func InitLoggerWithWriter(verbose, quiet bool, w io.Writer) zerolog.Logger {
	configureZerologGlobals()
	logger := zerolog.New(w).Level(selectLevel(verbose, quiet)).With().Timestamp().Logger()
	setGlobalLogger(logger)
	return logger
}

// setGlobalLogger points the zerolog/log package logger at l.
func setGlobalLogger(l zerolog.Logger) {
	zerologGlobalMu.Lock()
	defer zerologGlobalMu.Unlock()
	log.Logger = l
}

// CloseLogFile closes the log file if InitLogger opened one.
func CloseLogFile() {
	logFileMu.Lock()
	defer logFileMu.Unlock()
	if logFileWriter != nil {
		_ = logFileWriter.Close()
		logFileWriter = nil
	}
}

func selectLevel(verbose, quiet bool) zerolog.Level {
	switch {
	case verbose:
		return zerolog.DebugLevel
	case quiet:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

func selectOutput() io.Writer {
	if term.IsTerminal(int(os.Stderr.Fd())) && os.Getenv("NO_COLOR") == "" {
		return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	return os.Stderr
}

func createLogFileWriter(rotation logging.Rotation) (io.WriteCloser, error) {
	dir, err := config.LogDir()
	if err != nil {
		return nil, err
	}
	return logging.NewRotatingWriter(dir, rotation)
}

// LogFilePath returns the path of the CLI log file.
func LogFilePath() (string, error) {
	dir, err := config.LogDir()
	if err != nil {
		return "", err
	}
	return logging.FilePath(dir), nil
}
