// Package logging wraps arbor so every component logs through the same structured interface.
package logging

import (
	"os"

	"github.com/phuslu/log"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
	"github.com/ternarybob/arbor/writers"
)

const timeFormat = "2006-01-02T15:04:05Z07:00"

// Config selects log level and outputs.
type Config struct {
	Level      string   `yaml:"level"`
	Outputs    []string `yaml:"outputs"` // console, file
	FilePath   string   `yaml:"file_path"`
	MaxSizeMB  int      `yaml:"max_size_mb"`
	MaxBackups int      `yaml:"max_backups"`
}

// Logger wraps arbor.ILogger.
type Logger struct {
	arbor.ILogger
}

// discardWriter implements writers.IWriter and drops everything.
type discardWriter struct{}

func (w *discardWriter) Write(p []byte) (int, error)           { return len(p), nil }
func (w *discardWriter) WithLevel(_ log.Level) writers.IWriter { return w }
func (w *discardWriter) GetFilePath() string                   { return "" }
func (w *discardWriter) Close() error                          { return nil }

// NewLogger creates a console logger on stderr at the given level.
func NewLogger(level string) *Logger {
	return NewLoggerFromConfig(Config{Level: level, Outputs: []string{"console"}})
}

// NewLoggerFromConfig creates a logger with the configured writers.
// Stdout is never written to so rendered reports can be piped.
func NewLoggerFromConfig(cfg Config) *Logger {
	level := cfg.Level
	if level == "" {
		level = "info"
	}
	outputs := cfg.Outputs
	if len(outputs) == 0 {
		outputs = []string{"console"}
	}

	l := arbor.NewLogger()
	for _, out := range outputs {
		switch out {
		case "console":
			l = l.WithConsoleWriter(models.WriterConfiguration{
				Type:       models.LogWriterTypeConsole,
				Writer:     os.Stderr,
				TimeFormat: timeFormat,
			})
		case "file":
			filePath := cfg.FilePath
			if filePath == "" {
				filePath = "logs/valuate.log"
			}
			maxSize := int64(cfg.MaxSizeMB) * 1024 * 1024
			if maxSize <= 0 {
				maxSize = 500 * 1024
			}
			maxBackups := cfg.MaxBackups
			if maxBackups <= 0 {
				maxBackups = 5
			}
			l = l.WithFileWriter(models.WriterConfiguration{
				Type:       models.LogWriterTypeFile,
				FileName:   filePath,
				MaxSize:    maxSize,
				MaxBackups: maxBackups,
				TimeFormat: timeFormat,
			})
		}
	}

	return &Logger{ILogger: l.WithLevelFromString(level)}
}

// NewSilentLogger creates a logger that discards all output.
// The explicit writer keeps events away from globally registered writers.
func NewSilentLogger() *Logger {
	return &Logger{ILogger: arbor.NewLogger().WithWriters([]writers.IWriter{&discardWriter{}})}
}

// WithCorrelationId returns a logger tagging every event with id.
func (l *Logger) WithCorrelationId(id string) *Logger {
	return &Logger{ILogger: l.ILogger.WithCorrelationId(id)}
}
