package util

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const LOG_BUFFER_SIZE = 1000

var (
	ErrLogNotInitialized = errors.New("log object is not initialized yet")
	globalLogLevel       = LOG_LEVEL_INFO
)

const (
	LOG_LEVEL_ERROR = iota + 1
	LOG_LEVEL_WARN
	LOG_LEVEL_INFO
	LOG_LEVEL_DEBUG
)

type MetricsLogger struct {
	logBuffer         chan LeveledLogger
	handle            *os.File
	console           io.Writer
	wg                *sync.WaitGroup
	loggerInitialized bool
	zapLogger         *zap.Logger
}

type LeveledLogger struct {
	level  int
	logMsg string
}

// Init starts the logger. Diagnostics always go to console; when
// logFileWithPath is set they are also appended to (or, with rewrite,
// truncate) that file.
func (m *MetricsLogger) Init(console io.Writer, logFileWithPath string, rewrite bool) error {

	var err error

	m.wg = new(sync.WaitGroup)
	m.logBuffer = make(chan LeveledLogger, LOG_BUFFER_SIZE)
	m.console = console
	if m.console == nil {
		m.console = os.Stdout
	}

	m.handle = nil
	if logFileWithPath != "" {
		if err = CheckAndCreateFolder(filepath.Dir(logFileWithPath)); err != nil {
			return err
		}

		flags := os.O_RDWR | os.O_CREATE | os.O_APPEND
		if rewrite {
			flags = os.O_RDWR | os.O_CREATE | os.O_TRUNC
		}
		m.handle, err = os.OpenFile(logFileWithPath, flags, 0666)
		if err != nil {
			return err
		}
	}

	m.zapLoggerInit()

	m.wg.Add(1)
	go m.logWritter()

	m.loggerInitialized = true
	return nil
}

func (m *MetricsLogger) zapLoggerInit() {

	level := GlobalLogLevelSetter()

	consoleConfig := zap.NewProductionEncoderConfig()
	consoleConfig.TimeKey = ""
	consoleConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleConfig), zapcore.AddSync(m.console), level),
	}

	if m.handle != nil {
		fileConfig := zap.NewProductionEncoderConfig()
		fileConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		fileConfig.EncodeLevel = zapcore.CapitalLevelEncoder //To Print level in Uppercase.

		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(fileConfig), zapcore.AddSync(m.handle), level))
	}

	m.zapLogger = zap.New(zapcore.NewTee(cores...))
}

func GlobalLogLevelSetter() zapcore.Level {
	switch globalLogLevel {
	case LOG_LEVEL_ERROR:
		return zapcore.ErrorLevel
	case LOG_LEVEL_WARN:
		return zapcore.WarnLevel
	case LOG_LEVEL_DEBUG:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

func (m *MetricsLogger) logWritter() {
	for logdata := range m.logBuffer {
		switch logdata.level {
		case LOG_LEVEL_ERROR:
			m.zapLogger.Error(logdata.logMsg)
		case LOG_LEVEL_WARN:
			m.zapLogger.Warn(logdata.logMsg)
		case LOG_LEVEL_INFO:
			m.zapLogger.Info(logdata.logMsg)
		case LOG_LEVEL_DEBUG:
			m.zapLogger.Debug(logdata.logMsg)
		}
	}
	m.zapLogger.Sync()
	m.wg.Done()
}

// LogEvent queues a message. The first argument may be one of the
// LOG_LEVEL_* constants; the remaining arguments are joined with spaces.
func (m *MetricsLogger) LogEvent(v ...interface{}) error {
	var msg string
	var level int
	var ok bool

	if len(v) == 1 {
		level = LOG_LEVEL_INFO
		msg = fmt.Sprint(v[0])

	} else if len(v) > 1 {
		level, ok = v[0].(int)
		if ok && level >= LOG_LEVEL_ERROR && level <= LOG_LEVEL_DEBUG {
			msg = fmt.Sprintf("%v", v[1:])
		} else {
			level = LOG_LEVEL_INFO
			msg = fmt.Sprintf("%v", v)
		}
		msg = msg[1 : len(msg)-1]
	}

	if !m.loggerInitialized {
		return ErrLogNotInitialized
	}
	m.logBuffer <- LeveledLogger{level, msg}
	return nil
}

// DeInit flushes every queued message and closes the log file.
func (m *MetricsLogger) DeInit() {

	if !m.loggerInitialized {
		return
	}
	m.loggerInitialized = false
	close(m.logBuffer)
	m.wg.Wait()

	if m.handle != nil {
		m.handle.Close()
	}
}

func SetCommonLoggerAttributes(GlobalLogLevel int) {
	globalLogLevel = GlobalLogLevel
}

// ParseLogLevel maps error|warn|info|debug to a LOG_LEVEL_* constant.
func ParseLogLevel(level string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error":
		return LOG_LEVEL_ERROR, nil
	case "warn", "warning":
		return LOG_LEVEL_WARN, nil
	case "info", "":
		return LOG_LEVEL_INFO, nil
	case "debug":
		return LOG_LEVEL_DEBUG, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", level)
	}
}

func CheckAndCreateFolder(FolderNameWithPath string) error {
	_, err := os.Stat(FolderNameWithPath)

	if os.IsNotExist(err) {
		if err := os.MkdirAll(FolderNameWithPath, 0755); err != nil {
			return fmt.Errorf("failed to create folder %s: %w", FolderNameWithPath, err)
		}
		return nil
	}
	return err
}
