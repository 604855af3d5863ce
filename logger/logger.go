package logger

import (
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logDir      = "log"
	logFilename = "lokirent.log"
)

var Logger zerolog.Logger
var HttpLogger zerolog.Logger
var logFilePath string
var Writer io.Writer

// Init configures the console logger. logLevel uses the numeric scale
// Panic=0 .. Trace=6 so existing deployments keep their LOG_LEVEL values.
func Init(logLevel string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.DateTime,
	}
	Writer = consoleWriter

	Logger = zerolog.New(consoleWriter).
		With().
		Timestamp().
		Logger()

	// request logs stay quiet until a file logger is attached
	HttpLogger = zerolog.New(io.Discard).
		With().
		Timestamp().
		Logger()

	zLevel := parseLevel(logLevel)

	zerolog.SetGlobalLevel(zLevel)
	Logger = Logger.Level(zLevel)
	HttpLogger = HttpLogger.Level(zLevel)

	if zLevel <= zerolog.DebugLevel {
		buildInfo, _ := debug.ReadBuildInfo()
		Logger = Logger.With().
			Caller().
			Interface("build_info", buildInfo).
			Logger()
		Logger.Debug().Msg("Zerolog caller reporting enabled in debug mode")
	}
}

func parseLevel(logLevel string) zerolog.Level {
	level, err := strconv.Atoi(logLevel)
	if err != nil {
		return zerolog.InfoLevel
	}

	switch level {
	case 6:
		return zerolog.TraceLevel
	case 5:
		return zerolog.DebugLevel
	case 4:
		return zerolog.InfoLevel
	case 3:
		return zerolog.WarnLevel
	case 2:
		return zerolog.ErrorLevel
	case 1:
		return zerolog.FatalLevel
	case 0:
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}

func AddFileLogger(workdir string) error {
	logFilePath = filepath.Join(workdir, logDir, logFilename)
	fileLogger := &lumberjack.Logger{
		Filename:   logFilePath,
		MaxAge:     3,
		MaxBackups: 3,
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.DateTime,
	}
	multi := zerolog.MultiLevelWriter(consoleWriter, fileLogger)
	Writer = multi

	level := Logger.GetLevel()
	Logger = zerolog.New(multi).
		With().
		Timestamp().
		Logger().
		Level(level)

	HttpLogger = zerolog.New(fileLogger).
		With().
		Timestamp().
		Logger().
		Level(level)

	return nil
}

func GetLogFilePath() string {
	return logFilePath
}
