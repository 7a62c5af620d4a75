package logging

import (
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LogLevel определяет уровни логирования
type LogLevel int

const (
	TRACE LogLevel = iota
	DEBUG
	INFO
	WARN
	ERROR
)

// String возвращает строковое представление уровня логирования
func (l LogLevel) String() string {
	switch l {
	case TRACE:
		return "TRACE"
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel разбирает уровень из строки конфигурации. Неизвестное значение даёт INFO.
func ParseLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return TRACE
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// LogDir каталог для файлов логов
var LogDir = "logs"

// Logger логгер компонента: пишет в консоль и в собственный файл
type Logger struct {
	component       string
	consoleLogger   *log.Logger
	fileLogger      *log.Logger
	file            *os.File
	minConsoleLevel LogLevel
	minFileLevel    LogLevel
	mu              sync.Mutex
}

// NewLogger создаёт логгер компонента с файлом logs/<component>_<timestamp>.log
func NewLogger(component string) (*Logger, error) {
	if err := os.MkdirAll(LogDir, 0755); err != nil {
		return nil, fmt.Errorf("ошибка создания директории %s: %w", LogDir, err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := filepath.Join(LogDir, fmt.Sprintf("%s_%s.log", component, timestamp))

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания файла логов: %w", err)
	}

	return &Logger{
		component:       component,
		consoleLogger:   log.New(os.Stdout, "", log.LstdFlags),
		fileLogger:      log.New(file, "", log.LstdFlags),
		file:            file,
		minConsoleLevel: INFO,
		minFileLevel:    TRACE,
	}, nil
}

// NewWriterLogger создаёт логгер без файла, пишущий в w (используется в тестах и CLI)
func NewWriterLogger(component string, w io.Writer, level LogLevel) *Logger {
	return &Logger{
		component:       component,
		consoleLogger:   log.New(w, "", log.LstdFlags),
		minConsoleLevel: level,
		minFileLevel:    ERROR + 1,
	}
}

// Close закрывает файл логгера
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.fileLogger = nil
	return err
}

// SetLevels меняет минимальные уровни для консоли и файла
func (l *Logger) SetLevels(console, file LogLevel) {
	l.mu.Lock()
	l.minConsoleLevel = console
	l.minFileLevel = file
	l.mu.Unlock()
}

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	message := fmt.Sprintf("[%s] [%s] %s", level.String(), l.component, fmt.Sprintf(format, args...))

	if l.fileLogger != nil && level >= l.minFileLevel {
		l.fileLogger.Println(message)
	}
	if l.consoleLogger != nil && level >= l.minConsoleLevel {
		l.consoleLogger.Println(message)
	}
}

// Trace логирует сообщение уровня TRACE
func (l *Logger) Trace(format string, args ...interface{}) { l.log(TRACE, format, args...) }

// Debug логирует сообщение уровня DEBUG
func (l *Logger) Debug(format string, args ...interface{}) { l.log(DEBUG, format, args...) }

// Info логирует сообщение уровня INFO
func (l *Logger) Info(format string, args ...interface{}) { l.log(INFO, format, args...) }

// Warn логирует сообщение уровня WARN
func (l *Logger) Warn(format string, args ...interface{}) { l.log(WARN, format, args...) }

// Error логирует сообщение уровня ERROR
func (l *Logger) Error(format string, args ...interface{}) { l.log(ERROR, format, args...) }

// Глобальный логгер по умолчанию. До InitDefaultLogger пишет только в консоль.
var defaultLogger = NewWriterLogger("default", os.Stdout, INFO)

// InitDefaultLogger инициализирует глобальный логгер с файлом для компонента
func InitDefaultLogger(component string) error {
	logger, err := NewLogger(component)
	if err != nil {
		return err
	}
	defaultLogger = logger
	return nil
}

// CloseDefaultLogger закрывает глобальный логгер
func CloseDefaultLogger() {
	if defaultLogger != nil {
		_ = defaultLogger.Close()
	}
}

// SetDefaultLevel меняет уровень консольного вывода глобального логгера
func SetDefaultLevel(level LogLevel) {
	defaultLogger.mu.Lock()
	defaultLogger.minConsoleLevel = level
	defaultLogger.mu.Unlock()
}

// Trace логирует через глобальный логгер
func Trace(format string, args ...interface{}) { defaultLogger.Trace(format, args...) }

// Debug логирует через глобальный логгер
func Debug(format string, args ...interface{}) { defaultLogger.Debug(format, args...) }

// Info логирует через глобальный логгер
func Info(format string, args ...interface{}) { defaultLogger.Info(format, args...) }

// Warn логирует через глобальный логгер
func Warn(format string, args ...interface{}) { defaultLogger.Warn(format, args...) }

// Error логирует через глобальный логгер
func Error(format string, args ...interface{}) { defaultLogger.Error(format, args...) }

// HexDump создает hex дамп данных
func HexDump(data []byte) string {
	if len(data) == 0 {
		return "No data"
	}

	// Ограничиваем размер дампа до 256 байт
	size := len(data)
	if size > 256 {
		size = 256
	}

	return hex.Dump(data[:size])
}
