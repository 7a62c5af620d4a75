package logging

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Имена компонентов сервиса карт
const (
	ComponentAPI     = "api"
	ComponentStorage = "storage"
)

// LoggerManager хранит файловые логгеры компонентов.
// Уровень консоли задаётся один раз для всех, включая созданные позже.
type LoggerManager struct {
	mu           sync.RWMutex
	loggers      map[string]*Logger
	consoleLevel LogLevel
}

var (
	globalManager *LoggerManager
	managerOnce   sync.Once
)

func newLoggerManager() *LoggerManager {
	return &LoggerManager{loggers: make(map[string]*Logger), consoleLevel: INFO}
}

// GetLoggerManager возвращает глобальный менеджер логгеров
func GetLoggerManager() *LoggerManager {
	managerOnce.Do(func() {
		globalManager = newLoggerManager()
	})
	return globalManager
}

// GetLogger возвращает логгер компонента, создавая его при первом обращении
func (lm *LoggerManager) GetLogger(component string) (*Logger, error) {
	lm.mu.RLock()
	logger, exists := lm.loggers[component]
	lm.mu.RUnlock()
	if exists {
		return logger, nil
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()
	if logger, exists := lm.loggers[component]; exists {
		return logger, nil
	}

	logger, err := NewLogger(component)
	if err != nil {
		return nil, fmt.Errorf("логгер компонента %s: %w", component, err)
	}
	logger.SetLevels(lm.consoleLevel, TRACE)
	lm.loggers[component] = logger
	return logger, nil
}

// MustGetLogger возвращает логгер; если файл создать нельзя, пишет только в консоль
func (lm *LoggerManager) MustGetLogger(component string) *Logger {
	logger, err := lm.GetLogger(component)
	if err != nil {
		defaultLogger.Warn("⚠️ %v, вывод только в консоль", err)
		return &Logger{
			component:       component,
			consoleLogger:   defaultLogger.consoleLogger,
			minConsoleLevel: lm.level(),
			minFileLevel:    ERROR + 1,
		}
	}
	return logger
}

func (lm *LoggerManager) level() LogLevel {
	lm.mu.RLock()
	defer lm.mu.RUnlock()
	return lm.consoleLevel
}

// SetConsoleLevel меняет уровень консоли у всех компонентов
func (lm *LoggerManager) SetConsoleLevel(level LogLevel) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	lm.consoleLevel = level
	for _, l := range lm.loggers {
		l.SetLevels(level, TRACE)
	}
}

// Components отсортированный список созданных логгеров
func (lm *LoggerManager) Components() []string {
	lm.mu.RLock()
	defer lm.mu.RUnlock()

	out := make([]string, 0, len(lm.loggers))
	for c := range lm.loggers {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// CloseAll закрывает файлы всех логгеров
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var errs []error
	for component, logger := range lm.loggers {
		if err := logger.Close(); err != nil {
			errs = append(errs, fmt.Errorf("закрытие логгера %s: %w", component, err))
		}
	}
	lm.loggers = make(map[string]*Logger)
	return errors.Join(errs...)
}

// GetComponentLogger логгер компонента из глобального менеджера
func GetComponentLogger(component string) *Logger {
	return GetLoggerManager().MustGetLogger(component)
}

func GetAPILogger() *Logger {
	return GetComponentLogger(ComponentAPI)
}

func GetStorageLogger() *Logger {
	return GetComponentLogger(ComponentStorage)
}
