// Package logging provides categorized file-based debug logging.
// Logs are written to <workspace>/.ycscout/logs with one file per
// category per day. When debug mode is off the package is a no-op, so
// call sites never guard their log statements.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category represents a log category.
type Category string

const (
	CategoryBoot   Category = "boot"   // startup, config resolution
	CategoryFetch  Category = "fetch"  // HTTP fetching, retries, rate limiting
	CategoryParse  Category = "parse"  // __NEXT_DATA__ and HTML fallback parsing
	CategoryStore  Category = "store"  // checkpoint store operations
	CategoryScrape Category = "scrape" // worker pool, per-link progress
	CategoryExport Category = "export" // CSV/Excel writers
)

// Logger writes category-tagged lines to its own file.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	mu      sync.RWMutex
	loggers = make(map[Category]*Logger)
	logsDir string
	enabled bool
)

// Initialize sets up the log directory. With debug=false the package
// stays silent and no directory is created.
func Initialize(workspace string, debug bool) error {
	mu.Lock()
	defer mu.Unlock()

	enabled = debug
	if !debug {
		return nil
	}
	if workspace == "" {
		workspace = "."
	}
	logsDir = filepath.Join(workspace, ".ycscout", "logs")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("create logs directory: %w", err)
	}
	return nil
}

// Enabled reports whether debug logging is active.
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// Get returns (or creates) the logger for a category. Returns a no-op
// logger when debug mode is off or the file cannot be opened.
func Get(category Category) *Logger {
	mu.RLock()
	if !enabled || logsDir == "" {
		mu.RUnlock()
		return &Logger{category: category}
	}
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	// Date prefix keeps rotation a matter of deleting old files.
	filename := fmt.Sprintf("%s_%s.log", time.Now().Format("2006-01-02"), category)
	path := filepath.Join(logsDir, filename)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] could not open %s: %v\n", path, err)
		return &Logger{category: category}
	}

	l := &Logger{
		category: category,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[category] = l
	return l
}

func (l *Logger) printf(level, format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[%s] %s", level, fmt.Sprintf(format, args...))
}

func (l *Logger) Debug(format string, args ...interface{}) { l.printf("DEBUG", format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.printf("INFO", format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.printf("WARN", format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.printf("ERROR", format, args...) }

// CloseAll flushes and closes every open log file. Call on shutdown.
func CloseAll() {
	mu.Lock()
	defer mu.Unlock()
	for cat, l := range loggers {
		if l.file != nil {
			_ = l.file.Close()
		}
		delete(loggers, cat)
	}
}

// Category helpers, matching call-site shorthand.

func Boot(format string, args ...interface{})        { Get(CategoryBoot).Info(format, args...) }
func BootDebug(format string, args ...interface{})   { Get(CategoryBoot).Debug(format, args...) }
func Fetch(format string, args ...interface{})       { Get(CategoryFetch).Info(format, args...) }
func FetchDebug(format string, args ...interface{})  { Get(CategoryFetch).Debug(format, args...) }
func Parse(format string, args ...interface{})       { Get(CategoryParse).Info(format, args...) }
func ParseDebug(format string, args ...interface{})  { Get(CategoryParse).Debug(format, args...) }
func Store(format string, args ...interface{})       { Get(CategoryStore).Info(format, args...) }
func StoreDebug(format string, args ...interface{})  { Get(CategoryStore).Debug(format, args...) }
func Scrape(format string, args ...interface{})      { Get(CategoryScrape).Info(format, args...) }
func ScrapeDebug(format string, args ...interface{}) { Get(CategoryScrape).Debug(format, args...) }
func Export(format string, args ...interface{})      { Get(CategoryExport).Info(format, args...) }
func ExportDebug(format string, args ...interface{}) { Get(CategoryExport).Debug(format, args...) }
