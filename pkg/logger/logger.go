package logger

// Backend is implemented by logging sinks the facade dispatches to.
type Backend interface {
	Debug(message string, keyvals ...any)
	Info(message string, keyvals ...any)
	Warn(message string, keyvals ...any)
	Error(message string, keyvals ...any)
	Fatal(message string, keyvals ...any)
}

// Logger fans log calls out to every configured backend.
type Logger struct {
	backends []Backend
}

var singleton *Logger

// Init installs the global logger. Call once at process start before any
// logging function.
func Init(backends ...Backend) {
	singleton = &Logger{backends: backends}
}

func dispatch(fn func(b Backend)) {
	l := singleton
	if l == nil {
		return
	}
	for _, b := range l.backends {
		fn(b)
	}
}

// Debug writes a message at DEBUG level to all backends.
func Debug(message string, keyvals ...any) {
	dispatch(func(b Backend) { b.Debug(message, keyvals...) })
}

// Info writes a message at INFO level to all backends.
func Info(message string, keyvals ...any) {
	dispatch(func(b Backend) { b.Info(message, keyvals...) })
}

// Warn writes a message at WARN level to all backends.
func Warn(message string, keyvals ...any) {
	dispatch(func(b Backend) { b.Warn(message, keyvals...) })
}

// Error writes a message at ERROR level to all backends.
func Error(message string, keyvals ...any) {
	dispatch(func(b Backend) { b.Error(message, keyvals...) })
}

// Fatal writes a message at FATAL level and terminates the program.
func Fatal(message string, keyvals ...any) {
	dispatch(func(b Backend) { b.Fatal(message, keyvals...) })
}
