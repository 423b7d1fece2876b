package core

// Logger is any leveled logger the app can report through.
// args may carry errors, maps of extra context or the authenticated account
// (implementations decide what to do with each).
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
