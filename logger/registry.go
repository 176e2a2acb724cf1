package logger

import "sync"

// named caches component loggers; SetGlobalLogger empties it.
var named sync.Map

// Get returns the global logger tagged with component=name. Packages call it
// once at construction, after Init has run.
func Get(name string) *Logger {
	if l, ok := named.Load(name); ok {
		return l.(*Logger)
	}
	l, _ := named.LoadOrStore(name, GetGlobalLogger().WithComponent(name))
	return l.(*Logger)
}
