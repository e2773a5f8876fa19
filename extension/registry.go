// registry.go holds the global extension registry. Extensions call Register
// from init(), before main runs, and registration order is kept so commands
// and tools appear in a stable order.

package extension

import "sync"

var (
	mu       sync.RWMutex
	registry = make(map[string]Extension)
	order    []string
)

// Register adds an extension. It panics on a duplicate name, like
// database/sql.Register: a clash is a programming error found at startup.
func Register(e Extension) {
	mu.Lock()
	defer mu.Unlock()

	name := e.Name()
	if _, exists := registry[name]; exists {
		panic("extension already registered: " + name)
	}
	registry[name] = e
	order = append(order, name)
}

// All returns all registered extensions in registration order.
func All() []Extension {
	mu.RLock()
	defer mu.RUnlock()

	exts := make([]Extension, 0, len(order))
	for _, name := range order {
		exts = append(exts, registry[name])
	}
	return exts
}

// Get returns the extension called name, or nil.
func Get(name string) Extension {
	mu.RLock()
	defer mu.RUnlock()
	return registry[name]
}

// Names returns the names of all registered extensions in order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, len(order))
	copy(names, order)
	return names
}

// OfflineCommands returns the command names declared by Offline extensions.
func OfflineCommands() map[string]bool {
	cmds := map[string]bool{}
	for _, ext := range All() {
		if o, ok := ext.(Offline); ok {
			for _, name := range o.OfflineCommands() {
				cmds[name] = true
			}
		}
	}
	return cmds
}
