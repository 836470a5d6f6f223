package models

import "sync"

var (
	registered   []any
	registeredMu sync.Mutex
)

func registerModel(model any) {
	registeredMu.Lock()
	defer registeredMu.Unlock()

	registered = append(registered, model)
}

// GetModels returns every model to be migrated.
func GetModels() []any {
	registeredMu.Lock()
	defer registeredMu.Unlock()

	out := make([]any, len(registered))
	copy(out, registered)

	return out
}
