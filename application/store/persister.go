package store

// Persister abstracts the local key/value state store that chat and query
// history are flushed to. Implementations must be tolerant: a failed save is
// logged by the implementation, never surfaced to the state container, and a
// failed or corrupt load reports false so callers fall back to defaults.
type Persister interface {
	Save(key string, value any)
	Load(key string, dest any) bool
}

// Well-known persistence keys.
const (
	KeyChatState    = "chatState"
	KeyQueryHistory = "queryHistory"
)

// NopPersister discards saves and never finds anything. Used when no local
// state store is configured and in tests.
type NopPersister struct{}

func (NopPersister) Save(string, any) {}

func (NopPersister) Load(string, any) bool { return false }
