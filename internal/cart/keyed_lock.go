package cart

import "sync"

// keyedLock serializes mutations per price id so rapid double-clicks on one
// line queue up instead of racing, while different lines still mutate
// concurrently.
type keyedLock struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedLock() *keyedLock {
	return &keyedLock{entries: make(map[string]*lockEntry)}
}

// acquire blocks until the key is free and returns the matching release
// func. Entries are dropped once the last waiter releases.
func (k *keyedLock) acquire(key string) func() {

	k.mu.Lock()

	entry, ok := k.entries[key]
	if !ok {
		entry = &lockEntry{}
		k.entries[key] = entry
	}

	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		k.mu.Lock()

		entry.refs--
		if entry.refs == 0 {
			delete(k.entries, key)
		}

		k.mu.Unlock()
	}
}
