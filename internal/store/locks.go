package store

import "sync"

// keyedMutex hands out one mutex per key, so create/delete on the same
// workspace serialize while unrelated workspaces proceed in parallel.
// Entries are reference-counted and dropped when the last holder unlocks.
type keyedMutex struct {
	mu   sync.Mutex
	keys map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{keys: make(map[string]*lockEntry)}
}

// lock acquires the mutex for key and returns the matching unlock func.
func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	e, ok := k.keys[key]
	if !ok {
		e = &lockEntry{}
		k.keys[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.keys, key)
		}
		k.mu.Unlock()
	}
}
