package engine

import (
	"strconv"
	"sync"
)

// keyedMutex hands out one mutex per key and forgets it once nobody holds or waits on it.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

type refLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refLock)}
}

func (k *keyedMutex) Lock(key string) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &refLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
}

func (k *keyedMutex) Unlock(key string) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		k.mu.Unlock()
		return
	}
	l.refs--
	if l.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()

	l.mu.Unlock()
}

// lockClanUser takes the clan lock before the user lock. Every caller uses this order.
func (k *keyedMutex) lockClanUser(clanName string, userID int64) func() {
	clanKey := "clan:" + clanName
	userKey := "user:" + strconv.FormatInt(userID, 10)
	if clanName != "" {
		k.Lock(clanKey)
	}
	k.Lock(userKey)
	return func() {
		k.Unlock(userKey)
		if clanName != "" {
			k.Unlock(clanKey)
		}
	}
}
