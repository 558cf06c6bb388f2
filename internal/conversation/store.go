package conversation

import (
	"hash/fnv"
	"sync"
	"time"

	"github.com/induxo/chatcore/internal/models"
)

// lockStripes is the number of per-key mutexes. Concurrent updates for
// different user ids almost never contend; updates for the same id are
// always serialized.
const lockStripes = 64

// Backing is the storage behind the Store. The default is an in-memory
// map; an external cache can be injected without changing callers. The
// Store guarantees per-key serialization above this interface, so a
// Backing only needs to be safe for concurrent calls on different keys.
type Backing interface {
	Get(userID string) (State, bool)
	Put(st State)
	Delete(userID string)
	Range(fn func(st State) bool)
}

// Store holds all conversation state for the process lifetime. State is
// volatile: it does not survive a restart, which is accepted for a
// single-instance deployment.
type Store struct {
	locks   [lockStripes]sync.Mutex
	backing Backing
	now     func() time.Time
}

// NewStore creates a Store over the given backing. A nil backing uses
// the in-memory default.
func NewStore(backing Backing) *Store {
	if backing == nil {
		backing = newMemoryBacking()
	}
	return &Store{backing: backing, now: time.Now}
}

func (s *Store) stripe(userID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return &s.locks[h.Sum32()%lockStripes]
}

// Update applies fn to the user's state under the per-key lock, creating
// the state lazily on first contact. LastActivity is touched on every
// call. Returns a copy of the resulting state.
func (s *Store) Update(userID string, fn func(st *State)) State {
	mu := s.stripe(userID)
	mu.Lock()
	defer mu.Unlock()

	now := s.now()
	st, ok := s.backing.Get(userID)
	if !ok {
		st = State{UserID: userID, CreatedAt: now}
	}

	if fn != nil {
		fn(&st)
	}
	st.LastActivity = now

	s.backing.Put(st)
	return copyState(st)
}

// Get returns a copy of the user's state without creating it.
func (s *Store) Get(userID string) (State, bool) {
	mu := s.stripe(userID)
	mu.Lock()
	defer mu.Unlock()

	st, ok := s.backing.Get(userID)
	if !ok {
		return State{}, false
	}
	return copyState(st), true
}

// Clear removes the user's state. Exposed for external timeout sweeps;
// never invoked by the normal message flow.
func (s *Store) Clear(userID string) {
	mu := s.stripe(userID)
	mu.Lock()
	defer mu.Unlock()
	s.backing.Delete(userID)
}

// Find returns copies of all states matching pred. The snapshot is only
// consistent per entry, which is enough for agent routing.
func (s *Store) Find(pred func(st State) bool) []State {
	var out []State
	s.backing.Range(func(st State) bool {
		if pred(st) {
			out = append(out, copyState(st))
		}
		return true
	})
	return out
}

func copyState(st State) State {
	cp := st
	cp.History = append([]models.Message(nil), st.History...)
	if st.Metadata != nil {
		cp.Metadata = make(map[string]string, len(st.Metadata))
		for k, v := range st.Metadata {
			cp.Metadata[k] = v
		}
	}
	return cp
}

// memoryBacking is the default process-local storage.
type memoryBacking struct {
	mu     sync.RWMutex
	states map[string]State
}

func newMemoryBacking() *memoryBacking {
	return &memoryBacking{states: make(map[string]State)}
}

func (m *memoryBacking) Get(userID string) (State, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.states[userID]
	return st, ok
}

func (m *memoryBacking) Put(st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[st.UserID] = st
}

func (m *memoryBacking) Delete(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, userID)
}

func (m *memoryBacking) Range(fn func(st State) bool) {
	m.mu.RLock()
	snapshot := make([]State, 0, len(m.states))
	for _, st := range m.states {
		snapshot = append(snapshot, st)
	}
	m.mu.RUnlock()

	for _, st := range snapshot {
		if !fn(st) {
			return
		}
	}
}
