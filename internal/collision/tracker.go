package collision

// Tracker records which qualified key owns each 64-bit hash and detects collisions.
//
// The first key tracked under a hash owns it. A later, different key with the same hash is a
// collision: the tracker flags it and remembers the key in an ordered overflow list so the
// caller can fall back to exact string lookup for it.
type Tracker struct {
	owners       map[uint64]string // hash → owning key
	collided     []string          // keys that lost a hash to an earlier owner, in tracking order
	hasCollision bool
}

// NewTracker creates a new collision tracker.
func NewTracker() *Tracker {
	return &Tracker{
		owners:   make(map[uint64]string),
		collided: make([]string, 0),
	}
}

// Track records key under hash h.
//
// Returns:
//   - owned: true if key already owns h (it was tracked before)
//   - collided: true if h is owned by a different key
func (t *Tracker) Track(key string, h uint64) (owned bool, collided bool) {
	existing, exists := t.owners[h]
	if !exists {
		t.owners[h] = key

		return false, false
	}

	if existing == key {
		return true, false
	}

	t.hasCollision = true
	t.collided = append(t.collided, key)

	return false, true
}

// HasCollision returns true if a collision has been detected.
func (t *Tracker) HasCollision() bool {
	return t.hasCollision
}

// Collided returns the keys that collided with an earlier owner, in tracking order.
func (t *Tracker) Collided() []string {
	return t.collided
}
