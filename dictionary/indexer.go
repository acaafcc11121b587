package dictionary

import (
	"strings"

	"github.com/arloliu/fastcodec/field"
	"github.com/arloliu/fastcodec/internal/collision"
	"github.com/arloliu/fastcodec/internal/hash"
)

// Built-in dictionary names. Any other name is a user-defined dictionary.
const (
	Global   = "global"
	Template = "template"
	Type     = "type"
)

// Scope is the dictionary context an instruction is indexed under.
type Scope struct {
	Dictionary        string
	TemplateName      string
	TemplateNamespace string
	TypeName          string
	TypeNamespace     string
}

// Qualifier returns the parts that, together with a key, uniquely name a dictionary entry.
//
// Global and user-defined dictionaries are shared across templates, "template" entries are
// private to one template and "type" entries are shared by every template of one application
// type. An empty dictionary name means global.
func (s Scope) Qualifier() []string {
	switch s.Dictionary {
	case "", Global:
		return []string{Global}
	case Template:
		return []string{Template, s.TemplateNamespace, s.TemplateName}
	case Type:
		return []string{Type, s.TypeNamespace, s.TypeName}
	default:
		return []string{"user", s.Dictionary}
	}
}

// Indexer assigns a stable slot to every (scope, key) pair registered during finalize.
//
// Keys are looked up by xxHash64 of the qualified key. A hash collision between two different
// qualified keys is resolved by falling back to exact string lookup for the later key, so every
// distinct key still gets its own slot.
//
// An Indexer is used single-threaded while a registry is finalized; afterwards it is read-only.
type Indexer struct {
	tracker  *collision.Tracker
	byHash   map[uint64]int
	byKey    map[string]int
	size     int
}

// NewIndexer creates an empty indexer.
func NewIndexer() *Indexer {
	return &Indexer{
		tracker: collision.NewTracker(),
		byHash:  make(map[uint64]int),
		byKey:   make(map[string]int),
	}
}

// Index returns the slot for key within scope, allocating one on first use.
func (ix *Indexer) Index(scope Scope, key *field.Identity) int {
	parts := append(scope.Qualifier(), key.Namespace(), key.Name())
	h := hash.Qualified(parts...)
	qualified := strings.Join(parts, "\x00")

	if slot, ok := ix.byKey[qualified]; ok {
		return slot
	}

	owned, collided := ix.tracker.Track(qualified, h)
	switch {
	case owned:
		return ix.byHash[h]
	case collided:
		slot := ix.allocate()
		ix.byKey[qualified] = slot

		return slot
	default:
		slot := ix.allocate()
		ix.byHash[h] = slot

		return slot
	}
}

func (ix *Indexer) allocate() int {
	slot := ix.size
	ix.size++

	return slot
}

// Size returns the number of slots allocated. A Dictionary for this indexer needs that many entries.
func (ix *Indexer) Size() int {
	return ix.size
}

// HasCollision reports whether any two keys shared a hash.
func (ix *Indexer) HasCollision() bool {
	return ix.tracker.HasCollision()
}

// Collisions returns the keys that lost their hash to an earlier key, in readable form such as
// "template/quotes/Quote//price".
func (ix *Indexer) Collisions() []string {
	collided := ix.tracker.Collided()
	out := make([]string, len(collided))
	for i, key := range collided {
		out[i] = strings.ReplaceAll(key, "\x00", "/")
	}

	return out
}
