package template

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/arloliu/fastcodec/dictionary"
	"github.com/arloliu/fastcodec/errs"
	"github.com/arloliu/fastcodec/internal/options"
)

// Registry holds a template set and resolves templates by id or by name and namespace.
//
// Templates are added single-threaded, then Finalize resolves references, computes presence
// map bits and indexes dictionaries. A finalized registry is read-only and may be shared by
// any number of decoders and encoders.
type Registry struct {
	byID   map[uint32]*Template
	byName map[string]*Template
	order  []*Template

	indexer   *dictionary.Indexer
	finalized bool

	logger       zerolog.Logger
	strictCycles bool
}

// RegistryOption configures a Registry.
type RegistryOption = options.Option[*Registry]

// WithLogger sets the logger used for finalize diagnostics.
func WithLogger(logger zerolog.Logger) RegistryOption {
	return options.NoError(func(r *Registry) {
		r.logger = logger
	})
}

// WithStrictCycles makes Finalize fail when a template reaches itself through template
// references. By default the cycle is logged and finalize continues.
func WithStrictCycles() RegistryOption {
	return options.NoError(func(r *Registry) {
		r.strictCycles = true
	})
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		byID:    make(map[uint32]*Template),
		byName:  make(map[string]*Template),
		indexer: dictionary.NewIndexer(),
		logger:  zerolog.Nop(),
	}
	// registry options never fail
	_ = options.Apply(r, opts...)

	return r
}

// Add registers t. Ids and qualified names must be unique.
//
// Parameters:
//   - t: Template to register; it is finalized later by Finalize
//
// Returns:
//   - error: A definition error wrapping errs.ErrAlreadyFinalized after Finalize, or
//     errs.ErrDuplicateTemplate when the id or qualified name is taken
func (r *Registry) Add(t *Template) error {
	if r.finalized {
		return definitionError(errs.CodeS1, nil, errs.ErrAlreadyFinalized,
			"cannot add template %s to a finalized registry", t.QualifiedName())
	}
	if prev, ok := r.byID[t.id]; ok {
		return definitionError(errs.CodeS1, nil, errs.ErrDuplicateTemplate,
			"template id %d used by %s and %s", t.id, prev.QualifiedName(), t.QualifiedName())
	}
	key := t.QualifiedName()
	if _, ok := r.byName[key]; ok {
		return definitionError(errs.CodeS1, nil, errs.ErrDuplicateTemplate,
			"template %s registered twice", key)
	}

	r.byID[t.id] = t
	r.byName[key] = t
	r.order = append(r.order, t)

	return nil
}

// FindByName returns the template named name in namespace.
func (r *Registry) FindByName(name, namespace string) (*Template, bool) {
	if r == nil {
		return nil, false
	}
	t, ok := r.byName[qualify(name, namespace)]

	return t, ok
}

// FindByID returns the template with wire id id.
func (r *Registry) FindByID(id uint32) (*Template, bool) {
	t, ok := r.byID[id]
	return t, ok
}

// Templates returns the templates in registration order.
func (r *Registry) Templates() []*Template {
	return r.order
}

// Len returns the number of registered templates.
func (r *Registry) Len() int {
	return len(r.order)
}

// Finalize finalizes every template and assigns dictionary slots. It is idempotent.
//
// Templates are finalized in registration order, so a static reference may name a template
// added after the one holding it. Dictionary slots are assigned only after every template is
// finalized.
//
// Returns:
//   - error: The first definition error, prefixed with the failing template's qualified name;
//     the registry stays unfinalized and Add is still allowed
func (r *Registry) Finalize() error {
	if r.finalized {
		return nil
	}

	for _, t := range r.order {
		if err := t.Finalize(r); err != nil {
			return fmt.Errorf("finalize template %s: %w", t.QualifiedName(), err)
		}
	}
	for _, t := range r.order {
		t.indexDictionaries(r.indexer)
	}
	if r.indexer.HasCollision() {
		r.logger.Debug().
			Strs("keys", r.indexer.Collisions()).
			Msg("dictionary key hash collision resolved by exact key lookup")
	}
	r.finalized = true

	r.logger.Debug().
		Int("templates", len(r.order)).
		Int("dictionary_slots", r.indexer.Size()).
		Msg("template registry finalized")

	return nil
}

// Finalized reports whether Finalize completed.
func (r *Registry) Finalized() bool {
	return r.finalized
}

// Indexer returns the dictionary indexer populated by Finalize.
func (r *Registry) Indexer() *dictionary.Indexer {
	return r.indexer
}

// NewDictionary creates a session dictionary sized for the registry's slots.
func (r *Registry) NewDictionary() *dictionary.Dictionary {
	return dictionary.New(r.indexer.Size())
}

func (r *Registry) cycleDetected(sb *SegmentBody) error {
	if r == nil {
		return nil
	}
	if r.strictCycles {
		return definitionError(errs.CodeS1, nil, errs.ErrTemplateCycle,
			"segment %s references itself", sb.name)
	}
	r.logger.Warn().Str("segment", sb.name).Msg("cyclic template reference, presence map bits of the cycle are not counted")

	return nil
}
