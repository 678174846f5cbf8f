package sharepoint

import (
	"fmt"
	"strings"
	"sync"
)

const (
	// rootNamespacePrefix is stripped from every type descriptor.
	rootNamespacePrefix = "SP."

	metadataKey = "__metadata"
	resultsKey  = "results"
	deferredKey = "__deferred"
)

// Generic collection spellings and the flat names they are registered under.
var collectionAliases = []struct {
	spelling string
	alias    string
}{
	{"Collection(Edm.String)", "CollectionString"},
	{"Collection(Edm.Int32)", "CollectionInteger"},
}

// Constructor builds an object from its owning site and raw decoded fields.
type Constructor func(site *Site, data map[string]any) (Object, error)

// namespace is a node of the type tree.
type namespace struct {
	types    map[string]Constructor
	children map[string]*namespace
}

func newNamespace() *namespace {
	return &namespace{
		types:    map[string]Constructor{},
		children: map[string]*namespace{},
	}
}

// Registry maps normalized type descriptors to constructors. It is
// populated at startup and read on every response.
type Registry struct {
	mu   sync.RWMutex
	root *namespace
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{root: newNamespace()}
}

// DefaultRegistry returns a registry holding the built-in object types and
// the namespaces SharePoint commonly uses for entity types.
// It panics if the built-in table is inconsistent.
func DefaultRegistry() *Registry {
	r, err := newRegistryWith(builtinNamespaces, builtinTypes)
	if err != nil {
		panic(fmt.Sprintf("sharepoint: invalid built-in types: %v", err))
	}
	return r
}

var builtinNamespaces = []string{"Data", "Publishing", "UserProfiles", "Utilities"}

func newRegistryWith(namespaces []string, types map[string]Constructor) (*Registry, error) {
	r := NewRegistry()
	for _, ns := range namespaces {
		if err := r.RegisterNamespace(ns); err != nil {
			return nil, err
		}
	}
	for name, ctor := range types {
		if err := r.Register(name, ctor); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// NormalizeTypeName strips the root prefix, rewrites the generic collection
// spellings and splits the descriptor into its namespace path and type name.
func NormalizeTypeName(raw string) (path []string, name string) {
	typeName := strings.TrimPrefix(strings.TrimSpace(raw), rootNamespacePrefix)
	for _, a := range collectionAliases {
		if strings.HasPrefix(typeName, a.spelling) {
			typeName = a.alias + strings.TrimPrefix(typeName, a.spelling)
			break
		}
	}

	parts := strings.Split(typeName, ".")
	return parts[:len(parts)-1], parts[len(parts)-1]
}

// RegisterNamespace makes every segment of a dotted namespace path
// resolvable.
func (r *Registry) RegisterNamespace(path string) error {
	segments, last := NormalizeTypeName(path)
	segments = append(segments, last)

	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.ensurePath(path, segments)
	return err
}

// Register binds a type descriptor such as "SP.ListItem" or
// "Publishing.PageLayout" to ctor, creating intermediate namespaces.
func (r *Registry) Register(typeName string, ctor Constructor) error {
	if ctor == nil {
		return fmt.Errorf("constructor for %q is nil", typeName)
	}
	segments, name := NormalizeTypeName(typeName)
	if name == "" {
		return fmt.Errorf("type name is required, got %q", typeName)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	ns, err := r.ensurePath(typeName, segments)
	if err != nil {
		return err
	}
	if _, exists := ns.types[name]; exists {
		return fmt.Errorf("type %q already registered", typeName)
	}
	ns.types[name] = ctor
	return nil
}

func (r *Registry) ensurePath(typeName string, segments []string) (*namespace, error) {
	ns := r.root
	for _, seg := range segments {
		if seg == "" {
			return nil, fmt.Errorf("empty namespace segment in %q", typeName)
		}
		child, ok := ns.children[seg]
		if !ok {
			child = newNamespace()
			ns.children[seg] = child
		}
		ns = child
	}
	return ns, nil
}

// Lookup resolves a type descriptor. The returned constructor is nil when
// the namespace exists but the final name is not registered. An unknown
// namespace segment yields a *LookupError.
func (r *Registry) Lookup(typeName string) (Constructor, string, error) {
	segments, name := NormalizeTypeName(typeName)

	r.mu.RLock()
	defer r.mu.RUnlock()

	ns := r.root
	for _, seg := range segments {
		child, ok := ns.children[seg]
		if !ok {
			return nil, name, &LookupError{TypeName: typeName, Segment: seg}
		}
		ns = child
	}
	return ns.types[name], name, nil
}

// Construct instantiates the object described by data's __metadata.type,
// falling back to a GenericObject when the final type name is not
// registered. Constructor errors are returned unchanged.
func (r *Registry) Construct(site *Site, data map[string]any) (Object, error) {
	typeName := typeDescriptor(data)
	if typeName == "" {
		return nil, ErrMissingTypeDescriptor
	}

	ctor, name, err := r.Lookup(typeName)
	if err != nil {
		return nil, err
	}
	if ctor == nil {
		return NewGenericObject(site, name, data)
	}
	return ctor(site, data)
}

// typeDescriptor returns data["__metadata"]["type"], or "".
func typeDescriptor(data map[string]any) string {
	meta, ok := data[metadataKey].(map[string]any)
	if !ok {
		return ""
	}
	typeName, _ := meta["type"].(string)
	return typeName
}
