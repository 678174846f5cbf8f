package sharepoint

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/mitchellh/mapstructure"
)

// Object is a mapped server entity.
type Object interface {
	// TypeName is the normalized type name, e.g. "ListItem".
	TypeName() string

	// Site is the site the object was read from.
	Site() *Site

	// Metadata is the decoded __metadata block.
	Metadata() Metadata

	// Data returns the raw decoded fields.
	Data() map[string]any
}

// Metadata is the __metadata block carried by every verbose OData entity.
type Metadata struct {
	ID   string `mapstructure:"id"`
	URI  string `mapstructure:"uri"`
	ETag string `mapstructure:"etag"`
	Type string `mapstructure:"type"`
}

// Base implements Object and the property helpers shared by all types.
// Concrete types embed it.
type Base struct {
	site     *Site
	typeName string
	metadata Metadata
	data     map[string]any
}

// NewBase decodes the metadata block of data.
func NewBase(site *Site, typeName string, data map[string]any) (Base, error) {
	if data == nil {
		data = map[string]any{}
	}

	var meta Metadata
	if raw, ok := data[metadataKey]; ok && raw != nil {
		if err := mapstructure.Decode(raw, &meta); err != nil {
			return Base{}, fmt.Errorf("error decoding %s for %s: %w", metadataKey, typeName, err)
		}
	}

	return Base{
		site:     site,
		typeName: typeName,
		metadata: meta,
		data:     data,
	}, nil
}

func (b *Base) TypeName() string {
	return b.typeName
}

func (b *Base) Site() *Site {
	return b.site
}

func (b *Base) Metadata() Metadata {
	return b.metadata
}

func (b *Base) Data() map[string]any {
	return b.data
}

func (b *Base) String() string {
	return b.typeName + "(" + b.metadata.URI + ")"
}

// MarshalJSON renders the raw fields as received.
func (b *Base) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.data)
}

// Get returns a raw property. name may use the server spelling
// ("FormDigestValue") or snake case ("form_digest_value").
func (b *Base) Get(name string) (any, bool) {
	if v, ok := b.data[name]; ok {
		return v, true
	}
	if v, ok := b.data[strcase.ToCamel(name)]; ok {
		return v, true
	}
	for key, v := range b.data {
		if strings.EqualFold(key, name) {
			return v, true
		}
	}
	return nil, false
}

// GetString returns a string property, or "" when absent or not a string.
func (b *Base) GetString(name string) string {
	v, _ := b.Get(name)
	s, _ := v.(string)
	return s
}

// Deferred returns the URI of a navigation property that the server did not
// expand.
func (b *Base) Deferred(name string) (string, bool) {
	v, ok := b.Get(name)
	if !ok {
		return "", false
	}
	m, ok := v.(map[string]any)
	if !ok {
		return "", false
	}
	deferred, ok := m[deferredKey].(map[string]any)
	if !ok {
		return "", false
	}
	uri, ok := deferred["uri"].(string)
	return uri, ok && uri != ""
}

// Property resolves a navigation property. Deferred properties are fetched
// from the server; expanded ones are mapped in place.
func (b *Base) Property(ctx context.Context, name string) (*Result, error) {
	v, ok := b.Get(name)
	if !ok {
		return nil, fmt.Errorf("property %q not found on %s", name, b.typeName)
	}
	if uri, ok := b.Deferred(name); ok {
		if b.site == nil {
			return nil, fmt.Errorf("property %q of %s is deferred and the object has no site", name, b.typeName)
		}
		return b.site.Query(ctx, http.MethodGet, uri, nil)
	}
	return mapValue(b.site, b.registry(), v)
}

// Update merges fields into the entity on the server.
func (b *Base) Update(ctx context.Context, fields map[string]any) error {
	if err := b.requireURI("update"); err != nil {
		return err
	}

	payload := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		payload[k] = v
	}
	if b.metadata.Type != "" {
		payload[metadataKey] = map[string]any{"type": b.metadata.Type}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal update for %s: %w", b.typeName, err)
	}

	etag := b.metadata.ETag
	if etag == "" {
		etag = "*"
	}

	_, err = b.site.Query(ctx, http.MethodPost, b.metadata.URI, body,
		WithHeader("X-HTTP-Method", "MERGE"),
		WithHeader("IF-MATCH", etag),
	)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", b.typeName, err)
	}

	for k, v := range fields {
		b.data[k] = v
	}
	return nil
}

// Delete removes the entity on the server.
func (b *Base) Delete(ctx context.Context) error {
	if err := b.requireURI("delete"); err != nil {
		return err
	}

	_, err := b.site.Query(ctx, http.MethodPost, b.metadata.URI, nil,
		WithHeader("X-HTTP-Method", "DELETE"),
		WithHeader("IF-MATCH", "*"),
	)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", b.typeName, err)
	}
	return nil
}

func (b *Base) registry() *Registry {
	if b.site == nil {
		return DefaultRegistry()
	}
	return b.site.registry
}

func (b *Base) requireURI(op string) error {
	if b.site == nil {
		return fmt.Errorf("cannot %s %s: object has no site", op, b.typeName)
	}
	if b.metadata.URI == "" {
		return fmt.Errorf("cannot %s %s: object has no metadata uri", op, b.typeName)
	}
	return nil
}

// GenericObject stands in for any type descriptor whose final name has no
// registered constructor.
type GenericObject struct {
	Base
}

// NewGenericObject tags data with typeName.
func NewGenericObject(site *Site, typeName string, data map[string]any) (*GenericObject, error) {
	b, err := NewBase(site, typeName, data)
	if err != nil {
		return nil, err
	}
	return &GenericObject{Base: b}, nil
}

// populate initializes base and decodes data into target, which must be a
// pointer to the struct embedding base.
func populate(site *Site, typeName string, data map[string]any, base *Base, target any) error {
	b, err := NewBase(site, typeName, data)
	if err != nil {
		return err
	}
	*base = b

	if err := decodeFields(data, target); err != nil {
		return fmt.Errorf("error populating %s: %w", typeName, err)
	}
	return nil
}
