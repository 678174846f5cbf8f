package sharepoint

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	wrapperKey = "d"
	errorKey   = "error"
)

// errMalformedEnvelope marks structural problems in the wrapper. Query
// reports them as a *RequestError.
var errMalformedEnvelope = errors.New("malformed response")

// mapEnvelope maps the value of the top-level wrapper field.
//
//   - {"results": [...]}            a sequence, in server order
//   - {"__metadata": {...}, ...}    a single object
//   - {"SomeProp": ...}             unwrapped one level, then mapped
//   - null or {}                    none
//
// A null "results" counts as absent. A typed wrapper whose "results" holds
// scalars is a typed collection and maps to a single object.
func mapEnvelope(site *Site, reg *Registry, wrapper json.RawMessage) (*Result, error) {
	var d any
	if err := json.Unmarshal(wrapper, &d); err != nil {
		return nil, fmt.Errorf("%w: invalid %q wrapper: %v", errMalformedEnvelope, wrapperKey, err)
	}

	obj, ok := d.(map[string]any)
	if !ok {
		return mapValue(site, reg, d)
	}
	_, typed := obj[metadataKey]
	if results := obj[resultsKey]; results != nil && (!typed || isObjectList(results)) {
		return mapSequence(site, reg, results)
	}
	if typed {
		return mapObject(site, reg, obj)
	}

	// The wrapper carries neither a type nor a list: it holds a single
	// named property. When several keys are present the first one in
	// document order wins.
	key, ok, err := firstKey(wrapper)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &Result{Kind: ResultNone}, nil
	}
	return mapValue(site, reg, obj[key])
}

// mapValue maps an already decoded value: objects with metadata become
// objects, {"results": [...]} of objects becomes a sequence, null becomes
// none and anything else is returned as a plain value. An untyped list of
// scalars is returned as a plain []any value.
func mapValue(site *Site, reg *Registry, v any) (*Result, error) {
	switch value := v.(type) {
	case nil:
		return &Result{Kind: ResultNone}, nil
	case map[string]any:
		_, typed := value[metadataKey]
		results := value[resultsKey]
		switch {
		case results != nil && isObjectList(results):
			return mapSequence(site, reg, results)
		case typed:
			return mapObject(site, reg, value)
		case results != nil:
			if items, ok := results.([]any); ok {
				return &Result{Kind: ResultValue, Value: items}, nil
			}
			return mapSequence(site, reg, results)
		}
	}
	return &Result{Kind: ResultValue, Value: v}, nil
}

func isObjectList(v any) bool {
	items, ok := v.([]any)
	if !ok {
		return false
	}
	for _, item := range items {
		if _, ok := item.(map[string]any); !ok {
			return false
		}
	}
	return true
}

func mapObject(site *Site, reg *Registry, data map[string]any) (*Result, error) {
	obj, err := reg.Construct(site, data)
	if err != nil {
		return nil, err
	}
	return &Result{Kind: ResultObject, Object: obj}, nil
}

func mapSequence(site *Site, reg *Registry, results any) (*Result, error) {
	items, ok := results.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q is %T, expected an array", errMalformedEnvelope, resultsKey, results)
	}

	objects := make([]Object, 0, len(items))
	for i, item := range items {
		data, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %q element %d is %T, expected an object", errMalformedEnvelope, resultsKey, i, item)
		}
		obj, err := reg.Construct(site, data)
		if err != nil {
			return nil, err
		}
		objects = append(objects, obj)
	}
	return &Result{Kind: ResultSequence, Objects: objects}, nil
}

// firstKey returns the first key of a JSON object in document order.
func firstKey(raw json.RawMessage) (string, bool, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return "", false, fmt.Errorf("%w: invalid %q wrapper: %v", errMalformedEnvelope, wrapperKey, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return "", false, fmt.Errorf("%w: %q wrapper is not an object", errMalformedEnvelope, wrapperKey)
	}
	if !dec.More() {
		return "", false, nil
	}
	tok, err = dec.Token()
	if err != nil {
		return "", false, fmt.Errorf("%w: invalid %q wrapper: %v", errMalformedEnvelope, wrapperKey, err)
	}
	key, ok := tok.(string)
	return key, ok, nil
}
