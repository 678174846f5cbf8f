package sharepoint

// ResultKind tells which field of a Result is populated.
type ResultKind int

const (
	// ResultNone is an absent or null payload. It is not an error.
	ResultNone ResultKind = iota

	// ResultObject is a single mapped object.
	ResultObject

	// ResultSequence is an ordered, possibly empty, list of objects.
	ResultSequence

	// ResultRaw is an undecoded response body.
	ResultRaw

	// ResultValue is a scalar or untyped array property, as returned for
	// requests like "Title" ({"d":{"Title":"Docs"}}).
	ResultValue
)

func (k ResultKind) String() string {
	switch k {
	case ResultNone:
		return "none"
	case ResultObject:
		return "object"
	case ResultSequence:
		return "sequence"
	case ResultRaw:
		return "raw"
	case ResultValue:
		return "value"
	default:
		return "unknown"
	}
}

// Result is the outcome of a query.
type Result struct {
	Kind ResultKind

	Object  Object
	Objects []Object
	Raw     []byte
	Value   any
}

// One returns the single object, if the result holds one.
func (r *Result) One() (Object, bool) {
	if r == nil || r.Kind != ResultObject {
		return nil, false
	}
	return r.Object, true
}

// All returns the objects of a sequence, or a one element slice for a
// single object.
func (r *Result) All() []Object {
	if r == nil {
		return nil
	}
	switch r.Kind {
	case ResultSequence:
		return r.Objects
	case ResultObject:
		return []Object{r.Object}
	default:
		return nil
	}
}

// IsNone reports whether the result is empty.
func (r *Result) IsNone() bool {
	return r == nil || r.Kind == ResultNone
}
