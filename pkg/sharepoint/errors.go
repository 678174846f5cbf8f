package sharepoint

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrMissingTypeDescriptor is returned when an object payload has no
// __metadata.type value to resolve.
var ErrMissingTypeDescriptor = errors.New("object has no __metadata type descriptor")

// RequestError is a transport or decode failure, or an HTTP error status
// without a parseable error body.
type RequestError struct {
	Method     string
	URL        string
	StatusCode int

	// RequestBody is the body that was sent, if any.
	RequestBody string

	// ResponseBody is the raw body received, if any.
	ResponseBody string

	Err error
}

func (e *RequestError) Error() string {
	switch {
	case e.Err != nil && e.ResponseBody != "":
		return fmt.Sprintf("%s %s: %v, body=%q, response=%q",
			e.Method, e.URL, e.Err, e.RequestBody, e.ResponseBody)
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
	default:
		return fmt.Sprintf("%s %s responded with %d", e.Method, e.URL, e.StatusCode)
	}
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// DataError is an application-level error encoded by the server in an
// otherwise well-formed JSON response.
type DataError struct {
	// Payload is the decoded value of the top-level "error" field.
	Payload any

	URL         string
	RequestBody string
	StatusCode  int
}

func (e *DataError) Error() string {
	if code, msg := e.Code(), e.Message(); code != "" || msg != "" {
		return fmt.Sprintf("sharepoint error at %s: %s %s",
			e.URL, code, msg)
	}
	return fmt.Sprintf("sharepoint error at %s: %v", e.URL, e.Payload)
}

// Code returns the server error code, e.g.
// "-2130575338, Microsoft.SharePoint.SPException".
func (e *DataError) Code() string {
	payload, ok := e.Payload.(map[string]any)
	if !ok {
		return ""
	}
	code, _ := payload["code"].(string)
	return code
}

// Message returns the human readable message. SharePoint nests it as
// {"message": {"lang": "en-US", "value": "..."}}; a plain string is
// accepted too.
func (e *DataError) Message() string {
	payload, ok := e.Payload.(map[string]any)
	if !ok {
		if s, ok := e.Payload.(string); ok {
			return s
		}
		return ""
	}
	switch m := payload["message"].(type) {
	case string:
		return m
	case map[string]any:
		v, _ := m["value"].(string)
		return v
	}
	return ""
}

// LookupError reports a namespace segment of a type descriptor that has not
// been registered. This is a registration defect, not a data error.
type LookupError struct {
	TypeName string
	Segment  string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("unregistered namespace %q in type %q", e.Segment, e.TypeName)
}

// IsNotFound reports whether err is a DataError or RequestError for a
// missing resource.
func IsNotFound(err error) bool {
	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.StatusCode == http.StatusNotFound {
		return true
	}
	var dataErr *DataError
	if errors.As(err, &dataErr) {
		return dataErr.StatusCode == http.StatusNotFound ||
			strings.Contains(dataErr.Code(), "FileNotFoundException")
	}
	return false
}
