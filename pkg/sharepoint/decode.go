package sharepoint

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
)

var (
	timeType = reflect.TypeOf(time.Time{})
	uuidType = reflect.TypeOf(uuid.UUID{})

	// Legacy OData JSON dates: "/Date(1700000000000)/".
	msDatePattern = regexp.MustCompile(`^/Date\((-?\d+)([+-]\d{4})?\)/$`)
)

// decodeFields populates target, a pointer to a struct with mapstructure
// tags, from raw decoded JSON fields. Unknown fields are ignored.
func decodeFields(data map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringToUUIDHook,
			stringToTimeHook,
		),
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return fmt.Errorf("error creating decoder: %w", err)
	}

	if err := decoder.Decode(data); err != nil {
		return fmt.Errorf("error decoding fields: %w", err)
	}
	return nil
}

func stringToUUIDHook(f reflect.Type, t reflect.Type, data any) (any, error) {
	if f.Kind() != reflect.String || t != uuidType {
		return data, nil
	}

	s := strings.TrimSpace(reflect.ValueOf(data).String())
	if s == "" {
		return uuid.Nil, nil
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("invalid GUID %q: %w", s, err)
	}
	return u, nil
}

func stringToTimeHook(f reflect.Type, t reflect.Type, data any) (any, error) {
	if f.Kind() != reflect.String || t != timeType {
		return data, nil
	}

	s := strings.TrimSpace(reflect.ValueOf(data).String())
	if s == "" {
		return time.Time{}, nil
	}
	return parseTime(s)
}

// parseTime accepts the formats SharePoint emits: ISO 8601 and the legacy
// "/Date(ms)/" form.
func parseTime(s string) (time.Time, error) {
	if m := msDatePattern.FindStringSubmatch(s); m != nil {
		ms, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
		}
		return time.UnixMilli(ms).UTC(), nil
	}

	parsed, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return parsed, nil
}
