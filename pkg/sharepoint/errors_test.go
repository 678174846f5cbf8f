package sharepoint

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestError_Error(t *testing.T) {
	err := &RequestError{Method: "GET", URL: "https://x/_api/web/lists", StatusCode: 503}
	assert.Equal(t, "GET https://x/_api/web/lists responded with 503", err.Error())
	assert.Nil(t, err.Unwrap())

	cause := errors.New("unexpected EOF")
	err = &RequestError{Method: "POST", URL: "https://x", RequestBody: "{}", ResponseBody: "<html>", Err: cause}
	assert.Contains(t, err.Error(), "unexpected EOF")
	assert.Contains(t, err.Error(), `response="<html>"`)
	assert.ErrorIs(t, err, cause)
}

func TestDataError_Error(t *testing.T) {
	err := &DataError{
		URL: "https://x",
		Payload: map[string]any{
			"code":    "-1, Microsoft.SharePoint.SPException",
			"message": map[string]any{"lang": "en-US", "value": "Access denied."},
		},
	}
	assert.Equal(t, "sharepoint error at https://x: -1, Microsoft.SharePoint.SPException Access denied.", err.Error())

	err = &DataError{URL: "https://x", Payload: []any{"odd"}}
	assert.Equal(t, "sharepoint error at https://x: [odd]", err.Error())
	assert.Empty(t, err.Code())
	assert.Empty(t, err.Message())
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "plain", err: errors.New("x"), want: false},
		{name: "request 404", err: &RequestError{StatusCode: http.StatusNotFound}, want: true},
		{name: "request 500", err: &RequestError{StatusCode: http.StatusInternalServerError}, want: false},
		{name: "wrapped request 404", err: fmt.Errorf("get: %w", &RequestError{StatusCode: http.StatusNotFound}), want: true},
		{name: "data 404", err: &DataError{StatusCode: http.StatusNotFound}, want: true},
		{
			name: "data file not found code",
			err:  &DataError{StatusCode: http.StatusOK, Payload: map[string]any{"code": "-2147024894, System.IO.FileNotFoundException"}},
			want: true,
		},
		{name: "data other", err: &DataError{StatusCode: http.StatusBadRequest}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNotFound(tt.err))
		})
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{in: "/Date(1700000000000)/", want: time.UnixMilli(1700000000000).UTC()},
		{in: "/Date(0+0000)/", want: time.Unix(0, 0).UTC()},
		{in: "2024-03-01T12:30:00Z", want: time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)},
		{in: "2024-03-01", want: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseTime(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}

	_, err := parseTime("definitely not a date")
	assert.Error(t, err)
}
