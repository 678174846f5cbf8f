package contextinfo

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/hermes-sharepoint/internal/cmd/base"
)

func TestContextInfoCommand(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/_api/web/", r.URL.Path)

		w.Header().Set("Content-Type", "application/json;odata=verbose")
		w.Write([]byte(`{"d":{"__metadata":{"type":"SP.Web","uri":"http://x/_api/Web"},"Title":"Engineering","Url":"http://x"}}`))
	}))
	defer mockServer.Close()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/sp.hcl", []byte(fmt.Sprintf(`
site {
  server_url = %q
  prefix     = ""
  protocol   = "http"
}
`, strings.TrimPrefix(mockServer.URL, "http://"))), 0o600))

	ui := cli.NewMockUi()
	cmd := &Command{Command: &base.Command{Log: hclog.NewNullLogger(), UI: ui, Fs: fs}}

	code := cmd.Run([]string{"-config", "/sp.hcl", "-format", "yaml"})
	require.Equal(t, 0, code, ui.ErrorWriter.String())
	assert.Contains(t, ui.OutputWriter.String(), "Title: Engineering")
}

func TestContextInfoCommand_BadFormat(t *testing.T) {
	ui := cli.NewMockUi()
	cmd := &Command{Command: &base.Command{Log: hclog.NewNullLogger(), UI: ui, Fs: afero.NewMemMapFs()}}

	assert.Equal(t, 1, cmd.Run([]string{"-format", "xml"}))
	assert.Contains(t, ui.ErrorWriter.String(), `unknown format "xml"`)
}
