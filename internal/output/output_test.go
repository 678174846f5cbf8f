package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/hermes-sharepoint/pkg/sharepoint"
)

func testObject(t *testing.T, typeName string, data map[string]any) sharepoint.Object {
	t.Helper()
	obj, err := sharepoint.NewGenericObject(nil, typeName, data)
	require.NoError(t, err)
	return obj
}

func TestParseFormat(t *testing.T) {
	for _, f := range Formats {
		got, err := ParseFormat(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	_, err := ParseFormat("xml")
	assert.ErrorContains(t, err, `unknown format "xml"`)
}

func TestNewFormatter(t *testing.T) {
	assert.IsType(t, &JSONFormatter{}, NewFormatter(FormatJSON))
	assert.IsType(t, &YAMLFormatter{}, NewFormatter(FormatYAML))
	assert.IsType(t, &TableFormatter{}, NewFormatter(FormatTable))
	assert.IsType(t, &JSONFormatter{}, NewFormatter("unknown"))
}

func TestRender_JSONObject(t *testing.T) {
	res := &sharepoint.Result{
		Kind:   sharepoint.ResultObject,
		Object: testObject(t, "List", map[string]any{"Title": "Documents", "ItemCount": float64(3)}),
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, NewFormatter(FormatJSON), res))
	assert.JSONEq(t, `{"Title":"Documents","ItemCount":3}`, buf.String())
}

func TestRender_YAMLSequence(t *testing.T) {
	res := &sharepoint.Result{
		Kind: sharepoint.ResultSequence,
		Objects: []sharepoint.Object{
			testObject(t, "List", map[string]any{"Title": "A"}),
			testObject(t, "List", map[string]any{"Title": "B"}),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, NewFormatter(FormatYAML), res))
	assert.Equal(t, "- Title: A\n- Title: B\n", buf.String())
}

func TestRender_Table(t *testing.T) {
	res := &sharepoint.Result{
		Kind: sharepoint.ResultSequence,
		Objects: []sharepoint.Object{
			testObject(t, "ListItem", map[string]any{
				"__metadata": map[string]any{"uri": "https://x/Items(1)"},
				"Id":         float64(1),
				"Title":      "First",
			}),
			testObject(t, "User", map[string]any{"LoginName": "i:0#.f|membership|ada@contoso.com"}),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, NewFormatter(FormatTable), res))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"TYPE", "ID", "TITLE", "URI"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"ListItem", "1", "First", "https://x/Items(1)"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"User", "-", "i:0#.f|membership|ada@contoso.com"}, strings.Fields(lines[2]))
}

func TestRender_TableNone(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, &TableFormatter{}, &sharepoint.Result{Kind: sharepoint.ResultNone}))
	assert.Empty(t, buf.String())
}

func TestRender_Raw(t *testing.T) {
	var buf bytes.Buffer
	res := &sharepoint.Result{Kind: sharepoint.ResultRaw, Raw: []byte("file contents")}
	require.NoError(t, Render(&buf, NewFormatter(FormatJSON), res))
	assert.Equal(t, "file contents", buf.String())
}

func TestData(t *testing.T) {
	assert.Nil(t, Data(nil))
	assert.Nil(t, Data(&sharepoint.Result{Kind: sharepoint.ResultNone}))
	assert.Equal(t, "Docs", Data(&sharepoint.Result{Kind: sharepoint.ResultValue, Value: "Docs"}))
	assert.Equal(t, []map[string]any{}, Data(&sharepoint.Result{Kind: sharepoint.ResultSequence, Objects: []sharepoint.Object{}}))
}
