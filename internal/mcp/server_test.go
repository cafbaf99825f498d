// Each test wires the real MCP server in-process via the mcp-go
// in-process client, backed by a fresh service.Service rooted at a temporary
// directory.
package mcp_test

import (
	"context"
	"encoding/json"
	"testing"

	qt "github.com/frankban/quicktest"
	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	internalmcp "github.com/go-ports/dm/internal/mcp"
	"github.com/go-ports/dm/internal/service"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// newMCPClient creates an in-process MCP client backed by a fresh service
// rooted at c.TB.TempDir(). The client is started and initialized before it
// is returned; cleanup is registered on c automatically.
func newMCPClient(c *qt.C) (*mcpclient.Client, *service.Service) {
	c.TB.Helper()

	svc, err := service.New(c.TB.TempDir())
	c.Assert(err, qt.IsNil)
	c.TB.Cleanup(func() { _ = svc.Close() })

	cl, err := mcpclient.NewInProcessClient(internalmcp.NewServer(svc))
	c.Assert(err, qt.IsNil)
	c.TB.Cleanup(func() { _ = cl.Close() })

	c.Assert(cl.Start(context.Background()), qt.IsNil)

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "dm-test", Version: "0.0.1"}
	_, err = cl.Initialize(context.Background(), initReq)
	c.Assert(err, qt.IsNil)

	return cl, svc
}

// callTool invokes the named MCP tool and returns the text of the first
// content item together with the tool-level error flag.
func callTool(c *qt.C, cl *mcpclient.Client, name string, args map[string]any) (string, bool) {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	result, err := cl.CallTool(context.Background(), req)
	c.Assert(err, qt.IsNil)
	c.Assert(result.Content, qt.HasLen, 1)

	tc, ok := mcp.AsTextContent(result.Content[0])
	c.Assert(ok, qt.IsTrue)

	return tc.Text, result.IsError
}

// ---------------------------------------------------------------------------
// ListTools
// ---------------------------------------------------------------------------

func TestMCPListTools_HappyPath(t *testing.T) {
	c := qt.New(t)
	cl, _ := newMCPClient(c)

	result, err := cl.ListTools(context.Background(), mcp.ListToolsRequest{})
	c.Assert(err, qt.IsNil)
	c.Assert(result.Tools, qt.HasLen, 4)

	names := make([]string, len(result.Tools))
	for i, tool := range result.Tools {
		names[i] = tool.Name
	}
	c.Assert(names, qt.Contains, "bookmark_list")
	c.Assert(names, qt.Contains, "bookmark_lookup")
	c.Assert(names, qt.Contains, "bookmark_add")
	c.Assert(names, qt.Contains, "bookmark_remove")
}

// ---------------------------------------------------------------------------
// bookmark_add / bookmark_lookup / bookmark_list
// ---------------------------------------------------------------------------

func TestMCPAddLookupList_HappyPath(t *testing.T) {
	c := qt.New(t)
	cl, svc := newMCPClient(c)

	text, isErr := callTool(c, cl, "bookmark_add", map[string]any{"path": "/home/u/projects/foo"})
	c.Assert(isErr, qt.IsFalse)
	var added map[string]any
	c.Assert(json.Unmarshal([]byte(text), &added), qt.IsNil)
	c.Assert(added["name"], qt.Equals, "foo")
	c.Assert(added["path"], qt.Equals, "/home/u/projects/foo")

	_, isErr = callTool(c, cl, "bookmark_add", map[string]any{"path": "/srv/www", "name": "web"})
	c.Assert(isErr, qt.IsFalse)

	text, isErr = callTool(c, cl, "bookmark_lookup", map[string]any{"name": "web"})
	c.Assert(isErr, qt.IsFalse)
	c.Assert(text, qt.Equals, `{"name":"web","path":"/srv/www"}`)

	text, isErr = callTool(c, cl, "bookmark_list", map[string]any{})
	c.Assert(isErr, qt.IsFalse)
	c.Assert(text, qt.Equals, `[{"name":"foo","path":"/home/u/projects/foo"},{"name":"web","path":"/srv/www"}]`)

	// The service sees what the tools wrote.
	got, ok := svc.Lookup("foo")
	c.Assert(ok, qt.IsTrue)
	c.Assert(got, qt.Equals, "/home/u/projects/foo")
}

func TestMCPList_Empty(t *testing.T) {
	c := qt.New(t)
	cl, _ := newMCPClient(c)

	text, isErr := callTool(c, cl, "bookmark_list", map[string]any{})
	c.Assert(isErr, qt.IsFalse)
	c.Assert(text, qt.Equals, `[]`)
}

func TestMCPTools_FailurePath(t *testing.T) {
	c := qt.New(t)
	cl, _ := newMCPClient(c)

	cases := []struct {
		name     string
		tool     string
		args     map[string]any
		contains string
	}{
		{"lookup miss", "bookmark_lookup", map[string]any{"name": "nope"}, `bookmark "nope" not found`},
		{"remove miss", "bookmark_remove", map[string]any{"name": "nope"}, `bookmark "nope" not found`},
		{"add without path", "bookmark_add", map[string]any{"name": "x"}, "path is required"},
		{"add root without name", "bookmark_add", map[string]any{"path": "/"}, "cannot derive a bookmark name"},
		{"add with invalid name", "bookmark_add", map[string]any{"path": "/tmp", "name": "-x"}, "invalid bookmark name"},
		{"add with blank path", "bookmark_add", map[string]any{"path": "   ", "name": "x"}, "invalid bookmark path"},
	}

	for _, tc := range cases {
		c.Run(tc.name, func(c *qt.C) {
			text, isErr := callTool(c, cl, tc.tool, tc.args)
			c.Assert(isErr, qt.IsTrue)
			c.Assert(text, qt.Contains, tc.contains)
		})
	}
}

// ---------------------------------------------------------------------------
// bookmark_remove
// ---------------------------------------------------------------------------

func TestMCPRemove_HappyPath(t *testing.T) {
	c := qt.New(t)
	cl, svc := newMCPClient(c)

	_, err := svc.Add("foo", "/foo")
	c.Assert(err, qt.IsNil)

	text, isErr := callTool(c, cl, "bookmark_remove", map[string]any{"name": "foo"})
	c.Assert(isErr, qt.IsFalse)
	c.Assert(text, qt.Equals, `{"name":"foo","removed":true}`)
	c.Assert(svc.List(), qt.HasLen, 0)
}
