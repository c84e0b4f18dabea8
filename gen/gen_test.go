package gen

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmit(t *testing.T) {
	model := &Model{
		Package: "example",
		Struct:  "UserAPI",
		Imports: map[string]string{
			"context":                     "context",
			"github.com/starius/restcall": "restcall",
		},
		Methods: []Method{
			{
				Name: "GetUser",
				Params: []Param{
					{Name: "ctx", Type: "context.Context"},
					{Name: "a1", Type: "int64"},
				},
				Results: []string{"*User", "error"},
			},
			{
				Name: "DeleteUser",
				Params: []Param{
					{Name: "ctx", Type: "context.Context"},
					{Name: "a1", Type: "int64"},
				},
				Results: []string{"error"},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Emit(&buf, model))
	out := buf.String()

	require.Contains(t, out, "// Code generated by github.com/starius/restcall/gen. DO NOT EDIT.")
	require.Contains(t, out, "package example")
	require.Contains(t, out, `"github.com/starius/restcall"`)
	require.Contains(t, out, "type UserAPIClient struct {\n\tsvc UserAPI\n}")
	require.Contains(t, out, "func NewUserAPIClient(backend restcall.Backend) (*UserAPIClient, error)")
	require.Contains(t, out, "func (c *UserAPIClient) GetUser(ctx context.Context, a1 int64) (*User, error) {\n\treturn c.svc.GetUser(ctx, a1)\n}")
	require.Contains(t, out, "func (c *UserAPIClient) DeleteUser(ctx context.Context, a1 int64) error {\n\treturn c.svc.DeleteUser(ctx, a1)\n}")
}

func TestEmitRenamedImport(t *testing.T) {
	model := &Model{
		Package: "example",
		Struct:  "API",
		Imports: map[string]string{
			"github.com/starius/restcall": "restcall",
			"example.com/some/pkg-v2":     "pkg",
		},
		Methods: []Method{
			{Name: "Do", Results: []string{"error"}},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, Emit(&buf, model))
	require.Contains(t, buf.String(), "pkg \"example.com/some/pkg-v2\"")
}
