package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/canopy"
	"github.com/aretw0/canopy/pkg/adapters/memory"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/dsl"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	b := dsl.New()
	b.Add("Food", "Snacks").Items("Chips")
	b.Add("Empty", "Nothing")

	finder, err := canopy.New(b.MustBuild(),
		canopy.WithSeed(1),
		canopy.WithReportStore(memory.NewStore()),
		canopy.WithIDGenerator(func() string { return "run-1" }),
	)
	require.NoError(t, err)
	return NewServer(finder, "test", nil)
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func TestServer_FindLeaf(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	resp, err := s.handleFindLeaf(ctx, callRequest(nil), map[string]interface{}{"root": "Food"})
	require.NoError(t, err)
	require.NotNil(t, resp.Report)
	assert.Equal(t, domain.OutcomeFound, resp.Report.Kind)
	assert.Equal(t, domain.Path{"Food", "Snacks"}, resp.Report.Path)
	assert.Equal(t, "Chips", resp.Report.Item.Name)

	t.Run("Exhausted is a result", func(t *testing.T) {
		resp, err := s.handleFindLeaf(ctx, callRequest(nil), map[string]interface{}{"root": "Empty"})
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeExhausted, resp.Report.Kind)
	})

	t.Run("Missing root", func(t *testing.T) {
		_, err := s.handleFindLeaf(ctx, callRequest(nil), map[string]interface{}{})
		assert.Error(t, err)
	})

	t.Run("Unknown root", func(t *testing.T) {
		_, err := s.handleFindLeaf(ctx, callRequest(nil), map[string]interface{}{"root": "Garden"})
		assert.ErrorIs(t, err, domain.ErrNavigation)
	})
}

func TestServer_ListCategories(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.handleListCategories(context.Background(), callRequest(nil), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Food", "Empty"}, resp.Categories)
}

func TestServer_GetReport(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleFindLeaf(ctx, callRequest(nil), map[string]interface{}{"root": "Food"})
	require.NoError(t, err)

	result, err := s.handleGetReport(ctx, callRequest(map[string]interface{}{"id": "run-1"}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.Len(t, result.Content, 1)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	var report domain.Report
	require.NoError(t, json.Unmarshal([]byte(text.Text), &report))
	assert.Equal(t, "run-1", report.ID)
	assert.Equal(t, "Food", report.Root)

	t.Run("Not found", func(t *testing.T) {
		result, err := s.handleGetReport(ctx, callRequest(map[string]interface{}{"id": "nope"}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})

	t.Run("Missing id", func(t *testing.T) {
		result, err := s.handleGetReport(ctx, callRequest(nil))
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})
}
