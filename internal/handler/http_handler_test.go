package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"github.com/weiawesome/wes-chat-relay/internal/registry"
)

type fixedCounter int

func (c fixedCounter) Count() int {
	return int(c)
}

type fakeLister struct {
	nodes []registry.Node
	err   error
}

func (f *fakeLister) List(ctx context.Context) ([]registry.Node, error) {
	return f.nodes, f.err
}

func serve(h *HTTPHandler, target string) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	h.RegisterRoutes(router)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHTTPHandler_HealthCheck(t *testing.T) {
	req := require.New(t)

	rec := serve(NewHTTPHandler("node-a", "cluster", fixedCounter(3), nil), "/health")
	req.Equal(http.StatusOK, rec.Code)
	req.Equal("application/json", rec.Header().Get("Content-Type"))

	var envelope struct {
		Success bool           `json:"success"`
		Data    HealthResponse `json:"data"`
	}
	req.NoError(json.NewDecoder(rec.Body).Decode(&envelope))
	req.True(envelope.Success)
	body := envelope.Data
	req.Equal("ok", body.Status)
	req.Equal("node-a", body.NodeID)
	req.Equal("cluster", body.Mode)
	req.Equal(3, body.Clients)
}

func TestHTTPHandler_GetNodes(t *testing.T) {
	req := require.New(t)
	lister := &fakeLister{nodes: []registry.Node{
		{NodeID: "node-a", StartedAt: time.Now().UTC(), Connections: 2},
		{NodeID: "node-b", StartedAt: time.Now().UTC()},
	}}

	rec := serve(NewHTTPHandler("node-a", "cluster", fixedCounter(0), lister), "/cluster/nodes")
	req.Equal(http.StatusOK, rec.Code)

	var envelope struct {
		Data NodesResponse `json:"data"`
	}
	req.NoError(json.NewDecoder(rec.Body).Decode(&envelope))
	body := envelope.Data
	req.Equal(2, body.Total)
	req.Equal("node-b", body.Nodes[1].NodeID)
}

func TestHTTPHandler_GetNodesErrors(t *testing.T) {
	req := require.New(t)

	rec := serve(NewHTTPHandler("node-a", "local", fixedCounter(0), nil), "/cluster/nodes")
	req.Equal(http.StatusNotFound, rec.Code)

	rec = serve(NewHTTPHandler("node-a", "cluster", fixedCounter(0), &fakeLister{err: errors.New("redis down")}), "/cluster/nodes")
	req.Equal(http.StatusInternalServerError, rec.Code)
}

func TestHTTPHandler_Metrics(t *testing.T) {
	rec := serve(NewHTTPHandler("node-a", "local", fixedCounter(0), nil), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "chat_connected_clients")
}
