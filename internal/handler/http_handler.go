package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/weiawesome/wes-chat-relay/internal/domain"
	"github.com/weiawesome/wes-chat-relay/internal/registry"
	"github.com/weiawesome/wes-chat-relay/pkg/log"
	"github.com/weiawesome/wes-chat-relay/pkg/response"
)

// NodeLister lists the nodes currently alive in the cluster.
type NodeLister interface {
	List(ctx context.Context) ([]registry.Node, error)
}

// ClientCounter reports how many clients are connected to this node.
type ClientCounter interface {
	Count() int
}

// HTTPHandler serves the operational endpoints of a node.
type HTTPHandler struct {
	node    domain.NodeID
	mode    string
	clients ClientCounter
	nodes   NodeLister
}

// NewHTTPHandler creates a new HTTP handler. nodes may be nil when the node
// registry is disabled.
func NewHTTPHandler(node domain.NodeID, mode string, clients ClientCounter, nodes NodeLister) *HTTPHandler {
	return &HTTPHandler{
		node:    node,
		mode:    mode,
		clients: clients,
		nodes:   nodes,
	}
}

// HealthResponse is the data of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	NodeID  string `json:"node_id"`
	Mode    string `json:"mode"`
	Clients int    `json:"clients"`
}

// NodesResponse is the data of GET /cluster/nodes.
type NodesResponse struct {
	Nodes []registry.Node `json:"nodes"`
	Total int             `json:"total"`
}

// HealthCheck handles GET /health
func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.Success(w, HealthResponse{
		Status:  "ok",
		NodeID:  h.node.String(),
		Mode:    h.mode,
		Clients: h.clients.Count(),
	})
}

// GetNodes handles GET /cluster/nodes
func (h *HTTPHandler) GetNodes(w http.ResponseWriter, r *http.Request) {
	if h.nodes == nil {
		response.NotFound(w, "node registry is disabled")
		return
	}

	nodes, err := h.nodes.List(r.Context())
	if err != nil {
		l := log.Ctx(r.Context())
		l.Error().Err(err).Msg("failed to list cluster nodes")
		response.InternalError(w, "failed to list cluster nodes")
		return
	}

	response.Success(w, NodesResponse{Nodes: nodes, Total: len(nodes)})
}

func (h *HTTPHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/cluster/nodes", h.GetNodes).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
}
