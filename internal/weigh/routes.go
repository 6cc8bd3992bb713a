package weigh

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"weighstation/internal/httpx"
)

// NewRouter wires the weigh engine's HTTP routes, following the
// cmd/xchainserver/server.NewRouter shape: middleware first, then routes.
func NewRouter(c *Controller, log *logrus.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(httpx.RequestLogger(log))
	r.Use(httpx.JSONHeaders)

	r.HandleFunc("/health", c.Health).Methods(http.MethodGet)
	r.HandleFunc("/weight", c.ListWeights).Methods(http.MethodGet)
	r.HandleFunc("/weight", c.RecordWeight).Methods(http.MethodPost)
	r.HandleFunc("/batch-weight", c.BatchWeight).Methods(http.MethodPost)
	r.HandleFunc("/unknown", c.Unknown).Methods(http.MethodGet)
	r.HandleFunc("/item/{id}", c.Item).Methods(http.MethodGet)
	r.HandleFunc("/session/{id}", c.Session).Methods(http.MethodGet)
	return r
}
