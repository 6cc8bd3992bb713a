package billing

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"weighstation/internal/httpx"
)

// NewRouter wires the billing service's HTTP routes, mirroring the
// middleware-first shape of weigh.NewRouter.
func NewRouter(c *Controller, log *logrus.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(httpx.RequestLogger(log))
	r.Use(httpx.JSONHeaders)

	r.HandleFunc("/health", c.Health).Methods(http.MethodGet)
	r.HandleFunc("/provider", c.CreateProvider).Methods(http.MethodPost)
	r.HandleFunc("/provider/{id}", c.RenameProvider).Methods(http.MethodPut)
	r.HandleFunc("/truck", c.CreateTruck).Methods(http.MethodPost)
	r.HandleFunc("/truck/{id}", c.ReassignTruck).Methods(http.MethodPut)
	r.HandleFunc("/rates", c.UploadRates).Methods(http.MethodPost)
	r.HandleFunc("/rates", c.DownloadRates).Methods(http.MethodGet)
	r.HandleFunc("/bill/{id}", c.Bill).Methods(http.MethodGet)
	return r
}
