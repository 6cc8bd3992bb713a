package billing

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"weighstation/internal/clock"
	"weighstation/internal/errs"
	"weighstation/internal/httpx"
)

// Controller exposes the billing service's HTTP handlers.
type Controller struct {
	svc       *Service
	log       *logrus.Logger
	ratesPath string
}

func NewController(svc *Service, log *logrus.Logger, ratesPath string) *Controller {
	return &Controller{svc: svc, log: log, ratesPath: ratesPath}
}

func (c *Controller) Health(w http.ResponseWriter, r *http.Request) {
	if err := c.svc.Ping(r.Context()); err != nil {
		httpx.WriteJSON(w, http.StatusInternalServerError, map[string]string{"status": "down"})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "200 OK"})
}

type providerRequest struct {
	Name string `json:"name"`
}

func (c *Controller) CreateProvider(w http.ResponseWriter, r *http.Request) {
	var req providerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(c.log, w, errs.NewValidation("bad request body: %v", err))
		return
	}
	provider, err := c.svc.CreateProvider(r.Context(), req.Name)
	if err != nil {
		httpx.WriteError(c.log, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"id": provider.ID, "name": provider.Name})
}

func (c *Controller) RenameProvider(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		httpx.WriteError(c.log, w, errs.NewValidation("bad provider id"))
		return
	}
	var req providerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(c.log, w, errs.NewValidation("bad request body: %v", err))
		return
	}
	if err := c.svc.RenameProvider(r.Context(), id, req.Name); err != nil {
		httpx.WriteError(c.log, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "renamed"})
}

type truckRequest struct {
	TruckID    string `json:"truckId"`
	ProviderID int64  `json:"providerId"`
}

func (c *Controller) CreateTruck(w http.ResponseWriter, r *http.Request) {
	var req truckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(c.log, w, errs.NewValidation("bad request body: %v", err))
		return
	}
	if err := c.svc.RegisterTruck(r.Context(), req.TruckID, req.ProviderID); err != nil {
		httpx.WriteError(c.log, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]string{"status": "registered"})
}

func (c *Controller) ReassignTruck(w http.ResponseWriter, r *http.Request) {
	truckID := mux.Vars(r)["id"]
	var req truckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(c.log, w, errs.NewValidation("bad request body: %v", err))
		return
	}
	if err := c.svc.ReassignTruck(r.Context(), truckID, req.ProviderID); err != nil {
		httpx.WriteError(c.log, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "reassigned"})
}

// UploadRates validates the uploaded workbook, then persists the raw bytes
// to disk verbatim; GET /rates serves exactly this file back, not a
// regenerated rendering of the parsed rows.
func (c *Controller) UploadRates(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		httpx.WriteError(c.log, w, errs.NewValidation("cannot read request body: %v", err))
		return
	}
	rates, err := ParseRatesWorkbook(data)
	if err != nil {
		httpx.WriteError(c.log, w, err)
		return
	}
	if err := c.svc.ReplaceRates(r.Context(), rates); err != nil {
		httpx.WriteError(c.log, w, err)
		return
	}
	if err := os.WriteFile(c.ratesPath, data, 0o644); err != nil {
		httpx.WriteError(c.log, w, errs.NewStorage("persist rates workbook", err))
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]string{"status": "rates uploaded"})
}

// DownloadRates serves the last uploaded workbook's bytes unmodified. 404
// until the first successful upload.
func (c *Controller) DownloadRates(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(c.ratesPath)
	if err != nil {
		if os.IsNotExist(err) {
			httpx.WriteError(c.log, w, errs.NewNotFound("no rates workbook has been uploaded yet"))
			return
		}
		httpx.WriteError(c.log, w, errs.NewStorage("read rates workbook", err))
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func parseRange(r *http.Request, defaultFrom, defaultTo time.Time) (from, to time.Time, err error) {
	q := r.URL.Query()
	from, err = clock.ParseOrDefault(q.Get("from"), defaultFrom)
	if err != nil {
		return
	}
	to, err = clock.ParseOrDefault(q.Get("to"), defaultTo)
	return
}

func (c *Controller) Bill(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		httpx.WriteError(c.log, w, errs.NewValidation("bad provider id"))
		return
	}
	now := time.Now()
	from, to, err := parseRange(r, DefaultFrom(now), now)
	if err != nil {
		httpx.WriteError(c.log, w, errs.NewValidation("%v", err))
		return
	}
	bill, err := c.svc.BuildBill(r.Context(), id, from, to)
	if err != nil {
		httpx.WriteError(c.log, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"id":           bill.ID,
		"name":         bill.Name,
		"from":         clock.Format(bill.From),
		"to":           clock.Format(bill.To),
		"truckCount":   bill.TruckCount,
		"sessionCount": bill.SessionCount,
		"products":     bill.Products,
		"total":        bill.Total,
	})
}
