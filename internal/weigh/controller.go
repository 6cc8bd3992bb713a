package weigh

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"weighstation/internal/clock"
	"weighstation/internal/errs"
	"weighstation/internal/httpx"
)

// Controller exposes the weigh engine's HTTP handlers.
type Controller struct {
	svc      *Service
	log      *logrus.Logger
	batchDir string
}

func NewController(svc *Service, log *logrus.Logger, batchDir string) *Controller {
	return &Controller{svc: svc, log: log, batchDir: batchDir}
}

func (c *Controller) Health(w http.ResponseWriter, r *http.Request) {
	if err := c.svc.Ping(r.Context()); err != nil {
		httpx.WriteJSON(w, http.StatusInternalServerError, map[string]string{"status": "down"})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "200 OK"})
}

var allDirections = []Direction{DirIn, DirOut, DirNone}

func parseRange(r *http.Request) (from, to time.Time, err error) {
	q := r.URL.Query()
	from, err = clock.ParseOrDefault(q.Get("from"), time.Time{})
	if err != nil {
		return
	}
	to, err = clock.ParseOrDefault(q.Get("to"), time.Now())
	return
}

func parseFilter(r *http.Request) ([]Direction, error) {
	raw := r.URL.Query().Get("filter")
	if raw == "" {
		return allDirections, nil
	}
	var out []Direction
	for _, part := range strings.Split(raw, ",") {
		d := Direction(strings.TrimSpace(part))
		if d != DirIn && d != DirOut && d != DirNone {
			return nil, errs.NewValidation("unknown filter direction %q", part)
		}
		out = append(out, d)
	}
	return out, nil
}

func (c *Controller) ListWeights(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r)
	if err != nil {
		httpx.WriteError(c.log, w, errs.NewValidation("%v", err))
		return
	}
	dirs, err := parseFilter(r)
	if err != nil {
		httpx.WriteError(c.log, w, err)
		return
	}
	rows, err := c.svc.ListWeights(r.Context(), from, to, dirs)
	if err != nil {
		httpx.WriteError(c.log, w, err)
		return
	}
	out := make([]weightRowJSON, 0, len(rows))
	for _, row := range rows {
		out = append(out, toWeightRowJSON(row))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

type weightRowJSON struct {
	ID         int64    `json:"id"`
	Direction  string   `json:"direction"`
	Bruto      int      `json:"bruto"`
	Neto       any      `json:"neto"`
	Produce    string   `json:"produce"`
	Containers []string `json:"containers"`
}

func toWeightRowJSON(r WeightRow) weightRowJSON {
	return weightRowJSON{
		ID:         r.ID,
		Direction:  string(r.Direction),
		Bruto:      r.Bruto,
		Neto:       netoJSON(r.Neto),
		Produce:    r.Produce,
		Containers: r.Containers,
	}
}

func netoJSON(n *int) any {
	if n == nil {
		return "na"
	}
	return *n
}

type recordRequestJSON struct {
	Direction  string `json:"direction"`
	Weight     int    `json:"weight"`
	Unit       string `json:"unit"`
	Truck      string `json:"truck"`
	Containers string `json:"containers"`
	Force      bool   `json:"force"`
	Produce    string `json:"produce"`
}

func (c *Controller) RecordWeight(w http.ResponseWriter, r *http.Request) {
	var req recordRequestJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(c.log, w, errs.NewValidation("bad request body: %v", err))
		return
	}
	var containers []string
	if req.Containers != "" {
		containers = strings.Split(req.Containers, ",")
	}
	res, err := c.svc.RecordWeight(r.Context(), RecordRequest{
		Direction:  req.Direction,
		Weight:     req.Weight,
		Unit:       req.Unit,
		Truck:      req.Truck,
		Containers: containers,
		Force:      req.Force,
		Produce:    req.Produce,
	})
	if err != nil {
		httpx.WriteError(c.log, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, recordResultJSON(res))
}

func recordResultJSON(r *RecordResult) map[string]any {
	out := map[string]any{"id": r.ID, "bruto": r.Bruto}
	if r.Truck != "" {
		out["truck"] = r.Truck
	}
	if r.Container != "" {
		out["container"] = r.Container
	}
	if r.TruckTara != nil {
		out["truckTara"] = *r.TruckTara
	}
	if r.ContainerTara != nil {
		out["containerTara"] = *r.ContainerTara
	}
	if r.TruckTara != nil || r.ContainerTara != nil {
		out["neto"] = netoJSON(r.Neto)
	}
	return out
}

func (c *Controller) BatchWeight(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("file")
	if name == "" {
		httpx.WriteError(c.log, w, errs.NewValidation("missing file query parameter"))
		return
	}
	path := filepath.Join(c.batchDir, filepath.Base(name))
	f, err := os.Open(path)
	if err != nil {
		httpx.WriteError(c.log, w, errs.NewValidation("cannot open batch file %q: %v", name, err))
		return
	}
	defer f.Close()

	var recs []TareRecord
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		recs, err = ParseCSV(f)
	case ".json":
		recs, err = ParseJSON(f)
	default:
		err = errs.NewValidation("unsupported batch file type %q", filepath.Ext(name))
	}
	if err != nil {
		httpx.WriteError(c.log, w, err)
		return
	}

	applied, err := c.svc.BatchIngest(r.Context(), recs)
	if err != nil {
		httpx.WriteError(c.log, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "batch ingested",
		"data":    map[string]int{"registered": len(recs), "reconciled": applied},
	})
}

func (c *Controller) Unknown(w http.ResponseWriter, r *http.Request) {
	ids, err := c.svc.GetUnknown(r.Context())
	if err != nil {
		httpx.WriteError(c.log, w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	httpx.WriteJSON(w, http.StatusOK, ids)
}

func (c *Controller) Item(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	from, to, err := parseRange(r)
	if err != nil {
		httpx.WriteError(c.log, w, errs.NewValidation("%v", err))
		return
	}
	res, err := c.svc.GetItem(r.Context(), id, from, to)
	if err != nil {
		httpx.WriteError(c.log, w, err)
		return
	}
	sessions := res.Sessions
	if sessions == nil {
		sessions = []int64{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"id":       res.ID,
		"tara":     netoJSON(res.Tara),
		"sessions": sessions,
	})
}

func (c *Controller) Session(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		httpx.WriteError(c.log, w, errs.NewValidation("bad session id %q", idStr))
		return
	}
	res, err := c.svc.GetSession(r.Context(), id)
	if err != nil {
		httpx.WriteError(c.log, w, err)
		return
	}
	if res.IsContainer {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"id":            res.ID,
			"container":     res.Container,
			"bruto":         res.Bruto,
			"containerTara": netoJSON(res.ContainerTara),
			"neto":          netoJSON(res.Neto),
		})
		return
	}
	out := map[string]any{"id": res.ID, "truck": res.Truck, "bruto": res.Bruto}
	if res.TruckTara != nil {
		out["truckTara"] = *res.TruckTara
		out["neto"] = netoJSON(res.Neto)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
