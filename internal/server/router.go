package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/loykin/aotrec/internal/recorder"
	"github.com/loykin/aotrec/internal/store"
)

// Router provides embeddable HTTP handlers for the recording management
// surface. Endpoints:
//
//	GET  {basePath}/mode          current recording mode tag
//	GET  {basePath}/recording     whether a recording is active
//	GET  {basePath}/duration      recording duration so far (or final)
//	POST {basePath}/end           end the recording
//	POST {basePath}/record        body: {"name":..., "duration_ns":...}
//	GET  {basePath}/workloads     observed workload names
//	GET  {basePath}/stats         query: name=... (one) or none (all)
//	GET  {basePath}/sessions      persisted sessions, query: limit=N
//
// basePath may be empty or start with '/'; no trailing slash.
type Router struct {
	rec      *recorder.Recorder
	basePath string
}

// NewRouter constructs a new Router with configurable basePath.
// Example basePath: "/api" results in /api/mode, /api/stats, ...
func NewRouter(rec *recorder.Recorder, basePath string) *Router {
	bp := sanitizeBase(basePath)
	return &Router{rec: rec, basePath: bp}
}

// Handler returns an http.Handler powered by gin that can be mounted in any server/mux.
func (r *Router) Handler() http.Handler {
	g := gin.New()
	g.Use(gin.Recovery())
	group := g.Group(r.basePath)
	group.GET("/mode", r.handleMode)
	group.GET("/recording", r.handleRecording)
	group.GET("/duration", r.handleDuration)
	group.POST("/end", r.handleEnd)
	group.POST("/record", r.handleRecord)
	group.GET("/workloads", r.handleWorkloads)
	group.GET("/stats", r.handleStats)
	group.GET("/sessions", r.handleSessions)
	return g
}

// NewServer starts a standalone HTTP server on addr using this router.
// The returned http.Server can be shut down by the caller.
func NewServer(addr, basePath string, rec *recorder.Recorder) (*http.Server, error) {
	r := NewRouter(rec, basePath)
	server := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() { _ = server.ListenAndServe() }()
	return server, nil
}

// --- Handlers ---

type errorResp struct {
	Error string `json:"error"`
}

type modeResp struct {
	Mode string `json:"mode"`
}

type recordingResp struct {
	Recording bool `json:"recording"`
}

type durationResp struct {
	Available  bool  `json:"available"`
	DurationNs int64 `json:"duration_ns"`
}

type endResp struct {
	Ended bool `json:"ended"`
}

type recordReq struct {
	Name       string `json:"name"`
	DurationNs int64  `json:"duration_ns"`
}

type okResp struct {
	OK bool `json:"ok"`
}

func (r *Router) handleMode(c *gin.Context) {
	writeJSON(c, http.StatusOK, modeResp{Mode: r.rec.Mode().String()})
}

func (r *Router) handleRecording(c *gin.Context) {
	writeJSON(c, http.StatusOK, recordingResp{Recording: r.rec.IsRecording()})
}

func (r *Router) handleDuration(c *gin.Context) {
	d, ok := r.rec.Duration()
	writeJSON(c, http.StatusOK, durationResp{Available: ok, DurationNs: int64(d)})
}

func (r *Router) handleEnd(c *gin.Context) {
	writeJSON(c, http.StatusOK, endResp{Ended: r.rec.EndRecording()})
}

func (r *Router) handleRecord(c *gin.Context) {
	var req recordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	if req.Name == "" {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "name required"})
		return
	}
	if !isSafeName(req.Name) {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid name: allowed [A-Za-z0-9._-] and no '..'"})
		return
	}
	r.rec.RecordWorkDone(req.Name, time.Duration(req.DurationNs))
	writeJSON(c, http.StatusOK, okResp{OK: true})
}

func (r *Router) handleWorkloads(c *gin.Context) {
	names := r.rec.Exporter().Workloads()
	if names == nil {
		names = []string{}
	}
	writeJSON(c, http.StatusOK, names)
}

// workloadStats is the wire shape for one workload's figures, composed
// from a single snapshot so the view is never torn.
type workloadStats struct {
	Name      string    `json:"name"`
	Count     uint64    `json:"count"`
	FirstNs   int64     `json:"first_ns"`
	LastNs    int64     `json:"last_ns"`
	MinNs     int64     `json:"min_ns"`
	MaxNs     int64     `json:"max_ns"`
	SumNs     int64     `json:"sum_ns"`
	FirstAt   time.Time `json:"first_at"`
	LastAt    time.Time `json:"last_at"`
	AverageNs float64   `json:"average_ns"`
	PerSecond float64   `json:"requests_per_second"`
}

func (r *Router) handleStats(c *gin.Context) {
	exp := r.rec.Exporter()
	name := c.Query("name")
	if name == "" {
		snaps := exp.SnapshotAll()
		out := make([]workloadStats, 0, len(snaps))
		for n := range snaps {
			if ws, ok := r.workloadStatsFor(n); ok {
				out = append(out, ws)
			}
		}
		writeJSON(c, http.StatusOK, out)
		return
	}
	ws, ok := r.workloadStatsFor(name)
	if !ok {
		writeJSON(c, http.StatusNotFound, errorResp{Error: "no samples recorded for " + name})
		return
	}
	writeJSON(c, http.StatusOK, ws)
}

func (r *Router) workloadStatsFor(name string) (workloadStats, bool) {
	exp := r.rec.Exporter()
	snap, ok := exp.Snapshot(name)
	if !ok || snap.Count == 0 {
		return workloadStats{}, false
	}
	rps, _ := exp.RequestsPerSecond(name)
	return workloadStats{
		Name:      name,
		Count:     snap.Count,
		FirstNs:   int64(snap.First),
		LastNs:    int64(snap.Last),
		MinNs:     int64(snap.Min),
		MaxNs:     int64(snap.Max),
		SumNs:     int64(snap.Sum),
		FirstAt:   snap.FirstAt,
		LastAt:    snap.LastAt,
		AverageNs: snap.Average(),
		PerSecond: rps,
	}, true
}

func (r *Router) handleSessions(c *gin.Context) {
	limit := 20
	if s := c.Query("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}
	sessions, ok, err := r.rec.RecentSessions(c.Request.Context(), limit)
	if err != nil {
		writeJSON(c, http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}
	if !ok {
		writeJSON(c, http.StatusNotFound, errorResp{Error: "no session store configured"})
		return
	}
	if sessions == nil {
		sessions = []store.Session{}
	}
	writeJSON(c, http.StatusOK, sessions)
}
