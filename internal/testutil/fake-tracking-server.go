package testutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

// UploadedArtifact is one PUT received by the fake server. Uploads to the
// same path are all kept.
type UploadedArtifact struct {
	Path string
	Data []byte
}

type fakeRun struct {
	ID           string
	Name         string
	ExperimentID string
	Status       string
	EndTime      int64
	Uploads      []UploadedArtifact
}

// FakeTrackingServer is an in-memory stand-in for the MLflow REST API.
type FakeTrackingServer struct {
	*httptest.Server

	mu          sync.Mutex
	experiments map[string]string // name -> id
	runs        []*fakeRun
	nextID      int
	hosts       []string
	requestIDs  []string
	statusLog   []string

	// FailUploadsFor makes artifact PUTs fail for the given run IDs.
	FailUploadsFor map[string]bool
	// PageSize caps runs per search page regardless of max_results.
	PageSize int
}

func NewFakeTrackingServer() *FakeTrackingServer {
	gin.SetMode(gin.TestMode)
	f := &FakeTrackingServer{
		experiments:    make(map[string]string),
		FailUploadsFor: make(map[string]bool),
	}

	r := gin.New()
	r.Use(f.recordRequest())

	api := r.Group("/api/2.0")
	api.GET("/mlflow/experiments/get-by-name", f.getExperimentByName)
	api.POST("/mlflow/runs/search", f.searchRuns)
	api.POST("/mlflow/runs/update", f.updateRun)
	api.GET("/mlflow/artifacts/list", f.listArtifacts)
	api.PUT("/mlflow-artifacts/artifacts/*path", f.uploadArtifact)

	f.Server = httptest.NewServer(r)
	return f
}

func (f *FakeTrackingServer) recordRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		f.mu.Lock()
		f.hosts = append(f.hosts, c.Request.Host)
		f.requestIDs = append(f.requestIDs, c.GetHeader("X-Request-ID"))
		f.mu.Unlock()
		c.Next()
	}
}

func (f *FakeTrackingServer) AddExperiment(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := strconv.Itoa(f.nextID)
	f.experiments[name] = id
	return id
}

func (f *FakeTrackingServer) AddRun(experimentID, name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("run%04d", f.nextID)
	f.runs = append(f.runs, &fakeRun{ID: id, Name: name, ExperimentID: experimentID, Status: "FINISHED"})
	return id
}

// Uploads returns every artifact PUT for a run, in arrival order.
func (f *FakeTrackingServer) Uploads(runID string) []UploadedArtifact {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r := f.findRun(runID); r != nil {
		return append([]UploadedArtifact(nil), r.Uploads...)
	}
	return nil
}

// UploadPaths returns the artifact paths uploaded for a run, in arrival order.
func (f *FakeTrackingServer) UploadPaths(runID string) []string {
	var paths []string
	for _, u := range f.Uploads(runID) {
		paths = append(paths, u.Path)
	}
	return paths
}

func (f *FakeTrackingServer) RunStatus(runID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r := f.findRun(runID); r != nil {
		return r.Status
	}
	return ""
}

// StatusLog lists "<run id>:<status>" for every runs/update call.
func (f *FakeTrackingServer) StatusLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.statusLog...)
}

func (f *FakeTrackingServer) Hosts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.hosts...)
}

func (f *FakeTrackingServer) RequestIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requestIDs...)
}

// RequestCount is the number of requests received so far.
func (f *FakeTrackingServer) RequestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.hosts)
}

func (f *FakeTrackingServer) findRun(id string) *fakeRun {
	for _, r := range f.runs {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func notFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, gin.H{"error_code": "RESOURCE_DOES_NOT_EXIST", "message": msg})
}

func (f *FakeTrackingServer) getExperimentByName(c *gin.Context) {
	name := c.Query("experiment_name")

	f.mu.Lock()
	id, ok := f.experiments[name]
	f.mu.Unlock()
	if !ok {
		notFound(c, fmt.Sprintf("Could not find experiment with name '%s'", name))
		return
	}

	c.JSON(http.StatusOK, gin.H{"experiment": gin.H{
		"experiment_id":     id,
		"name":              name,
		"artifact_location": "mlflow-artifacts:/" + id,
		"lifecycle_stage":   "active",
	}})
}

func (f *FakeTrackingServer) searchRuns(c *gin.Context) {
	var req struct {
		ExperimentIDs []string `json:"experiment_ids"`
		MaxResults    int      `json:"max_results"`
		PageToken     string   `json:"page_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error_code": "INVALID_PARAMETER_VALUE", "message": err.Error()})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	wanted := make(map[string]bool)
	for _, id := range req.ExperimentIDs {
		wanted[id] = true
	}
	var matched []*fakeRun
	for _, r := range f.runs {
		if wanted[r.ExperimentID] {
			matched = append(matched, r)
		}
	}

	limit := req.MaxResults
	if f.PageSize > 0 && (limit <= 0 || f.PageSize < limit) {
		limit = f.PageSize
	}
	offset, _ := strconv.Atoi(req.PageToken)
	if offset < 0 || offset > len(matched) {
		offset = len(matched)
	}
	end := len(matched)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	runs := make([]gin.H, 0, end-offset)
	for _, r := range matched[offset:end] {
		runs = append(runs, gin.H{
			"info": gin.H{
				"run_id":          r.ID,
				"run_uuid":        r.ID,
				"run_name":        r.Name,
				"experiment_id":   r.ExperimentID,
				"status":          r.Status,
				"start_time":      "1700000000000",
				"artifact_uri":    fmt.Sprintf("mlflow-artifacts:/%s/%s/artifacts", r.ExperimentID, r.ID),
				"lifecycle_stage": "active",
			},
			"data": gin.H{"tags": []gin.H{{"key": "mlflow.runName", "value": r.Name}}},
		})
	}

	resp := gin.H{"runs": runs}
	if end < len(matched) {
		resp["next_page_token"] = strconv.Itoa(end)
	}
	c.JSON(http.StatusOK, resp)
}

func (f *FakeTrackingServer) updateRun(c *gin.Context) {
	var req struct {
		RunID   string `json:"run_id"`
		Status  string `json:"status"`
		EndTime int64  `json:"end_time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error_code": "INVALID_PARAMETER_VALUE", "message": err.Error()})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.findRun(req.RunID)
	if r == nil {
		notFound(c, "Run '"+req.RunID+"' not found")
		return
	}
	r.Status = req.Status
	r.EndTime = req.EndTime
	f.statusLog = append(f.statusLog, r.ID+":"+r.Status)
	c.JSON(http.StatusOK, gin.H{"run_info": gin.H{"run_id": r.ID, "status": r.Status}})
}

func (f *FakeTrackingServer) listArtifacts(c *gin.Context) {
	runID := c.Query("run_id")
	prefix := strings.Trim(c.Query("path"), "/")

	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.findRun(runID)
	if r == nil {
		notFound(c, "Run '"+runID+"' not found")
		return
	}

	dirs := make(map[string]bool)
	files := make(map[string]int)
	for _, u := range r.Uploads {
		rest := u.Path
		if prefix != "" {
			if !strings.HasPrefix(u.Path, prefix+"/") {
				continue
			}
			rest = strings.TrimPrefix(u.Path, prefix+"/")
		}
		if i := strings.Index(rest, "/"); i >= 0 {
			dirs[path.Join(prefix, rest[:i])] = true
		} else {
			files[path.Join(prefix, rest)] = len(u.Data)
		}
	}

	entries := make([]gin.H, 0, len(dirs)+len(files))
	for d := range dirs {
		entries = append(entries, gin.H{"path": d, "is_dir": true})
	}
	for p, size := range files {
		entries = append(entries, gin.H{"path": p, "is_dir": false, "file_size": size})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i]["path"].(string) < entries[j]["path"].(string)
	})

	c.JSON(http.StatusOK, gin.H{
		"root_uri": fmt.Sprintf("mlflow-artifacts:/%s/%s/artifacts", r.ExperimentID, r.ID),
		"files":    entries,
	})
}

// uploadArtifact expects <experiment>/<run>/artifacts/<relative path>.
func (f *FakeTrackingServer) uploadArtifact(c *gin.Context) {
	parts := strings.SplitN(strings.TrimPrefix(c.Param("path"), "/"), "/", 4)
	if len(parts) < 4 || parts[2] != "artifacts" {
		c.JSON(http.StatusBadRequest, gin.H{"error_code": "INVALID_PARAMETER_VALUE", "message": "bad artifact path"})
		return
	}
	runID, rel := parts[1], parts[3]

	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error_code": "INVALID_PARAMETER_VALUE", "message": err.Error()})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.findRun(runID)
	if r == nil {
		notFound(c, "Run '"+runID+"' not found")
		return
	}
	if f.FailUploadsFor[runID] {
		c.JSON(http.StatusInternalServerError, gin.H{"error_code": "INTERNAL_ERROR", "message": "storage unavailable"})
		return
	}
	r.Uploads = append(r.Uploads, UploadedArtifact{Path: rel, Data: data})
	c.JSON(http.StatusOK, gin.H{})
}
