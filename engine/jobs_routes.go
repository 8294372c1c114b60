package engine

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/drummonds/pdfthumbs/database"
	"github.com/labstack/echo/v4"
	"github.com/oklog/ulid/v2"
)

const (
	defaultJobPage = 20
	maxJobPage     = 100
)

// GetJob returns one batch or sweep from the job log
// @Summary Get job by ID
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID (ULID)"
// @Success 200 {object} database.Job "Job details"
// @Failure 400 {object} map[string]interface{} "Invalid job ID"
// @Failure 404 {object} map[string]interface{} "Job not found"
// @Router /jobs/{id} [get]
func (serverHandler *ServerHandler) GetJob(c echo.Context) error {
	jobID, err := ulid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid job ID format",
		})
	}

	job, err := serverHandler.DB.GetJob(jobID)
	if err != nil {
		Logger.Debug("Job lookup failed", "jobID", jobID, "error", err)
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"error": "Job not found",
		})
	}
	return c.JSON(http.StatusOK, job)
}

// GetRecentJobs pages through the job log, newest first
// @Summary Get recent jobs
// @Tags Jobs
// @Produce json
// @Param limit query int false "Page size, 1-100 (default: 20)"
// @Param offset query int false "Jobs to skip (default: 0)"
// @Success 200 {array} database.Job "List of jobs"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /jobs [get]
func (serverHandler *ServerHandler) GetRecentJobs(c echo.Context) error {
	limit := queryInt(c, "limit", defaultJobPage, 1, maxJobPage)
	offset := queryInt(c, "offset", 0, 0, -1)

	jobs, err := serverHandler.DB.GetRecentJobs(limit, offset)
	return jobList(c, jobs, err)
}

// GetActiveJobs lists pending and running jobs
// @Summary Get active jobs
// @Tags Jobs
// @Produce json
// @Success 200 {array} database.Job "List of active jobs"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /jobs/active [get]
func (serverHandler *ServerHandler) GetActiveJobs(c echo.Context) error {
	jobs, err := serverHandler.DB.GetActiveJobs()
	return jobList(c, jobs, err)
}

func jobList(c echo.Context, jobs []database.Job, err error) error {
	if err != nil {
		Logger.Error("Failed to read job log", "path", c.Path(), "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to retrieve jobs",
		})
	}
	if jobs == nil {
		jobs = []database.Job{}
	}
	return c.JSON(http.StatusOK, jobs)
}

// queryInt reads an integer query parameter, falling back to def when it is
// missing or outside [lo, hi]. hi < 0 means no upper bound.
func queryInt(c echo.Context, name string, def, lo, hi int) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil || v < lo || (hi >= 0 && v > hi) {
		return def
	}
	return v
}

// jobProgress records batch progress in the job log. The last 10% is left
// for packaging the output.
type jobProgress struct {
	db    database.JobStore
	jobID ulid.ULID
}

func (p *jobProgress) Progress(done, total int, current string) {
	percent := 90
	if total > 0 {
		percent = done * 90 / total
	}
	step := fmt.Sprintf("[%d/%d] %s", done, total, current)
	if err := p.db.UpdateJobProgress(p.jobID, percent, step); err != nil {
		Logger.Warn("Failed to update job progress", "jobID", p.jobID, "error", err)
	}
}
