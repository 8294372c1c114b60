package engine

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/drummonds/pdfthumbs/config"
	"github.com/drummonds/pdfthumbs/database"
	"github.com/drummonds/pdfthumbs/engine/pdfrenderer"
	"github.com/drummonds/pdfthumbs/engine/sizing"
	"github.com/drummonds/pdfthumbs/internal/build"
	"github.com/labstack/echo/v4"
)

// ServerHandler will inject the variables needed into routes
type ServerHandler struct {
	DB           database.JobStore
	Echo         *echo.Echo
	ServerConfig config.ServerConfig
	Renderer     pdfrenderer.Renderer
}

// RegisterRoutes adds every API route to the echo instance
func (serverHandler *ServerHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/thumbnails", serverHandler.CreateThumbnails)
	e.GET("/api/about", serverHandler.GetAboutInfo)
	e.GET("/api/health", serverHandler.Health)

	// Job tracking API routes
	e.GET("/api/jobs", serverHandler.GetRecentJobs)
	e.GET("/api/jobs/active", serverHandler.GetActiveJobs)
	e.GET("/api/jobs/:id", serverHandler.GetJob)
}

// CreateThumbnails renders the first page of every uploaded PDF and returns them in one download
// @Summary Create thumbnails
// @Description Upload PDFs (or ZIPs of PDFs) and receive a ZIP of images or a spreadsheet
// @Tags Thumbnails
// @Accept multipart/form-data
// @Produce application/zip
// @Param files formData file true "PDF or ZIP files (repeatable)"
// @Param format formData string false "zip (default) or xlsx"
// @Param target formData int false "Target dimension in pixels"
// @Param axis formData string false "height (default) or width"
// @Param image formData string false "jpeg (default) or png"
// @Success 200 {file} binary "Archive or workbook, or JSON when nothing could be thumbnailed"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /thumbnails [post]
func (serverHandler *ServerHandler) CreateThumbnails(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Expected a multipart form upload",
		})
	}

	format, err := ParseFormat(c.FormValue("format"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"error": err.Error()})
	}
	opts, err := serverHandler.requestOptions(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"error": err.Error()})
	}

	files := form.File["files"]
	if len(files) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "No files uploaded (use the \"files\" form field)",
		})
	}

	inputs := make([]Input, 0, len(files))
	for _, fh := range files {
		data, err := readUpload(fh)
		if err != nil {
			Logger.Error("Unable to read upload", "name", fh.Filename, "error", err)
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"error": fmt.Sprintf("Unable to read upload %s", fh.Filename),
			})
		}
		inputs = append(inputs, Input{Name: uploadName(fh), Data: data})
	}

	jobType := database.JobTypeThumbnailsZip
	if format == FormatXlsx {
		jobType = database.JobTypeThumbnailsXlsx
	}
	job, err := serverHandler.DB.CreateJob(jobType, fmt.Sprintf("Thumbnailing %d uploads", len(inputs)))
	if err != nil {
		Logger.Error("Failed to create thumbnail job", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to create job",
		})
	}
	if err := serverHandler.DB.UpdateJobStatus(job.ID, database.JobStatusRunning, "Rendering first pages"); err != nil {
		Logger.Error("Failed to update job status", "error", err)
	}

	processor := NewProcessor(serverHandler.Renderer, opts)
	processor.Progress = &jobProgress{db: serverHandler.DB, jobID: job.ID}

	result, err := processor.Process(c.Request().Context(), inputs, format)
	if err != nil {
		Logger.Error("Thumbnail batch failed", "jobID", job.ID, "error", err)
		serverHandler.DB.UpdateJobError(job.ID, err.Error())
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Thumbnail batch failed",
			"jobId": job.ID.String(),
		})
	}

	summary := database.BatchSummary{
		Format:      string(format),
		Documents:   result.Documents,
		Thumbnails:  len(result.Thumbnails),
		Skipped:     len(result.Notices),
		OutputBytes: len(result.Output),
		Empty:       result.Empty,
	}
	if err := serverHandler.DB.CompleteJob(job.ID, summary.String()); err != nil {
		Logger.Error("Failed to mark job as complete", "error", err)
	}

	notices := result.Notices
	if notices == nil {
		notices = []Notice{}
	}
	if err := result.Err(); err != nil {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"message": "nothing to download",
			"reason":  err.Error(),
			"notices": notices,
			"jobId":   job.ID.String(),
		})
	}

	filename := "thumbnails" + format.Extension()
	c.Response().Header().Set("X-Job-ID", job.ID.String())
	c.Response().Header().Set("X-Skipped-Count", strconv.Itoa(len(result.Notices)))
	c.Response().Header().Set(echo.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	return c.Blob(http.StatusOK, format.ContentType(), result.Output)
}

// requestOptions applies the optional per-request overrides to the configured options
func (serverHandler *ServerHandler) requestOptions(c echo.Context) (Options, error) {
	cfg := serverHandler.ServerConfig.Thumbnails
	if target := c.FormValue("target"); target != "" {
		n, err := strconv.Atoi(target)
		if err != nil || n <= 0 {
			return Options{}, fmt.Errorf("target must be a positive integer, got %q", target)
		}
		cfg.TargetDimension = n
	}
	if axis := c.FormValue("axis"); axis != "" {
		parsed, err := sizing.ParseAxis(axis)
		if err != nil {
			return Options{}, err
		}
		cfg.TargetAxis = parsed.String()
	}
	if imageFormat := c.FormValue("image"); imageFormat != "" {
		cfg.ImageFormat = imageFormat
	}
	return OptionsFromConfig(cfg, serverHandler.ServerConfig.WorkDir)
}

// uploadName keeps the client's full file name. mime/multipart strips any
// directory part, which would hide name collisions such as "Report/A.pdf".
func uploadName(fh *multipart.FileHeader) string {
	if _, params, err := mime.ParseMediaType(fh.Header.Get("Content-Disposition")); err == nil {
		if name := params["filename"]; name != "" {
			return name
		}
	}
	return fh.Filename
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return io.ReadAll(src)
}

// GetAboutInfo returns information about the application configuration
// @Summary Get application information
// @Description Retrieve the version, renderer and sizing constants in use
// @Tags Admin
// @Produce json
// @Success 200 {object} map[string]interface{} "Application information"
// @Router /about [get]
func (serverHandler *ServerHandler) GetAboutInfo(c echo.Context) error {
	cfg := serverHandler.ServerConfig.Thumbnails
	aboutInfo := map[string]interface{}{
		"version":         build.Version,
		"renderer":        cfg.Renderer,
		"dpi":             cfg.DPI,
		"targetDimension": cfg.TargetDimension,
		"targetAxis":      cfg.TargetAxis,
		"imageFormat":     cfg.ImageFormat,
		"jpegQuality":     cfg.JPEGQuality,
		"pxPerColumnUnit": cfg.PxPerColumnUnit,
		"ptPerPixel":      cfg.PtPerPixel,
		"sheetOrder":      cfg.SheetOrder,
		"sheetSpan":       cfg.SheetSpan,
		"formats":         []string{string(FormatZip), string(FormatXlsx)},
	}

	return c.JSON(http.StatusOK, aboutInfo)
}

// Health reports that the server is up
// @Summary Health check
// @Tags Admin
// @Produce json
// @Success 200 {object} map[string]interface{} "ok"
// @Router /health [get]
func (serverHandler *ServerHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"renderer": serverHandler.Renderer != nil,
	})
}
