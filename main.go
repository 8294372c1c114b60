package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/automaxprocs/maxprocs"

	config "github.com/drummonds/pdfthumbs/config"
	database "github.com/drummonds/pdfthumbs/database"
	engine "github.com/drummonds/pdfthumbs/engine"
	"github.com/drummonds/pdfthumbs/engine/pdfrenderer"
	"github.com/drummonds/pdfthumbs/webapp"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// injectGlobals injects all of our globals into their packages
func injectGlobals(logger *slog.Logger) {
	Logger = logger
	database.Logger = Logger
	config.Logger = Logger
	engine.Logger = Logger
}

const notFoundHTML = `<!DOCTYPE html>
<html>
<head><title>404 - Not Found</title></head>
<body style="font-family: sans-serif; text-align: center; padding: 50px;">
	<h1>404 - Page Not Found</h1>
	<p>The page you're looking for doesn't exist.</p>
	<a href="/" style="color: #1e88e5; text-decoration: none; font-size: 18px;">Make some thumbnails</a>
</body>
</html>`

func main() {
	serverConfig, logger := config.SetupServer()
	injectGlobals(logger) //inject the logger into all of the packages

	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		Logger.Info(fmt.Sprintf(format, args...))
	})); err != nil {
		Logger.Warn("Unable to set GOMAXPROCS", "error", err)
	}

	Logger.Info("Setting up job log", "dsn", serverConfig.DatabaseDSN)
	db, err := database.NewRepository(serverConfig.DatabaseDSN)
	if err != nil {
		Logger.Error("Failed to open job log", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	renderer, err := pdfrenderer.NewRenderer(serverConfig.Thumbnails.Renderer)
	if err != nil {
		Logger.Error("Failed to start PDF renderer", "renderer", serverConfig.Thumbnails.Renderer, "error", err)
		os.Exit(1)
	}
	defer renderer.Close()

	e := newServer(serverConfig, db, renderer)

	serverHandler := engine.ServerHandler{DB: db, Echo: e, ServerConfig: serverConfig, Renderer: renderer}
	scheduler := serverHandler.InitializeSchedules()
	defer scheduler.Stop()
	if err := serverHandler.StartupChecks(); err != nil {
		Logger.Error("Startup checks failed", "error", err)
		os.Exit(1)
	}

	if serverConfig.ListenAddrIP == "" {
		Logger.Info("No Ip Addr set, binding on ALL addresses")
	}

	Logger.Info("Starting HTTP server")

	// Try to start server with automatic port increment if port is in use
	maxRetries := 5
	startPort := serverConfig.ListenAddrPort
	var startErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		addr := fmt.Sprintf("%s:%s", serverConfig.ListenAddrIP, serverConfig.ListenAddrPort)
		Logger.Info("Attempting to start server", "address", addr, "attempt", attempt+1)

		startErr = e.Start(addr)

		if startErr != nil && isAddressInUse(startErr) {
			Logger.Warn("Port already in use, trying next port",
				"port", serverConfig.ListenAddrPort,
				"attempt", attempt+1,
				"max_attempts", maxRetries)
			serverConfig.ListenAddrPort = nextPort(serverConfig.ListenAddrPort)

			if attempt == maxRetries-1 {
				Logger.Error("Failed to find available port after maximum retries",
					"start_port", startPort,
					"end_port", serverConfig.ListenAddrPort,
					"max_retries", maxRetries)
				os.Exit(1)
			}
		} else if startErr != nil && startErr != http.ErrServerClosed {
			Logger.Error("Failed to start server", "error", startErr)
			os.Exit(1)
		} else {
			break
		}
	}
}

// newServer builds the echo instance with middleware, API routes and the web UI
func newServer(serverConfig config.ServerConfig, db database.JobStore, renderer pdfrenderer.Renderer) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = notFoundHandler(e)

	e.Use(middleware.Recover())
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} ${method} ${uri} ${status} ${latency_human} ${bytes_out}\n",
	}))
	e.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig))
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", serverConfig.MaxUploadMB)))

	serverHandler := engine.ServerHandler{DB: db, Echo: e, ServerConfig: serverConfig, Renderer: renderer}
	serverHandler.RegisterRoutes(e)

	appHandler := webapp.Handler()
	for _, resource := range []string{"/wasm_exec.js", "/app.js", "/app.css", "/app-worker.js", "/manifest.webmanifest"} {
		e.GET(resource, echo.WrapHandler(appHandler))
	}
	// app.wasm is a build artifact (see cmd/webapp); without it pages still render server side
	e.Static("/web", "web")
	e.GET("/webapp/webapp.css", func(c echo.Context) error {
		return c.Blob(http.StatusOK, "text/css", webapp.Stylesheet)
	})
	for _, route := range webapp.Routes {
		e.GET(route, echo.WrapHandler(appHandler))
	}

	return e
}

// notFoundHandler answers JSON for unknown API paths and HTML for everything else
func notFoundHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
		}

		if code != http.StatusNotFound {
			e.DefaultHTTPErrorHandler(err, c)
			return
		}

		if strings.HasPrefix(c.Request().URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, map[string]string{
				"error":   "Not Found",
				"message": "The requested API endpoint does not exist",
				"path":    c.Request().URL.Path,
			})
			return
		}
		c.HTML(http.StatusNotFound, notFoundHTML)
	}
}

// nextPort returns port+1, or the port unchanged when it is not a number
func nextPort(port string) string {
	portNum := 0
	if _, err := fmt.Sscanf(port, "%d", &portNum); err != nil {
		return port
	}
	return fmt.Sprintf("%d", portNum+1)
}

// isAddressInUse checks if the error is due to address already in use
func isAddressInUse(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "address already in use")
}
