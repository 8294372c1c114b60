package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/drummonds/pdfthumbs/engine/sizing"
	"github.com/drummonds/pdfthumbs/engine/workbook"
	"github.com/joho/godotenv"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// MinScratchTTL is the youngest a scratch directory can be and still be swept
const MinScratchTTL = 5 * time.Minute

const defaultScratchTTL = 6 * time.Hour

// ServerConfig contains all of the server settings
type ServerConfig struct {
	ListenAddrIP   string
	ListenAddrPort string
	WorkDir        string // parent of the per-batch scratch directories
	DatabaseDSN    string // job log, in-memory sqlite unless overridden
	MaxUploadMB    int
	SweepInterval  int // minutes
	ScratchTTL     time.Duration
	JobRetention   time.Duration
	Thumbnails     ThumbnailConfig
}

// ThumbnailConfig holds everything that shapes one batch
type ThumbnailConfig struct {
	Renderer         string  `yaml:"renderer"`         // pdfium or fitz
	DPI              float64 `yaml:"dpi"`              // first page raster resolution
	TargetDimension  int     `yaml:"targetDimension"`  // pixels on the pinned axis
	TargetAxis       string  `yaml:"targetAxis"`       // height or width
	ImageFormat      string  `yaml:"imageFormat"`      // jpeg or png
	JPEGQuality      int     `yaml:"jpegQuality"`      // 1-100
	MinDocumentBytes int     `yaml:"minDocumentBytes"` // smaller uploads are not PDFs
	MaxZipEntryMB    int     `yaml:"maxZipEntryMB"`
	PxPerColumnUnit  float64 `yaml:"pxPerColumnUnit"`
	PtPerPixel       float64 `yaml:"ptPerPixel"`
	SheetOrder       string  `yaml:"sheetOrder"` // row-major or column-major
	SheetSpan        int     `yaml:"sheetSpan"`  // items per row or column
	EmbedOriginal    bool    `yaml:"embedOriginal"`
}

// DefaultThumbnailConfig mirrors the environment defaults
func DefaultThumbnailConfig() ThumbnailConfig {
	return ThumbnailConfig{
		Renderer:         "pdfium",
		DPI:              150,
		TargetDimension:  200,
		TargetAxis:       "height",
		ImageFormat:      "jpeg",
		JPEGQuality:      90,
		MinDocumentBytes: 1024,
		MaxZipEntryMB:    64,
		PxPerColumnUnit:  7.0,
		PtPerPixel:       0.75,
		SheetOrder:       "row-major",
		SheetSpan:        1,
	}
}

// Validate rejects settings that would make every document fail
func (c ThumbnailConfig) Validate() error {
	var problems []string
	if c.DPI < 1 {
		problems = append(problems, fmt.Sprintf("dpi must be at least 1, got %v", c.DPI))
	}
	if c.TargetDimension <= 0 {
		problems = append(problems, fmt.Sprintf("target dimension must be positive, got %d", c.TargetDimension))
	}
	if _, err := sizing.ParseAxis(c.TargetAxis); err != nil {
		problems = append(problems, err.Error())
	}
	switch strings.ToLower(c.ImageFormat) {
	case "jpeg", "jpg", "png":
	default:
		problems = append(problems, fmt.Sprintf("image format must be jpeg or png, got %q", c.ImageFormat))
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		problems = append(problems, fmt.Sprintf("jpeg quality must be 1-100, got %d", c.JPEGQuality))
	}
	if c.MinDocumentBytes < 0 {
		problems = append(problems, fmt.Sprintf("minimum document size cannot be negative, got %d", c.MinDocumentBytes))
	}
	if c.PxPerColumnUnit <= 0 || c.PtPerPixel <= 0 {
		problems = append(problems, fmt.Sprintf("unit conversions must be positive, got %v px/unit and %v pt/px", c.PxPerColumnUnit, c.PtPerPixel))
	}
	if _, err := workbook.ParseOrder(c.SheetOrder); err != nil {
		problems = append(problems, err.Error())
	}
	if c.SheetSpan < 1 {
		problems = append(problems, fmt.Sprintf("sheet span must be at least 1, got %d", c.SheetSpan))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// Validate checks the server settings that are not thumbnail settings
func (c ServerConfig) Validate() error {
	var problems []string
	if c.ScratchTTL < MinScratchTTL {
		problems = append(problems, fmt.Sprintf("scratch TTL must be at least %v, got %v", MinScratchTTL, c.ScratchTTL))
	}
	if c.SweepInterval < 1 {
		problems = append(problems, fmt.Sprintf("sweep interval must be at least 1 minute, got %d", c.SweepInterval))
	}
	if c.MaxUploadMB < 1 {
		problems = append(problems, fmt.Sprintf("max upload must be at least 1 MB, got %d", c.MaxUploadMB))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolVal
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intVal
}

// getEnvFloat gets a float environment variable with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return floatVal
}

// getEnvDuration gets a duration ("36h", "90m") environment variable with a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

// SetupServer loads configuration and returns ServerConfig and Logger
func SetupServer() (ServerConfig, *slog.Logger) {
	// Load .env file (silently ignore if doesn't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load("config.env")

	logger := setupLogging()
	Logger = logger

	serverConfigLive := ServerConfig{}
	serverConfigLive.ListenAddrPort = getEnv("SERVER_PORT", "8000")
	serverConfigLive.ListenAddrIP = getEnv("SERVER_ADDR", "")

	workDir := filepath.ToSlash(getEnv("WORK_DIR", os.TempDir()))
	workDirAbs, err := filepath.Abs(workDir)
	if err != nil {
		logger.Error("Failed creating absolute path for work directory", "error", err)
		workDirAbs = workDir
	}
	serverConfigLive.WorkDir = workDirAbs

	serverConfigLive.DatabaseDSN = getEnv("DATABASE_DSN", "file::memory:?cache=shared")
	serverConfigLive.MaxUploadMB = getEnvInt("MAX_UPLOAD_MB", 256)
	serverConfigLive.SweepInterval = getEnvInt("SWEEP_INTERVAL", 30)
	serverConfigLive.ScratchTTL = getEnvDuration("SCRATCH_TTL", defaultScratchTTL)
	serverConfigLive.JobRetention = getEnvDuration("JOB_RETENTION", 24*time.Hour)
	serverConfigLive.Thumbnails = LoadThumbnailConfig()

	if err := serverConfigLive.Validate(); err != nil {
		logger.Error("Server configuration is invalid, falling back to defaults", "error", err)
		serverConfigLive.applyServerDefaults()
	}
	if err := serverConfigLive.Thumbnails.Validate(); err != nil {
		logger.Error("Thumbnail configuration is invalid, falling back to defaults", "error", err)
		serverConfigLive.Thumbnails = DefaultThumbnailConfig()
	}

	fmt.Println("\n========================================")
	fmt.Println("   pdfthumbs - PDF Thumbnail Service")
	fmt.Println("========================================")
	fmt.Printf("Server will start on: %s:%s\n", serverConfigLive.ListenAddrIP, serverConfigLive.ListenAddrPort)
	if serverConfigLive.ListenAddrIP == "" {
		fmt.Println("(Listening on all network interfaces)")
	}
	fmt.Printf("Detailed logs: %s\n", getEnv("LOG_FILE", "pdfthumbs.log"))

	logger.Info("Configuration loaded",
		"workDir", serverConfigLive.WorkDir,
		"renderer", serverConfigLive.Thumbnails.Renderer,
		"target", serverConfigLive.Thumbnails.TargetDimension,
		"axis", serverConfigLive.Thumbnails.TargetAxis)

	return serverConfigLive, logger
}

// applyServerDefaults replaces out of range values by their defaults
func (c *ServerConfig) applyServerDefaults() {
	if c.ScratchTTL < MinScratchTTL {
		c.ScratchTTL = defaultScratchTTL
	}
	if c.SweepInterval < 1 {
		c.SweepInterval = 30
	}
	if c.MaxUploadMB < 1 {
		c.MaxUploadMB = 256
	}
}

// LoadThumbnailConfig reads the thumbnail settings from the environment
func LoadThumbnailConfig() ThumbnailConfig {
	defaults := DefaultThumbnailConfig()
	return ThumbnailConfig{
		Renderer:         getEnv("RENDERER", defaults.Renderer),
		DPI:              getEnvFloat("RENDER_DPI", defaults.DPI),
		TargetDimension:  getEnvInt("TARGET_DIMENSION", defaults.TargetDimension),
		TargetAxis:       getEnv("TARGET_AXIS", defaults.TargetAxis),
		ImageFormat:      getEnv("IMAGE_FORMAT", defaults.ImageFormat),
		JPEGQuality:      getEnvInt("JPEG_QUALITY", defaults.JPEGQuality),
		MinDocumentBytes: getEnvInt("MIN_DOCUMENT_BYTES", defaults.MinDocumentBytes),
		MaxZipEntryMB:    getEnvInt("MAX_ZIP_ENTRY_MB", defaults.MaxZipEntryMB),
		PxPerColumnUnit:  getEnvFloat("PX_PER_COLUMN_UNIT", defaults.PxPerColumnUnit),
		PtPerPixel:       getEnvFloat("PT_PER_PIXEL", defaults.PtPerPixel),
		SheetOrder:       getEnv("SHEET_ORDER", defaults.SheetOrder),
		SheetSpan:        getEnvInt("SHEET_SPAN", defaults.SheetSpan),
		EmbedOriginal:    getEnvBool("EMBED_ORIGINAL", defaults.EmbedOriginal),
	}
}

// SetupCLI loads the environment for command line use, where logs go to stderr unless redirected
func SetupCLI() (ThumbnailConfig, *slog.Logger) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("config.env")

	if os.Getenv("LOG_OUTPUT") == "" {
		os.Setenv("LOG_OUTPUT", "stderr")
	}
	if os.Getenv("LOG_LEVEL") == "" {
		os.Setenv("LOG_LEVEL", "warn")
	}
	logger := setupLogging()
	Logger = logger
	return LoadThumbnailConfig(), logger
}

// setupLogging configures the application logger
func setupLogging() *slog.Logger {
	logLevel := getEnv("LOG_LEVEL", "debug")
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelDebug
	}

	handlerOptions := &slog.HandlerOptions{Level: level}

	logOutput := getEnv("LOG_OUTPUT", "file")
	var logWriter io.Writer

	switch logOutput {
	case "stdout":
		logWriter = os.Stdout
	case "stderr":
		logWriter = os.Stderr
	default:
		logPath, err := filepath.Abs(filepath.ToSlash(getEnv("LOG_FILE", "pdfthumbs.log")))
		if err != nil {
			fmt.Printf("Error creating log file path: %v\n", err)
			logWriter = os.Stdout
		} else {
			logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
			if err != nil {
				fmt.Printf("Failed to open log file: %v\n", err)
				logWriter = os.Stdout
			} else {
				logWriter = logFile
				fmt.Println("Logging to file: ", logPath)
			}
		}
	}

	handler := slog.NewTextHandler(logWriter, handlerOptions)
	return slog.New(handler)
}
