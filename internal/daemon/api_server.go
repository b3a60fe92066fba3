package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"subburn/internal/api"
	"subburn/internal/config"
	"subburn/internal/jobs"
	"subburn/internal/logging"
	"subburn/internal/metrics"
	"subburn/internal/services"
)

const (
	healthMessage   = "Video Subtitle Tool API is running!"
	requestIDHeader = "X-Request-ID"
)

type apiServer struct {
	bind        string
	token       string
	uploadLimit int64
	logger      *slog.Logger
	jobs        *api.JobService
	metrics     *metrics.Metrics

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, svc *api.JobService, m *metrics.Metrics, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || svc == nil {
		return nil, errors.New("api server requires config and job service")
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, errors.New("api server requires paths.api_bind")
	}
	uploads, err := newUploadLimiter(cfg.Upload.Rate, m)
	if err != nil {
		return nil, err
	}

	srv := &apiServer{
		bind:        bind,
		token:       strings.TrimSpace(cfg.Paths.APIToken),
		uploadLimit: cfg.UploadLimitBytes(),
		logger:      logging.NewComponentLogger(logger, "api-server"),
		jobs:        svc,
		metrics:     m,
	}
	srv.server = &http.Server{
		Handler:           srv.routes(uploads, cfg.Metrics.Enabled),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) routes(uploads *uploadLimiter, exposeMetrics bool) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), s.metrics.GinMiddleware(), s.requestLogger())

	engine.GET("/", s.handleHealth)
	if exposeMetrics && s.metrics != nil {
		engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	videos := engine.Group("/api/videos", authMiddleware(s.token))
	videos.POST("/upload", uploads.middleware(), s.handleUpload)
	videos.POST("/process/:id", s.handleProcess)
	videos.GET("/status/:id", s.handleStatus)
	videos.GET("/download/:id", s.handleDownload(api.ArtifactVideo))
	videos.GET("/download-srt/:id", s.handleDownload(api.ArtifactCaptions))
	videos.GET("/all", s.handleList)
	videos.GET("/styles", s.handleStyles)
	videos.DELETE("/:id", s.handleDelete)
	return engine
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
}

func (s *apiServer) address() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": healthMessage, "status": "OK"})
}

func (s *apiServer) handleUpload(c *gin.Context) {
	if s.uploadLimit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.uploadLimit)
	}
	header, err := c.FormFile("video")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large"):
			s.writeError(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large (limit %d MB)", s.uploadLimit>>20))
		default:
			s.writeError(c, http.StatusBadRequest, "No video uploaded")
		}
		return
	}
	file, err := header.Open()
	if err != nil {
		s.writeError(c, http.StatusBadRequest, "No video uploaded")
		return
	}
	defer file.Close()

	result, err := s.jobs.Upload(c.Request.Context(), header.Filename, file)
	if err != nil {
		s.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": result})
}

func (s *apiServer) handleProcess(c *gin.Context) {
	var settings jobs.Settings
	if err := c.ShouldBindJSON(&settings); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(c, http.StatusBadRequest, "invalid settings: "+err.Error())
		return
	}
	if err := s.jobs.Process(c.Request.Context(), c.Param("id"), settings); err != nil {
		s.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Processing started"})
}

func (s *apiServer) handleStatus(c *gin.Context) {
	video, err := s.jobs.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": video})
}

func (s *apiServer) handleDownload(kind api.ArtifactKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		artifact, err := s.jobs.Artifact(c.Request.Context(), c.Param("id"), kind)
		if err != nil {
			s.writeServiceError(c, err)
			return
		}
		c.FileAttachment(artifact.Path, artifact.FileName)
	}
}

func (s *apiServer) handleList(c *gin.Context) {
	var statuses []jobs.Status
	for _, value := range c.QueryArray("status") {
		if status, ok := jobs.ParseStatus(value); ok {
			statuses = append(statuses, status)
		}
	}
	videos, err := s.jobs.List(c.Request.Context(), statuses...)
	if err != nil {
		s.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": videos})
}

func (s *apiServer) handleStyles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": api.StylePresets()})
}

func (s *apiServer) handleDelete(c *gin.Context) {
	if err := s.jobs.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Deleted"})
}

func (s *apiServer) writeServiceError(c *gin.Context, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			logging.String("route", c.FullPath()),
			logging.ErrorKind(err),
			logging.Error(err),
		)
	}
	s.writeError(c, status, err.Error())
}

func (s *apiServer) writeError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// requestLogger tags each request with a correlation id, echoed in
// X-Request-ID, so job service log lines can be traced to the request.
func (s *apiServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)
		c.Request = c.Request.WithContext(services.WithRequestID(c.Request.Context(), requestID))
		c.Next()
		logging.WithContext(c.Request.Context(), s.logger).Debug("request handled",
			logging.String("method", c.Request.Method),
			logging.String("path", c.Request.URL.Path),
			logging.Int("status", c.Writer.Status()),
			logging.Duration("elapsed", time.Since(start)),
		)
	}
}
