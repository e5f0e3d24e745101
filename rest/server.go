package rest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/purechat/purechat-server/archive"
	"github.com/purechat/purechat-server/filter"
	"github.com/purechat/purechat-server/image"
)

const shutdownTimeout = 5 * time.Second

// Server exposes the filter over HTTP. A nil archive disables the
// quarantine of flagged images.
type Server struct {
	log     *zap.Logger
	filter  *filter.Filter
	archive archive.Store
	router  *gin.Engine
}

func NewServer(log *zap.Logger, f *filter.Filter, quarantine archive.Store) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	s := &Server{
		log:     log,
		filter:  f,
		archive: quarantine,
		router:  router,
	}

	router.Use(s.logRequests())

	api := router.Group("/api")
	api.POST("/filter", s.handleFilter)
	api.POST("/check", s.handleCheck)
	api.POST("/check-image", s.handleCheckImage)
	api.GET("/health", s.handleHealth)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Endpoint not found"})
	})

	return s
}

// Handler returns the underlying HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until the context is cancelled, then drains in-flight
// requests for up to five seconds.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.log.Debug("handled request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

type filterRequest struct {
	Text      *string  `json:"text"`
	Mode      *string  `json:"mode"`
	Threshold *float64 `json:"threshold"`
}

type filterResponse struct {
	filter.FilterResult
	Mode filter.Mode `json:"mode"`
}

func (s *Server) handleFilter(c *gin.Context) {
	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required field: text"})
		return
	}

	var opts []filter.Option
	if req.Mode != nil {
		opts = append(opts, filter.WithMode(filter.Mode(*req.Mode)))
	}
	if req.Threshold != nil {
		opts = append(opts, filter.WithThreshold(*req.Threshold))
	}

	result, err := s.filter.Filter(c.Request.Context(), *req.Text, opts...)
	if err != nil {
		s.renderError(c, err)
		return
	}

	applied := filter.ApplyOptions(s.filter.Defaults(), opts...)
	c.JSON(http.StatusOK, filterResponse{
		FilterResult: *result,
		Mode:         applied.Mode,
	})
}

type checkRequest struct {
	Text *string `json:"text"`
}

type checkResponse struct {
	filter.Verdict
	Text string `json:"text"`
}

func (s *Server) handleCheck(c *gin.Context) {
	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required field: text"})
		return
	}

	verdict, err := s.filter.IsProfane(c.Request.Context(), *req.Text)
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, checkResponse{
		Verdict: *verdict,
		Text:    *req.Text,
	})
}

type checkImageResponse struct {
	filter.ImageVerdict
	Image *image.Info `json:"image"`
}

func (s *Server) handleCheckImage(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required field: image"})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded image"})
		return
	}
	defer file.Close()

	// One extra byte so oversized uploads trip the size check instead of
	// arriving silently truncated.
	data, err := io.ReadAll(io.LimitReader(file, image.MaxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded image"})
		return
	}

	format, err := image.Validate(data)
	if err != nil {
		s.renderError(c, err)
		return
	}

	verdict, err := s.filter.CheckImage(c.Request.Context(), data)
	if err != nil {
		s.renderError(c, err)
		return
	}

	info, err := image.Process(data)
	if err != nil {
		s.renderError(c, err)
		return
	}

	s.log.Debug("image checked",
		zap.String("format", format),
		zap.Bool("is_profane", verdict.IsProfane),
	)

	if verdict.IsProfane {
		s.quarantine(c.Request.Context(), data)
	}

	c.JSON(http.StatusOK, checkImageResponse{
		ImageVerdict: *verdict,
		Image:        info,
	})
}

// Quarantine failures are logged and never fail the request. The caller
// already has their verdict; archival is for the audit trail.
func (s *Server) quarantine(ctx context.Context, data []byte) {
	if s.archive == nil {
		return
	}

	key := uuid.New().String()
	if err := s.archive.Put(ctx, key, data); err != nil {
		s.log.Warn("failed to archive flagged image", zap.Error(err))
		return
	}
	s.log.Info("archived flagged image", zap.String("key", key))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"model_loaded": true,
	})
}

func (s *Server) renderError(c *gin.Context, err error) {
	var ce *filter.ClassificationError

	switch {
	case errors.Is(err, filter.ErrEmptyText):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Text cannot be empty"})
	case errors.Is(err, filter.ErrUnknownMode):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid mode. Must be one of: full, word, aggressive"})
	case errors.Is(err, filter.ErrThresholdOutOfRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Threshold must be between 0 and 1"})
	case errors.Is(err, image.ErrEmptyImage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image cannot be empty"})
	case errors.Is(err, image.ErrTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image exceeds the 16MB upload limit"})
	case errors.Is(err, image.ErrUnsupportedFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported image type. Must be one of: png, jpeg, gif, bmp, webp"})
	case errors.As(err, &ce):
		s.log.Warn("classification failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Classification service unavailable"})
	default:
		s.log.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
