// Package server exposes mask rendering and shape validation over HTTP.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"image-labeler/internal/annotation"
	"image-labeler/internal/cache"
	"image-labeler/internal/config"
	"image-labeler/internal/imageio"
	"image-labeler/internal/logging"
	"image-labeler/internal/raster"
	"image-labeler/internal/version"
	"image-labeler/pkg/colorutil"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	cfg    config.ServerConfig
	export config.ExportConfig
	cache  *cache.MaskCache
	logger *zap.Logger
	engine *gin.Engine
}

// New builds the router. mc may be nil to disable caching.
func New(cfg *config.Config, mc *cache.MaskCache) *Server {
	gin.SetMode(cfg.Server.Mode)

	s := &Server{
		cfg:    cfg.Server,
		export: cfg.Export,
		cache:  mc,
		logger: logging.Named("server"),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(s.logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": version.Version,
			"cache":   s.cacheStatus(c.Request.Context()),
		})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    version.Version,
			"build_time": version.BuildTime,
			"git_commit": version.GitCommit,
		})
	})

	api := r.Group("/api/v1")
	{
		api.POST("/mask", s.handleMask)
		api.POST("/validate", s.handleValidate)
	}

	s.engine = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("server stopping")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) cacheStatus(ctx context.Context) string {
	if s.cache == nil {
		return "disabled"
	}
	if err := s.cache.Ping(ctx); err != nil {
		return "unreachable"
	}
	return "ok"
}

func (s *Server) handleMask(c *gin.Context) {
	var req MaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid mask request", err)
		return
	}
	limit := min(s.cfg.MaxPixels, raster.MaxPixels)
	if req.Width <= 0 || req.Height <= 0 || req.Width > limit/req.Height {
		badRequest(c, fmt.Sprintf("image size %dx%d out of range", req.Width, req.Height), nil)
		return
	}

	ctx := c.Request.Context()
	snap := annotation.Snapshot{Boxes: req.Boxes, Polygons: req.Polygons}

	formatName := c.Query("format")
	if formatName == "json" {
		m, err := raster.BuildSnapshot(ctx, req.Width, req.Height, snap)
		if err != nil {
			s.internalError(c, "rasterize", err)
			return
		}
		resp := MaskResponse{Width: m.Width, Height: m.Height, Rows: make([][]int, m.Height)}
		for y := range resp.Rows {
			resp.Rows[y] = m.Row(y)
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	format := imageio.Format(s.export.Format)
	if formatName != "" {
		f, err := imageio.ParseFormat(formatName)
		if err != nil {
			badRequest(c, "unsupported format", err)
			return
		}
		format = f
	}

	palette, err := s.palette(req.Labels)
	if err != nil {
		badRequest(c, "invalid label color", err)
		return
	}

	key, err := cache.Key(struct {
		Req     MaskRequest
		Format  imageio.Format
		Quality int
		Auto    bool
	}{req, format, s.export.Quality, s.export.AutoColors})
	if err != nil {
		s.internalError(c, "cache key", err)
		return
	}

	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key); err == nil && data != nil {
			c.Header("X-Cache", "hit")
			c.Data(http.StatusOK, format.ContentType(), data)
			return
		}
	}

	m, err := raster.BuildSnapshot(ctx, req.Width, req.Height, snap)
	if err != nil {
		s.internalError(c, "rasterize", err)
		return
	}
	var buf bytes.Buffer
	if err := imageio.Encode(&buf, raster.Colorize(m, palette), format, s.export.Quality); err != nil {
		s.internalError(c, "encode", err)
		return
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, buf.Bytes()); err != nil {
			s.logger.Warn("mask not cached", zap.Error(err))
		}
	}

	c.Header("X-Cache", "miss")
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

func (s *Server) handleValidate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid validate request", err)
		return
	}

	var resp ValidateResponse
	switch req.Kind {
	case "box":
		if b, ok := annotation.ParseBox(req.Text); ok {
			resp.Valid = true
			resp.Box = &b
		}
	case "poly":
		if p, ok := annotation.ParsePolygon(req.Text); ok {
			resp.Valid = true
			resp.Poly = &p
		}
	}
	c.JSON(http.StatusOK, resp)
}

// palette builds label ids 1..n from specs. Labels without a color get one
// generated when two or more are uncolored or auto colors are on.
func (s *Server) palette(specs []LabelSpec) (*annotation.Palette, error) {
	p := annotation.NewPalette()
	for _, l := range specs {
		if l.Color == "" {
			p.Add(l.Name)
			continue
		}
		col, err := colorutil.ParseARGB(l.Color)
		if err != nil {
			return nil, fmt.Errorf("label %q: %w", l.Name, err)
		}
		p.AddWithColor(l.Name, col)
	}
	if s.export.AutoColors || p.NeedsGeneratedColors() {
		p.GenerateColors()
	}
	return p, nil
}

func badRequest(c *gin.Context, msg string, err error) {
	resp := ErrorResponse{Success: false, Message: msg}
	if err != nil {
		resp.Error = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}

func (s *Server) internalError(c *gin.Context, op string, err error) {
	s.logger.Error("mask request failed", zap.String("op", op), zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Success: false, Message: op + " failed", Error: err.Error()})
}
