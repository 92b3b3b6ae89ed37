// Package receiver is the screen side of the event stream: it applies
// incoming events to a screen model and serves the result.
package receiver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/danmuck/himdisplay/internal/config"
	"github.com/danmuck/himdisplay/internal/discovery"
	"github.com/danmuck/himdisplay/internal/observability"
	"github.com/danmuck/himdisplay/internal/protocol/event"
	"github.com/danmuck/himdisplay/internal/protocol/stream"
	"github.com/danmuck/himdisplay/internal/screen"
)

const maxBodyBytes = 1 << 20

var ErrEmptyBody = errors.New("receiver: empty body")

// Server serves one Screen over HTTP and the stream transport.
type Server struct {
	cfg     config.ScreenConfig
	screen  *Screen
	router  *gin.Engine
	logger  zerolog.Logger
	started time.Time
}

func New(cfg config.ScreenConfig, logger zerolog.Logger) *Server {
	observability.RegisterMetrics()
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(logger))
	r.Use(observability.RequestMetricsMiddleware(cfg.Name))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.CorsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		cfg:     cfg,
		screen:  NewScreen(cfg.History),
		router:  r,
		logger:  logger,
		started: time.Now(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) Screen() *Screen {
	return s.screen
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "himd screen receiver running\n")
	})
	s.router.POST("/", s.postEvents)
	s.router.POST("/events", s.postEvents)
	s.router.GET("/events", func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.Query("limit"))
		c.JSON(http.StatusOK, gin.H{"events": s.screen.History(limit)})
	})
	s.router.GET("/state", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"state": s.screen.State(),
			"stats": s.screen.Stats(),
		})
	})
	s.router.GET("/screen", func(c *gin.Context) {
		c.String(http.StatusOK, screen.Render(s.screen.State()))
	})
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.started).String(),
			"service": s.cfg.Name,
		})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// postEvents accepts one envelope or a JSON array of envelopes.
func (s *Server) postEvents(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	envs, err := decodeBody(body)
	if err != nil {
		s.screen.reject()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	for _, env := range envs {
		s.apply(env, "http")
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "applied": len(envs)})
}

func decodeBody(body []byte) ([]event.Envelope, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, ErrEmptyBody
	}
	if body[0] != '[' {
		env, err := event.Unmarshal(body)
		if err != nil {
			return nil, err
		}
		return []event.Envelope{env}, nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	out := make([]event.Envelope, 0, len(raw))
	for _, item := range raw {
		env, err := event.Unmarshal(item)
		if err != nil {
			return nil, err
		}
		out = append(out, env)
	}
	return out, nil
}

func (s *Server) apply(env event.Envelope, source string) {
	res := s.screen.Apply(env)
	observability.RecordEvent("received", string(env.Event.Kind()))
	if res.Restart {
		s.logger.Info().Str("source", source).Str("stream", env.Stream).Msg("producer stream restarted")
	}
	if res.Missing > 0 {
		observability.RecordSequenceGap(source, res.Missing)
		s.logger.Warn().
			Str("source", source).
			Str("stream", env.Stream).
			Uint64("seq", env.Seq).
			Uint64("missing", res.Missing).
			Msg("sequence gap")
	}
}

// ServeStream accepts stream transport connections on ln until ctx ends.
func (s *Server) ServeStream(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		go s.handleStream(ctx, conn)
	}
}

func (s *Server) handleStream(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	closed := make(chan struct{})
	defer close(closed)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-closed:
		}
	}()
	peer := conn.RemoteAddr().String()
	s.logger.Debug().Str("peer", peer).Msg("stream connected")
	limits := stream.DefaultLimits()
	for {
		msg, err := stream.ReadMessage(conn, limits)
		if err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				s.logger.Warn().Err(err).Str("peer", peer).Msg("stream read failed")
			}
			return
		}
		env, err := stream.DecodeEnvelope(msg)
		if err != nil {
			s.screen.reject()
			s.logger.Warn().Err(err).Str("peer", peer).Uint64("seq", msg.Header.Seq).Msg("stream message rejected")
			continue
		}
		s.apply(env, "stream")
	}
}

// Run serves HTTP, the stream listener and the mDNS advertisement until ctx
// ends or one of them fails.
func (s *Server) Run(ctx context.Context) error {
	httpLn, err := net.Listen("tcp", s.cfg.HTTPAddr)
	if err != nil {
		return err
	}
	var streamLn net.Listener
	if s.cfg.StreamAddr != "" {
		streamLn, err = net.Listen("tcp", s.cfg.StreamAddr)
		if err != nil {
			_ = httpLn.Close()
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	srv := &http.Server{Handler: s.router, ReadHeaderTimeout: 5 * time.Second}

	g.Go(func() error {
		s.logger.Info().Str("addr", httpLn.Addr().String()).Msg("http receiver listening")
		if err := srv.Serve(httpLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if streamLn != nil {
		g.Go(func() error {
			s.logger.Info().Str("addr", streamLn.Addr().String()).Msg("stream receiver listening")
			return s.ServeStream(ctx, streamLn)
		})
	}
	if s.cfg.Discovery.Enabled {
		g.Go(func() error {
			adv := discovery.Advertisement{
				Instance:   s.cfg.Discovery.Instance,
				Domain:     s.cfg.Discovery.Domain,
				HTTPPort:   listenerPort(httpLn),
				EventsPath: "/events",
			}
			if streamLn != nil {
				adv.StreamPort = listenerPort(streamLn)
			}
			mdns, err := discovery.Advertise(adv)
			if err != nil {
				s.logger.Warn().Err(err).Msg("mdns advertisement unavailable")
				return nil
			}
			s.logger.Info().Str("service", discovery.Service).Str("instance", adv.Instance).Msg("mdns registered")
			<-ctx.Done()
			mdns.Shutdown()
			return nil
		})
	}
	return g.Wait()
}

func listenerPort(ln net.Listener) int {
	if addr, ok := ln.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return 0
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
