package receiver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/danmuck/tcpevents/internal/auth"
	logs "github.com/danmuck/tcpevents/internal/logging"
	"github.com/danmuck/tcpevents/internal/observability"
	"github.com/danmuck/tcpevents/internal/protocol/literal"
)

const adminShutdownTimeout = 5 * time.Second

// AdminConfig configures the HTTP admin surface.
type AdminConfig struct {
	Addr string
	// Token guards the data routes when set; health and metrics stay open.
	Token       string
	CORSOrigins []string
}

// Admin serves health, metrics and stored-data retrieval over HTTP.
type Admin struct {
	svc      *Service
	cfg      AdminConfig
	router   *gin.Engine
	appeared time.Time
}

func NewAdmin(svc *Service, cfg AdminConfig, logger zerolog.Logger) *Admin {
	observability.RegisterMetrics()
	node := svc.Config().Node
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(node, logger))
	r.Use(observability.RequestMetricsMiddleware(node))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.CORSOrigins),
		AllowMethods: []string{"GET"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	a := &Admin{svc: svc, cfg: cfg, router: r, appeared: time.Now()}
	a.registerRoutes()
	return a
}

func (a *Admin) Handler() http.Handler {
	return a.router
}

func (a *Admin) registerRoutes() {
	a.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"uptime":      time.Since(a.appeared).String(),
			"service":     a.svc.Config().Node,
			"connections": a.svc.ActiveConnections(),
		})
	})

	a.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	data := a.router.Group("/data")
	if token := strings.TrimSpace(a.cfg.Token); token != "" {
		data.Use(requireToken(auth.AdminToken(token)))
	}
	data.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"names": a.svc.Store().Names()})
	})
	data.GET("/:name", func(c *gin.Context) {
		name := c.Param("name")
		v, ok := a.svc.GetData(name)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found", "name": name})
			return
		}
		encoded, err := literal.Encode(v)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "name": name})
			return
		}
		c.JSON(http.StatusOK, gin.H{"name": name, "literal": encoded})
	})
}

func requireToken(v auth.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := auth.BearerToken(c.GetHeader("Authorization"))
		if !ok || v.Validate(token) != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrUnauthorized.Error()})
			return
		}
		c.Next()
	}
}

// Serve runs the admin server on ln until ctx is done.
func (a *Admin) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	logs.Infof("receiver.Admin.Serve listening addr=%q", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), adminShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

// Run listens on the configured admin address.
func (a *Admin) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Addr)
	if err != nil {
		return err
	}
	return a.Serve(ctx, ln)
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
