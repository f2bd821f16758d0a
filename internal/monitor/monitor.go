package monitor

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Triple-C-BE/wimood/internal/syncer"
)

// Status is the shared last-cycle snapshot the sync loops write and the
// monitor server reads.
type Status struct {
	mu sync.RWMutex

	startedAt time.Time

	productCycles  int
	lastProducts   syncer.ProductResults
	lastProductRun time.Time
	lastProductErr string

	orderCycles  int
	lastOrders   syncer.OrderResults
	lastOrderRun time.Time
	lastOrderErr string
}

func NewStatus() *Status {
	return &Status{startedAt: time.Now()}
}

// RecordProductCycle stores the outcome of a product sync cycle.
func (s *Status) RecordProductCycle(results syncer.ProductResults, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.productCycles++
	s.lastProducts = results
	s.lastProductRun = time.Now()
	s.lastProductErr = ""
	if err != nil {
		s.lastProductErr = err.Error()
	}
}

// RecordOrderCycle stores the outcome of an order sync cycle.
func (s *Status) RecordOrderCycle(results syncer.OrderResults, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orderCycles++
	s.lastOrders = results
	s.lastOrderRun = time.Now()
	s.lastOrderErr = ""
	if err != nil {
		s.lastOrderErr = err.Error()
	}
}

func (s *Status) snapshot() gin.H {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := gin.H{
		"uptime_seconds": int(time.Since(s.startedAt).Seconds()),
	}

	if s.productCycles > 0 {
		out["products"] = gin.H{
			"cycles":           s.productCycles,
			"last_run":         s.lastProductRun.UTC().Format(time.RFC3339),
			"duration_seconds": s.lastProducts.Duration.Seconds(),
			"created":          s.lastProducts.Created,
			"updated":          s.lastProducts.Updated,
			"skipped":          s.lastProducts.Skipped,
			"deactivated":      s.lastProducts.Deactivated,
			"errors":           s.lastProducts.Errors,
			"last_error":       s.lastProductErr,
		}
	}
	if s.orderCycles > 0 {
		out["orders"] = gin.H{
			"cycles":           s.orderCycles,
			"last_run":         s.lastOrderRun.UTC().Format(time.RFC3339),
			"duration_seconds": s.lastOrders.Duration.Seconds(),
			"new":              s.lastOrders.New,
			"submitted":        s.lastOrders.Submitted,
			"in_progress":      s.lastOrders.InProgress,
			"fulfilled":        s.lastOrders.Fulfilled,
			"delivered":        s.lastOrders.Delivered,
			"cancelled":        s.lastOrders.Cancelled,
			"polled":           s.lastOrders.Polled,
			"errors":           s.lastOrders.Errors,
			"last_error":       s.lastOrderErr,
		}
	}
	return out
}

// Server exposes the sync status over HTTP for ops checks.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer creates the monitor server listening on the given port.
func NewServer(port string, environment string, status *Status, logger *zap.Logger) *Server {
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(customRecovery(logger))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Wimood Sync",
			"endpoints": []string{
				"GET /health",
				"GET /status",
			},
		})
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, status.snapshot())
	})

	return &Server{
		httpServer: &http.Server{
			Addr:    ":" + port,
			Handler: router,
		},
		logger: logger,
	}
}

// Start serves until Shutdown is called. Run it on its own goroutine.
func (s *Server) Start() error {
	s.logger.Info("Monitor server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal server error",
			"details": fmt.Sprintf("%v", recovered),
		})
	})
}
