package statushttp

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"fadebot/internal/engine"
	"fadebot/internal/logger"
	"fadebot/internal/store"

	"github.com/gin-gonic/gin"
)

// Server 提供最小化的观测 HTTP 服务：周期状态、决策流水、已平仓交易与
// PnL 报表。只读，不影响扫描循环。
type Server struct {
	addr   string
	router *gin.Engine
}

func NewServer(addr string, eng *engine.Engine, journal *store.Journal) *Server {
	if addr == "" {
		addr = ":9985"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, eng.StatusSnapshot())
	})
	api.GET("/events", func(c *gin.Context) {
		if journal == nil {
			c.JSON(http.StatusOK, gin.H{"events": []any{}})
			return
		}
		events, err := journal.ListEvents(c.Request.Context(), queryLimit(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"events": events})
	})
	api.GET("/trades", func(c *gin.Context) {
		if journal == nil {
			c.JSON(http.StatusOK, gin.H{"trades": []any{}})
			return
		}
		trades, err := journal.ListClosedTrades(c.Request.Context(), queryLimit(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"trades": trades})
	})
	router.GET("/report", func(c *gin.Context) {
		renderReport(c, journal)
	})

	return &Server{addr: addr, router: router}
}

func queryLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || n <= 0 {
		return 100
	}
	return n
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debugf("HTTP %s %s status=%d dur=%s",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// Start runs the HTTP server until ctx is cancelled or it fails.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
