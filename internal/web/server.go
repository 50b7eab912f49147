package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/temidaradev/coinboard/internal/market"
	"github.com/temidaradev/coinboard/internal/present"
	"github.com/temidaradev/coinboard/internal/session"
)

// Server exposes one session's state over HTTP.
type Server struct {
	sess   *session.Session
	store  *session.Store
	log    zerolog.Logger
	engine *gin.Engine
}

func NewServer(sess *session.Session, allowOrigins []string, log zerolog.Logger) *Server {
	s := &Server{
		sess:  sess,
		store: sess.Store(),
		log:   log,
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	corsCfg := cors.DefaultConfig()
	if len(allowOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = allowOrigins
	}
	corsCfg.AllowMethods = []string{"GET", "PUT", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", s.health)
	api := r.Group("/api")
	{
		api.GET("/state", s.getState)
		api.GET("/tickers", s.getTickers)
		api.PUT("/filter", s.putFilter)
		api.PUT("/query", s.putQuery)
	}

	s.engine = r
	return s
}

func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("http view listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		began := time.Now()
		c.Next()
		s.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(began)).
			Msg("request")
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "session": s.sess.ID.String()})
}

func stateBody(st session.State) gin.H {
	return gin.H{
		"phase":      st.Phase,
		"is_loading": st.IsLoading,
		"error":      st.Error,
		"filter":     st.Filter,
		"query":      st.Query,
		"count":      len(st.Tickers),
		"updated_at": st.UpdatedAt,
	}
}

func (s *Server) getState(c *gin.Context) {
	c.JSON(http.StatusOK, stateBody(s.store.Snapshot()))
}

// getTickers answers with the derived list. q and filter override the
// session's query and filter for this request only.
func (s *Server) getTickers(c *gin.Context) {
	st := s.store.Snapshot()

	if q, ok := c.GetQuery("q"); ok {
		st.Query = q
	}
	if raw, ok := c.GetQuery("filter"); ok {
		f, err := market.ParseFilter(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		st.Filter = f
	}

	body := stateBody(st)
	body["tickers"] = present.Cards(st.Display())

	status := http.StatusOK
	if st.Phase == session.Failure {
		status = http.StatusBadGateway
	}
	c.JSON(status, body)
}

type filterRequest struct {
	Filter string `json:"filter" binding:"required"`
}

func (s *Server) putFilter(c *gin.Context) {
	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f, err := market.ParseFilter(req.Filter)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.store.SetFilter(f)
	c.JSON(http.StatusOK, stateBody(s.store.Snapshot()))
}

type queryRequest struct {
	Query string `json:"query"`
}

func (s *Server) putQuery(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.store.SetQuery(req.Query)
	c.JSON(http.StatusOK, stateBody(s.store.Snapshot()))
}
