package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"ai_news_agent/config"
	"ai_news_agent/generator"
	"ai_news_agent/publisher"
)

// Generator produces one article per topic.
type Generator interface {
	Generate(ctx context.Context, topic string) (generator.Article, error)
}

type Server struct {
	gen     Generator
	cfg     config.ServerConfig
	limiter *rate.Limiter
	logger  zerolog.Logger
}

func New(gen Generator, cfg config.ServerConfig) (*Server, error) {
	if gen == nil {
		return nil, errors.New("generator required")
	}
	s := &Server{gen: gen, cfg: cfg, logger: log.Logger}
	if cfg.RateLimitRPM > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(float64(cfg.RateLimitRPM)/60.0), cfg.RateLimitRPM)
	}
	return s, nil
}

func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), s.accessLog())
	if len(s.cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: s.cfg.AllowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{"Origin", "Content-Type", headerRequestID},
		}))
	}

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	gen := r.Group("/generate", s.rateLimit())
	gen.POST("", s.handleGenerate)
	gen.POST("/markdown", s.handleRender(publisher.FormatMarkdown))
	gen.POST("/html", s.handleRender(publisher.FormatHTML))
	return r
}

// --- Handlers ---

type generateReq struct {
	Topic string `json:"topic" binding:"required"`
}

type errorResp struct {
	Detail string `json:"detail"`
}

func (s *Server) handleGenerate(c *gin.Context) {
	art, ok := s.generate(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, art)
}

func (s *Server) handleRender(format publisher.Format) gin.HandlerFunc {
	contentType := "text/markdown; charset=utf-8"
	if format == publisher.FormatHTML {
		contentType = "text/html; charset=utf-8"
	}
	return func(c *gin.Context) {
		art, ok := s.generate(c)
		if !ok {
			return
		}
		body, err := publisher.Render(art, format)
		if err != nil {
			abortDetail(c, http.StatusInternalServerError, err.Error())
			return
		}
		c.Data(http.StatusOK, contentType, []byte(body))
	}
}

// generate validates the request and runs the pipeline; on failure it has
// already written the error response.
func (s *Server) generate(c *gin.Context) (generator.Article, bool) {
	var req generateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, validationDetail(err))
		return generator.Article{}, false
	}
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		abortDetail(c, http.StatusBadRequest, "topic must not be empty")
		return generator.Article{}, false
	}

	// A client hanging up does not abort model calls already in flight;
	// per-stage timeouts bound them instead.
	ctx := context.WithoutCancel(c.Request.Context())
	art, err := s.gen.Generate(ctx, topic)
	if err != nil {
		loggerFrom(c).Error().Err(err).Str("topic", topic).Msg("generate failed")
		abortDetail(c, http.StatusInternalServerError, err.Error())
		return generator.Article{}, false
	}
	if art.Sections == nil {
		art.Sections = []generator.Section{}
	}
	return art, true
}

// --- Helpers ---

func abortDetail(c *gin.Context, code int, detail string) {
	c.AbortWithStatusJSON(code, errorResp{Detail: detail})
}

func validationDetail(err error) string {
	if strings.Contains(err.Error(), "'required'") {
		return "topic is required"
	}
	return "invalid request body: " + err.Error()
}
