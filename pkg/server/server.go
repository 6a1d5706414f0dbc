// Package server exposes the report agent over HTTP.
package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Protocol-Lattice/growth-report/pkg/datauri"
	"github.com/Protocol-Lattice/growth-report/pkg/modality"
	"github.com/Protocol-Lattice/growth-report/pkg/prompt"
	"github.com/Protocol-Lattice/growth-report/pkg/report"
)

const (
	EndPointHealth  = "/health"
	EndPointReports = "/api/reports"

	HeaderRequestID    = "X-Request-ID"
	HeaderReportStatus = "X-Report-Status"

	// DefaultMaxImageBytes bounds an uploaded image.
	DefaultMaxImageBytes = 10 << 20
	// formOverhead is the body allowance for text fields and multipart framing.
	formOverhead = 1 << 20
	// multipartMemory is how much of a parsed form is kept in memory.
	multipartMemory = 32 << 20

	loggerKey = "logger"
)

type Server struct {
	agent         *report.Agent
	logger        log.Interface
	maxImageBytes int64
}

type Option func(*Server)

func WithLogger(l log.Interface) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithMaxImageBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxImageBytes = n
		}
	}
}

func New(agent *report.Agent, opts ...Option) *Server {
	s := &Server{agent: agent, logger: log.Log, maxImageBytes: DefaultMaxImageBytes}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router returns the gin engine serving the report endpoints.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestID)

	router.GET(EndPointHealth, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.POST(EndPointReports, s.createReport)
	return router
}

func (s *Server) requestID(c *gin.Context) {
	id := uuid.NewString()
	c.Header(HeaderRequestID, id)
	c.Set(loggerKey, s.logger.WithField("request_id", id))
	c.Next()
}

func requestLogger(c *gin.Context) log.Interface {
	if l, ok := c.Get(loggerKey); ok {
		if li, ok := l.(log.Interface); ok {
			return li
		}
	}
	return log.Log
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func (s *Server) createReport(c *gin.Context) {
	logger := requestLogger(c)

	if status, err := s.parseForm(c); err != nil {
		logger.WithError(err).Warn("rejecting request body")
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	description := strings.TrimSpace(c.PostForm("description"))
	if name == "" {
		badRequest(c, "name is required")
		return
	}
	if description == "" {
		badRequest(c, "description is required")
		return
	}
	variant, err := prompt.ParseVariant(c.PostForm("variant"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	imageURI, status, err := s.readImage(c)
	if err != nil {
		logger.WithError(err).Warn("rejecting image upload")
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	req := report.Request{
		SubjectName:     name,
		Description:     description,
		ImageAnalysis:   modality.Absent(),
		AudioTranscript: modality.Present(c.PostForm("audio_transcript")),
	}

	ctx := c.Request.Context()
	var (
		body   any
		failed bool
	)
	switch variant {
	case prompt.CareerPlan:
		plan := s.agent.GenerateCareerPlan(ctx, req, imageURI)
		body, failed = plan, plan.Failed()
	default:
		res := s.agent.Generate(ctx, req, imageURI)
		body, failed = res, res.Failed()
	}

	entry := logger.WithFields(log.Fields{"subject": name, "variant": variant.String(), "image": imageURI != ""})
	if failed {
		c.Header(HeaderReportStatus, "fallback")
		entry.Warn("served fallback report")
	} else {
		c.Header(HeaderReportStatus, "ok")
		entry.Info("served report")
	}
	c.JSON(http.StatusOK, body)
}

var (
	errImageTooLarge = errors.New("image exceeds the upload limit")
	errBodyTooLarge  = errors.New("request body exceeds the upload limit")
)

// parseForm bounds the body before it is read so an oversized upload is never spooled
// in full.
func (s *Server) parseForm(c *gin.Context) (int, error) {
	limit := s.maxImageBytes + formOverhead
	if c.Request.ContentLength > limit {
		return http.StatusRequestEntityTooLarge, errBodyTooLarge
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	err := c.Request.ParseMultipartForm(multipartMemory)
	var tooLarge *http.MaxBytesError
	switch {
	case err == nil, errors.Is(err, http.ErrNotMultipart):
		return http.StatusOK, nil
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, errBodyTooLarge
	default:
		return http.StatusBadRequest, err
	}
}

// readImage returns the optional uploaded image as a data URI. An image whose media
// type cannot be inferred is dropped and the report is generated without it.
func (s *Server) readImage(c *gin.Context) (string, int, error) {
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", http.StatusOK, nil
	}
	if err != nil {
		return "", http.StatusBadRequest, err
	}
	if fh.Size > s.maxImageBytes {
		return "", http.StatusRequestEntityTooLarge, errImageTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return "", http.StatusBadRequest, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.maxImageBytes+1))
	if err != nil {
		return "", http.StatusBadRequest, err
	}
	if int64(len(data)) > s.maxImageBytes {
		return "", http.StatusRequestEntityTooLarge, errImageTooLarge
	}
	if len(data) == 0 {
		return "", http.StatusOK, nil
	}

	uri, ok := datauri.EncodeBytes(fh.Filename, data)
	if !ok {
		return "", http.StatusOK, nil
	}
	return uri, http.StatusOK, nil
}
