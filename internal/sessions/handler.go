package sessions

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"calorievision-backend/internal/shared/server/middleware"
	"calorievision-backend/internal/shared/server/respond"
)

// multipartOverhead is the slack allowed on top of the image cap for form boundaries and headers.
const multipartOverhead = 64 << 10

// Handler wires HTTP handlers to the sessions service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches session routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sessions", h.createSession)
	rg.GET("/sessions/:id", h.getSession)
	rg.DELETE("/sessions/:id", h.deleteSession)
	rg.PUT("/sessions/:id/image", h.stageImage)
	rg.GET("/sessions/:id/image", h.getImage)
	rg.POST("/sessions/:id/analyze", h.analyze)
	rg.POST("/sessions/:id/retry", h.retry)
	rg.POST("/sessions/:id/reset", h.reset)
}

func (h *Handler) createSession(c *gin.Context) {
	session, err := h.Svc.Create(requestContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	middleware.SetSessionID(c, session.ID)
	respond.JSON(c, http.StatusCreated, session)
}

func (h *Handler) getSession(c *gin.Context) {
	id := c.Param("id")
	middleware.SetSessionID(c, id)
	session, err := h.Svc.Get(requestContext(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, session)
}

func (h *Handler) deleteSession(c *gin.Context) {
	id := c.Param("id")
	middleware.SetSessionID(c, id)
	if err := h.Svc.Delete(requestContext(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) stageImage(c *gin.Context) {
	id := c.Param("id")
	middleware.SetSessionID(c, id)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.Svc.maxImageBytes()+multipartOverhead)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(c, ErrImageTooLarge)
		case errors.Is(err, http.ErrMissingFile):
			respond.Error(c, http.StatusBadRequest, respond.CodeInvalidImage, MessageNoFile, gin.H{"field": "file"})
		default:
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "multipart form with a file field is required", gin.H{"field": "file"})
		}
		return
	}
	f, err := fh.Open()
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to read upload", nil)
		return
	}
	defer f.Close()

	session, previous, err := h.Svc.stageImage(requestContext(c), id, fh.Filename, f)
	if err != nil {
		writeError(c, err)
		return
	}
	middleware.SetStatusTransition(c, string(previous), string(session.State))
	respond.OK(c, session)
}

func (h *Handler) getImage(c *gin.Context) {
	id := c.Param("id")
	middleware.SetSessionID(c, id)
	rc, img, err := h.Svc.OpenImage(requestContext(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Type", img.MimeType)
	c.Header("Content-Length", strconv.FormatInt(img.SizeBytes, 10))
	c.Header("Cache-Control", "no-store")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, rc)
}

func (h *Handler) analyze(c *gin.Context) {
	h.startAnalysis(c, h.Svc.analyze)
}

func (h *Handler) retry(c *gin.Context) {
	h.startAnalysis(c, h.Svc.retry)
}

func (h *Handler) startAnalysis(c *gin.Context, run func(context.Context, string) (Session, State, error)) {
	id := c.Param("id")
	middleware.SetSessionID(c, id)
	session, previous, err := run(requestContext(c), id)
	if err != nil {
		writeStateError(c, err, session)
		return
	}
	middleware.SetStatusTransition(c, string(previous), string(session.State))
	respond.Accepted(c, session)
}

func (h *Handler) reset(c *gin.Context) {
	id := c.Param("id")
	middleware.SetSessionID(c, id)
	session, previous, err := h.Svc.reset(requestContext(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	middleware.SetStatusTransition(c, string(previous), string(session.State))
	respond.OK(c, session)
}

func requestContext(c *gin.Context) context.Context {
	return WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
}

func writeStateError(c *gin.Context, err error, session Session) {
	var details any
	if session.ID != "" {
		details = gin.H{"state": session.State}
	}
	switch {
	case errors.Is(err, ErrNoImage):
		respond.Error(c, http.StatusConflict, respond.CodeConflict, "No image is staged for this session.", details)
	case errors.Is(err, ErrAnalysisInProgress):
		respond.Error(c, http.StatusConflict, respond.CodeConflict, "An analysis is already running for this session.", details)
	case errors.Is(err, ErrInvalidTransition):
		respond.Error(c, http.StatusConflict, respond.CodeConflict, "This action is not available in the session's current state.", details)
	default:
		writeError(c, err)
	}
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "session not found", nil)
	case errors.Is(err, ErrImageTooLarge):
		respond.Error(c, http.StatusRequestEntityTooLarge, respond.CodeInvalidImage, MessageTooLarge, nil)
	case errors.Is(err, ErrUnsupportedImage):
		respond.Error(c, http.StatusUnsupportedMediaType, respond.CodeInvalidImage, MessageUnsupported, nil)
	case errors.Is(err, ErrEmptyImage):
		respond.Error(c, http.StatusBadRequest, respond.CodeInvalidImage, MessageEmptyImage, nil)
	case errors.Is(err, ErrInvalidImage):
		respond.Error(c, http.StatusBadRequest, respond.CodeInvalidImage, MessageUnsupported, nil)
	case errors.Is(err, ErrNoImage), errors.Is(err, ErrAnalysisInProgress), errors.Is(err, ErrInvalidTransition):
		writeStateError(c, err, Session{})
	default:
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "unexpected error", nil)
	}
}
