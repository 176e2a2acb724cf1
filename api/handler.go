package api

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/voicemap/errors"
	"github.com/kbukum/voicemap/explorer"
	"github.com/kbukum/voicemap/logger"
	"github.com/kbukum/voicemap/server"
)

// UploadResponse is returned by POST /api/upload.
type UploadResponse struct {
	Status       string `json:"status"`
	MediaKey     string `json:"media_key"`
	SessionID    string `json:"session_id"`
	SessionToken string `json:"session_token"`
}

// StatusResponse acknowledges a write to one entry.
type StatusResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

// ReclusterRequest is the body of POST /api/recluster. A missing body or
// num_clusters uses the default cluster count.
type ReclusterRequest struct {
	NumClusters int `json:"num_clusters"`
}

// Handler serves the explorer routes.
type Handler struct {
	svc    *explorer.Service
	tokens *Tokens
	log    *logger.Logger
}

// NewHandler creates a handler backed by svc.
func NewHandler(svc *explorer.Service, tokens *Tokens, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Get("api")
	}
	return &Handler{svc: svc, tokens: tokens, log: log.WithComponent("api")}
}

// RegisterRoutes mounts the explorer routes under /api.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/api")
	g.POST("/upload", h.Upload)
	g.POST("/diarize", h.Diarize)
	g.POST("/extract-segment", h.ExtractSegment)
	g.GET("/compute-pca", h.ComputeProjection)
	g.POST("/recluster", h.Recluster)
	g.GET("/embeddings", h.Embeddings)
}

// Upload accepts a multipart recording in "audio" and the provider
// credential in "token", and starts a fresh session for it.
func (h *Handler) Upload(c *gin.Context) {
	fh, err := c.FormFile("audio")
	if err != nil {
		server.RespondWithError(c, apperrors.MissingField("audio"))
		return
	}
	token := c.PostForm("token")
	if token == "" {
		server.RespondWithError(c, apperrors.MissingField("token"))
		return
	}

	file, err := fh.Open()
	if err != nil {
		server.RespondWithError(c, apperrors.InvalidInput("audio", err.Error()))
		return
	}
	defer file.Close()

	res, err := h.svc.Upload(c.Request.Context(), explorer.UploadInput{
		Name:  fh.Filename,
		Token: token,
		Size:  fh.Size,
		Body:  file,
	})
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	signed, err := h.tokens.Issue(c, res.SessionID)
	if err != nil {
		server.RespondWithError(c, apperrors.Internal(err))
		return
	}
	h.log.WithContext(c.Request.Context()).Info("session started", logger.Fields(
		logger.FieldSessionID, res.SessionID,
		"file", fh.Filename,
		"size", fh.Size,
	))
	server.RespondOK(c, UploadResponse{
		Status:       "ok",
		MediaKey:     res.MediaRef,
		SessionID:    res.SessionID,
		SessionToken: signed,
	})
}

// Diarize runs speaker diarization on the session's recording.
func (h *Handler) Diarize(c *gin.Context) {
	res, err := h.svc.Diarize(c.Request.Context(), h.tokens.Resolve(c))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, res)
}

// ExtractSegment computes and stores the voiceprint of one segment.
func (h *Handler) ExtractSegment(c *gin.Context) {
	var in explorer.SegmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		server.RespondWithError(c, apperrors.InvalidInput("body", err.Error()))
		return
	}
	entry, err := h.svc.ExtractSegment(c.Request.Context(), h.tokens.Resolve(c), in)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, StatusResponse{Status: "ok", ID: entry.ID})
}

// ComputeProjection lays the session's entries out on a plane.
func (h *Handler) ComputeProjection(c *gin.Context) {
	points, err := h.svc.Project(c.Request.Context(), h.tokens.Resolve(c))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, points)
}

// Recluster regroups the session's entries and relabels their speakers.
func (h *Handler) Recluster(c *gin.Context) {
	var req ReclusterRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		server.RespondWithError(c, apperrors.InvalidInput("body", err.Error()))
		return
	}
	mapping, err := h.svc.Recluster(c.Request.Context(), h.tokens.Resolve(c), req.NumClusters)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, mapping)
}

// Embeddings lists the session's entries without their vectors.
func (h *Handler) Embeddings(c *gin.Context) {
	entries, err := h.svc.Embeddings(c.Request.Context(), h.tokens.Resolve(c))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, entries)
}
