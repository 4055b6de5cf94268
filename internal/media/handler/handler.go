package handler

import (
	"errors"
	"net/http"
	"strings"

	"educare/internal/media/repository"
	"educare/internal/media/service"
	"educare/internal/media/transport"
	"educare/platform/httpkit"
	"educare/platform/query"
	"educare/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidFile      = "invalid file upload"

	// multipartOverhead leaves room for form fields next to the file part.
	multipartOverhead = 1 << 20
)

// Handler handles HTTP requests for media resources.
type Handler struct {
	svc       *service.Service
	val       *validator.Validator
	maxUpload int64
}

// New creates a new media handler.
func New(svc *service.Service, val *validator.Validator, maxUpload int64) *Handler {
	return &Handler{svc: svc, val: val, maxUpload: maxUpload}
}

// List returns a page of resources.
// GET /api/v1/resources
func (h *Handler) List(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	spec := query.Parse(c.Request.URL.Query(), repository.ListConfig)
	result, err := h.svc.List(c.Request.Context(), identity, spec)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.List(c, result.Items, result.Pagination)
}

// Get returns one resource and counts the view.
// GET /api/v1/resources/:id
func (h *Handler) Get(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := httpkit.ParamUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.svc.View(c.Request.Context(), identity, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Create stores a new resource from JSON or multipart form data.
// POST /api/v1/resources
func (h *Handler) Create(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.CreateResourceRequest
	file, closeFile, ok := h.bind(c, &req)
	if !ok {
		return
	}
	defer closeFile()

	result, err := h.svc.Create(c.Request.Context(), identity, req, file)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// Update changes a resource, optionally replacing its file.
// PUT /api/v1/resources/:id
func (h *Handler) Update(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := httpkit.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req transport.UpdateResourceRequest
	file, closeFile, ok := h.bind(c, &req)
	if !ok {
		return
	}
	defer closeFile()

	result, err := h.svc.Update(c.Request.Context(), identity, id, req, file)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Delete removes a resource and its file.
// DELETE /api/v1/resources/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := httpkit.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}
	httpkit.Message(c, http.StatusOK, "media resource deleted")
}

// Download returns a presigned URL for the resource's file.
// GET /api/v1/resources/:id/file
func (h *Handler) Download(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := httpkit.ParamUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.svc.DownloadURL(c.Request.Context(), identity, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Speak proxies a text-to-speech request.
// POST /api/v1/resources/tts
func (h *Handler) Speak(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.TTSRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	result, err := h.svc.Speak(c.Request.Context(), identity, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// bind decodes dst from JSON or multipart form data and returns the
// optional file part. The returned close func is always safe to call.
func (h *Handler) bind(c *gin.Context, dst interface{}) (*service.Upload, func(), bool) {
	noop := func() {}

	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		if !httpkit.BindJSON(c, h.val, dst) {
			return nil, noop, false
		}
		return nil, noop, true
	}

	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+multipartOverhead)
	}
	if err := c.ShouldBind(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpkit.Error(c, http.StatusBadRequest, "file exceeds maximum allowed size", nil)
			return nil, noop, false
		}
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return nil, noop, false
	}
	if err := h.val.Struct(dst); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Details(err))
		return nil, noop, false
	}

	header, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, true
	}
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidFile, nil)
		return nil, noop, false
	}

	f, err := header.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidFile, nil)
		return nil, noop, false
	}

	upload := &service.Upload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        f,
	}
	return upload, func() { _ = f.Close() }, true
}
