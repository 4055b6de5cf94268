// Package service provides business logic for media resources.
package service

import (
	"context"
	"io"
	"strings"

	"educare/internal/adapters/storage"
	"educare/internal/media/repository"
	"educare/internal/media/transport"
	"educare/platform/apperr"
	"educare/platform/httpkit"
	"educare/platform/logger"
	"educare/platform/query"
	"educare/platform/sanitize"
	"educare/platform/validator"

	"github.com/google/uuid"
)

const uploadFolder = "resources"

// Cleanup outcomes reported to Metrics.UploadCleanup.
const (
	cleanupDeleted  = "deleted"
	cleanupDeferred = "deferred"
	cleanupFailed   = "failed"
)

// CleanupScheduler defers deletion of objects that could not be removed inline.
type CleanupScheduler interface {
	ScheduleStorageCleanup(ctx context.Context, bucket, fileKey string) error
}

// Metrics records media domain counters.
type Metrics interface {
	MediaViewed()
	UploadCleanup(outcome string)
}

// Config holds media service settings.
type Config struct {
	Bucket      string
	MaxFileSize int64
}

// Upload is a file received with a create or update request.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Service provides business logic for media resources.
type Service struct {
	repo    repository.Repository
	storage storage.StorageService
	cleanup CleanupScheduler
	metrics Metrics
	tts     *TTSClient
	val     *validator.Validator
	cfg     Config
	log     *logger.Logger
}

// Deps are the collaborators of the media service. Storage, Cleanup,
// Metrics and TTS may be nil.
type Deps struct {
	Repo      repository.Repository
	Storage   storage.StorageService
	Cleanup   CleanupScheduler
	Metrics   Metrics
	TTS       *TTSClient
	Validator *validator.Validator
	Log       *logger.Logger
}

// New creates a new media service.
func New(deps Deps, cfg Config) *Service {
	val := deps.Validator
	if val == nil {
		val = validator.New()
	}
	transport.RegisterRules(val)

	return &Service{
		repo:    deps.Repo,
		storage: deps.Storage,
		cleanup: deps.Cleanup,
		metrics: deps.Metrics,
		tts:     deps.TTS,
		val:     val,
		cfg:     cfg,
		log:     deps.Log,
	}
}

// List returns one page of resources visible to the identity.
func (s *Service) List(ctx context.Context, id httpkit.Identity, spec query.Spec) (transport.ListResourcesResponse, error) {
	items, total, err := s.repo.List(ctx, spec, visibility(id))
	if err != nil {
		return transport.ListResourcesResponse{}, err
	}

	resp := transport.ListResourcesResponse{
		Items:      make([]transport.ResourceResponse, 0, len(items)),
		Pagination: query.NewPagination(total, spec),
	}
	for _, item := range items {
		resp.Items = append(resp.Items, toResponse(item))
	}
	return resp, nil
}

// View returns a resource and counts the view.
func (s *Service) View(ctx context.Context, id httpkit.Identity, resourceID uuid.UUID) (transport.ResourceResponse, error) {
	item, err := s.repo.IncrementViews(ctx, resourceID, visibility(id))
	if err != nil {
		return transport.ResourceResponse{}, err
	}
	if s.metrics != nil {
		s.metrics.MediaViewed()
	}
	return toResponse(item), nil
}

// Create validates and stores a new resource. When file is set it is
// uploaded first and removed again if the row cannot be written.
func (s *Service) Create(ctx context.Context, id httpkit.Identity, req transport.CreateResourceRequest, file *Upload) (transport.ResourceResponse, error) {
	fields := repository.Fields{
		Title:        sanitize.Line(req.Title),
		Description:  req.Description,
		ResourceType: req.ResourceType,
		Content:      strings.TrimSpace(req.Content),
		Category:     sanitize.Line(req.Category),
		IsPublic:     true,
		TTSEnabled:   req.TTSEnabled,
		TTSEndpoint:  optional(req.TTSEndpoint),
		TTSVoice:     optional(req.TTSVoice),
	}
	if req.IsPublic != nil {
		fields.IsPublic = *req.IsPublic
	}

	if err := s.checkRules(fields); err != nil {
		return transport.ResourceResponse{}, err
	}

	if file != nil {
		if err := s.store(ctx, &fields, file); err != nil {
			return transport.ResourceResponse{}, err
		}
	}

	created, err := s.repo.Create(ctx, repository.CreateParams{Fields: fields, CreatedBy: id.UserID()})
	if err != nil {
		if fields.FileKey != nil {
			s.discard(ctx, *fields.FileKey)
		}
		return transport.ResourceResponse{}, err
	}

	s.log.WithContext(ctx).Info("media resource created", "id", created.ID, "type", created.ResourceType)
	return toResponse(created), nil
}

// Update applies the present fields of req. A new file replaces the old one;
// the old object is deleted only after the row points at the new one.
func (s *Service) Update(ctx context.Context, id httpkit.Identity, resourceID uuid.UUID, req transport.UpdateResourceRequest, file *Upload) (transport.ResourceResponse, error) {
	current, err := s.repo.GetByID(ctx, resourceID, query.Predicate{})
	if err != nil {
		return transport.ResourceResponse{}, err
	}

	fields := repository.FieldsOf(current)
	applyUpdate(&fields, req)

	if err := s.checkRules(fields); err != nil {
		return transport.ResourceResponse{}, err
	}

	previousKey := current.FileKey
	if file != nil {
		if err := s.store(ctx, &fields, file); err != nil {
			return transport.ResourceResponse{}, err
		}
	} else if fields.FileKey != nil && fields.ResourceType != current.ResourceType {
		if err := storage.ValidateContentType(fields.ResourceType, deref(fields.MimeType)); err != nil {
			return transport.ResourceResponse{}, err
		}
	}

	updated, err := s.repo.Update(ctx, repository.UpdateParams{Fields: fields, ID: resourceID, UpdatedBy: id.UserID()})
	if err != nil {
		if file != nil {
			s.discard(ctx, *fields.FileKey)
		}
		return transport.ResourceResponse{}, err
	}

	if file != nil && previousKey != nil {
		s.discard(ctx, *previousKey)
	}

	s.log.WithContext(ctx).Info("media resource updated", "id", updated.ID)
	return toResponse(updated), nil
}

// Delete removes the resource and its attached file.
func (s *Service) Delete(ctx context.Context, resourceID uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, resourceID)
	if err != nil {
		return err
	}
	if deleted.FileKey != nil {
		s.discard(ctx, *deleted.FileKey)
	}

	s.log.WithContext(ctx).Info("media resource deleted", "id", resourceID)
	return nil
}

// DownloadURL returns a presigned URL for the resource's attached file.
func (s *Service) DownloadURL(ctx context.Context, id httpkit.Identity, resourceID uuid.UUID) (*transport.DownloadResponse, error) {
	item, err := s.repo.GetByID(ctx, resourceID, visibility(id))
	if err != nil {
		return nil, err
	}
	if item.FileKey == nil {
		return nil, apperr.NotFound("media resource has no file")
	}
	if s.storage == nil {
		return nil, apperr.Unavailable("file storage is not configured")
	}
	return s.storage.GenerateDownloadURL(ctx, s.cfg.Bucket, *item.FileKey)
}

func (s *Service) checkRules(f repository.Fields) error {
	rules := transport.ResourceRules{
		ResourceType: f.ResourceType,
		Content:      f.Content,
		TTSEnabled:   f.TTSEnabled,
		TTSEndpoint:  deref(f.TTSEndpoint),
	}
	if err := s.val.Struct(rules); err != nil {
		return apperr.Validation("validation failed").WithDetails(validator.Details(err))
	}
	return nil
}

// store uploads file and records its metadata on f.
func (s *Service) store(ctx context.Context, f *repository.Fields, file *Upload) error {
	if s.storage == nil {
		return apperr.Unavailable("file storage is not configured")
	}
	contentType := storage.NormalizeContentType(file.ContentType)
	if err := storage.ValidateContentType(f.ResourceType, contentType); err != nil {
		return err
	}
	if err := storage.ValidateFileSize(file.Size, s.cfg.MaxFileSize); err != nil {
		return err
	}

	key, err := s.storage.UploadFile(ctx, s.cfg.Bucket, uploadFolder, file.FileName, contentType, file.Body, file.Size)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to store file", err).WithOp("media.store")
	}

	name := storage.SanitizeFileName(file.FileName)
	size := file.Size
	f.FileKey = &key
	f.FileName = &name
	f.MimeType = &contentType
	f.FileSize = &size
	return nil
}

// discard removes an object that is no longer referenced. Failures are
// logged and handed to the scheduler; the caller's outcome is unaffected.
func (s *Service) discard(ctx context.Context, key string) {
	if s.storage == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	log := s.log.WithContext(ctx)

	err := s.storage.DeleteObject(ctx, s.cfg.Bucket, key)
	if err == nil {
		s.recordCleanup(cleanupDeleted)
		return
	}
	log.StorageCleanupFailed(s.cfg.Bucket, key, err)

	if s.cleanup == nil {
		s.recordCleanup(cleanupFailed)
		return
	}
	if err := s.cleanup.ScheduleStorageCleanup(ctx, s.cfg.Bucket, key); err != nil {
		log.Error("failed to schedule storage cleanup", "key", key, "error", err)
		s.recordCleanup(cleanupFailed)
		return
	}
	s.recordCleanup(cleanupDeferred)
}

func (s *Service) recordCleanup(outcome string) {
	if s.metrics != nil {
		s.metrics.UploadCleanup(outcome)
	}
}

// visibility limits parents to public resources.
func visibility(id httpkit.Identity) query.Predicate {
	if id != nil && id.HasRole(httpkit.RoleAdmin, httpkit.RoleOwner, httpkit.RoleProfessional, httpkit.RoleEducator) {
		return query.Predicate{}
	}
	return query.Predicate{SQL: "is_public = TRUE"}
}

func applyUpdate(f *repository.Fields, req transport.UpdateResourceRequest) {
	if req.Title != nil {
		f.Title = sanitize.Line(*req.Title)
	}
	if req.Description != nil {
		f.Description = *req.Description
	}
	if req.ResourceType != nil {
		f.ResourceType = *req.ResourceType
	}
	if req.Content != nil {
		f.Content = strings.TrimSpace(*req.Content)
	}
	if req.Category != nil {
		f.Category = sanitize.Line(*req.Category)
	}
	if req.IsPublic != nil {
		f.IsPublic = *req.IsPublic
	}
	if req.TTSEnabled != nil {
		f.TTSEnabled = *req.TTSEnabled
	}
	if req.TTSEndpoint != nil {
		f.TTSEndpoint = optional(*req.TTSEndpoint)
	}
	if req.TTSVoice != nil {
		f.TTSVoice = optional(*req.TTSVoice)
	}
}

func toResponse(m repository.MediaResource) transport.ResourceResponse {
	return transport.ResourceResponse{
		ID:           m.ID,
		Title:        m.Title,
		Description:  m.Description,
		ResourceType: m.ResourceType,
		Content:      m.Content,
		Category:     m.Category,
		IsPublic:     m.IsPublic,
		FileName:     m.FileName,
		MimeType:     m.MimeType,
		FileSize:     m.FileSize,
		HasFile:      m.FileKey != nil,
		TTSEnabled:   m.TTSEnabled,
		TTSEndpoint:  m.TTSEndpoint,
		TTSVoice:     m.TTSVoice,
		ViewCount:    m.ViewCount,
		CreatedBy:    m.CreatedBy,
		UpdatedBy:    m.UpdatedBy,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
