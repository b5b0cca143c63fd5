// Package service implements listing management: CRUD with archive-only
// retirement, public exposure with view tracking, enquiry capture, media
// storage, and share QR codes.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/skip2/go-qrcode"

	"terraflow_backend/internal/adapters/storage"
	"terraflow_backend/internal/events"
	"terraflow_backend/internal/properties/repository"
	"terraflow_backend/internal/properties/transport"
	"terraflow_backend/platform/apperr"
	"terraflow_backend/platform/logger"
)

// shareQRSize is the pixel width of generated share codes.
const shareQRSize = 256

// LeadRecorder turns a public enquiry into a lead for the listing owner.
// Implemented by an adapter over the leads module.
type LeadRecorder interface {
	CaptureEnquiry(ctx context.Context, ownerID uuid.UUID, name, email string, phone *string, propertyTitle, message string) (uuid.UUID, error)
}

type Service struct {
	repo     *repository.Repository
	recorder LeadRecorder
	store    storage.Service
	bus      events.Bus
	bucket   string
	baseURL  string
	log      *logger.Logger
}

// New assembles the properties service. store may be nil when object storage
// is not configured; media endpoints then report a validation error.
func New(repo *repository.Repository, recorder LeadRecorder, store storage.Service, bus events.Bus, bucket, baseURL string, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		recorder: recorder,
		store:    store,
		bus:      bus,
		bucket:   bucket,
		baseURL:  strings.TrimRight(baseURL, "/"),
		log:      log,
	}
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, req transport.CreatePropertyRequest) (transport.PropertyResponse, error) {
	property, err := s.repo.Create(ctx, repository.CreateParams{
		UserID:      userID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Address:     strings.TrimSpace(req.Address),
		City:        strings.TrimSpace(req.City),
		Price:       req.Price,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		AreaSqm:     req.AreaSqm,
	})
	if err != nil {
		return transport.PropertyResponse{}, s.persistence("create property", err)
	}
	return transport.NewPropertyResponse(property), nil
}

func (s *Service) Get(ctx context.Context, id, userID uuid.UUID) (transport.PropertyResponse, error) {
	property, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		return transport.PropertyResponse{}, s.mapStoreErr("get property", err)
	}
	return transport.NewPropertyResponse(property), nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]transport.PropertyResponse, error) {
	properties, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, s.persistence("list properties", err)
	}
	return transport.NewPropertyResponses(properties), nil
}

func (s *Service) Update(ctx context.Context, id, userID uuid.UUID, req transport.UpdatePropertyRequest) (transport.PropertyResponse, error) {
	if req.Status != nil && !repository.ValidStatus(*req.Status) {
		return transport.PropertyResponse{}, apperr.Validation(fmt.Sprintf("unknown listing status %q", *req.Status))
	}

	property, err := s.repo.Update(ctx, id, userID, repository.UpdateParams{
		Title:       req.Title,
		Description: req.Description,
		Address:     req.Address,
		City:        req.City,
		Price:       req.Price,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		AreaSqm:     req.AreaSqm,
		Status:      req.Status,
	})
	if err != nil {
		return transport.PropertyResponse{}, s.mapStoreErr("update property", err)
	}
	return transport.NewPropertyResponse(property), nil
}

// Archive retires a listing. There is no delete: enquiry history and lead
// references stay intact.
func (s *Service) Archive(ctx context.Context, id, userID uuid.UUID) (transport.PropertyResponse, error) {
	property, err := s.repo.Archive(ctx, id, userID)
	if err != nil {
		return transport.PropertyResponse{}, s.mapStoreErr("archive property", err)
	}
	return transport.NewPropertyResponse(property), nil
}

// GetPublic serves a listing to the public site and counts the view.
func (s *Service) GetPublic(ctx context.Context, id uuid.UUID) (transport.PublicPropertyResponse, error) {
	property, err := s.repo.GetPublic(ctx, id)
	if err != nil {
		return transport.PublicPropertyResponse{}, s.mapStoreErr("get public property", err)
	}

	if err := s.repo.RecordView(ctx, id); err != nil {
		s.log.Warn("failed to record listing view", "property_id", id, "error", err)
	}

	return transport.NewPublicPropertyResponse(property), nil
}

// Enquire records a public visitor's interest: the enquiry becomes a lead
// for the listing owner and the listing's counter is bumped.
func (s *Service) Enquire(ctx context.Context, propertyID uuid.UUID, req transport.EnquiryRequest) (transport.EnquiryResponse, error) {
	property, err := s.repo.GetPublic(ctx, propertyID)
	if err != nil {
		return transport.EnquiryResponse{}, s.mapStoreErr("get public property", err)
	}

	leadID, err := s.recorder.CaptureEnquiry(ctx, property.UserID, req.Name, req.Email, req.Phone, property.Title, req.Message)
	if err != nil {
		return transport.EnquiryResponse{}, err
	}

	if err := s.repo.IncrementLeadsGenerated(ctx, propertyID); err != nil {
		s.log.Warn("failed to bump leads-generated counter", "property_id", propertyID, "error", err)
	}

	s.bus.Publish(ctx, events.NewPropertyEnquiryReceived(propertyID, leadID, property.UserID))

	return transport.EnquiryResponse{LeadID: leadID}, nil
}

// ShareQR renders a PNG QR code pointing at the listing's public page.
func (s *Service) ShareQR(ctx context.Context, id, userID uuid.UUID) ([]byte, error) {
	if _, err := s.repo.GetByID(ctx, id, userID); err != nil {
		return nil, s.mapStoreErr("get property", err)
	}

	link := fmt.Sprintf("%s/public/properties/%s", s.baseURL, id)
	png, err := qrcode.Encode(link, qrcode.Medium, shareQRSize)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to render share code", err)
	}
	return png, nil
}

// UploadMedia stores a photo or document for a listing. For JPEG photos the
// EXIF capture time is extracted and recorded when present.
func (s *Service) UploadMedia(ctx context.Context, id, userID uuid.UUID, fileName, contentType string, reader io.Reader, size int64) (transport.MediaResponse, error) {
	if s.store == nil {
		return transport.MediaResponse{}, apperr.Validation("media storage is not configured")
	}

	property, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		return transport.MediaResponse{}, s.mapStoreErr("get property", err)
	}

	if err := s.store.ValidateContentType(contentType); err != nil {
		return transport.MediaResponse{}, apperr.Validation(err.Error())
	}
	if err := s.store.ValidateFileSize(size); err != nil {
		return transport.MediaResponse{}, apperr.Validation(err.Error())
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return transport.MediaResponse{}, apperr.Wrap(apperr.KindInternal, "failed to read upload", err)
	}

	capturedAt := captureTime(contentType, data)

	folder := fmt.Sprintf("%s/%s", userID, property.ID)
	fileKey, err := s.store.UploadFile(ctx, s.bucket, folder, fileName, contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return transport.MediaResponse{}, apperr.Persistence("failed to store media", err)
	}

	media, err := s.repo.CreateMedia(ctx, repository.CreateMediaParams{
		PropertyID:  property.ID,
		UserID:      userID,
		ObjectKey:   fileKey,
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
		CapturedAt:  capturedAt,
	})
	if err != nil {
		return transport.MediaResponse{}, s.persistence("record media", err)
	}

	return s.mediaResponse(ctx, media)
}

// ListMedia returns a listing's stored media with short-lived download URLs.
func (s *Service) ListMedia(ctx context.Context, id, userID uuid.UUID) ([]transport.MediaResponse, error) {
	if s.store == nil {
		return nil, apperr.Validation("media storage is not configured")
	}

	if _, err := s.repo.GetByID(ctx, id, userID); err != nil {
		return nil, s.mapStoreErr("get property", err)
	}

	media, err := s.repo.ListMedia(ctx, id, userID)
	if err != nil {
		return nil, s.persistence("list media", err)
	}

	out := make([]transport.MediaResponse, 0, len(media))
	for _, m := range media {
		resp, err := s.mediaResponse(ctx, m)
		if err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, nil
}

func (s *Service) mediaResponse(ctx context.Context, m repository.Media) (transport.MediaResponse, error) {
	presigned, err := s.store.GenerateDownloadURL(ctx, s.bucket, m.ObjectKey)
	if err != nil {
		return transport.MediaResponse{}, apperr.Persistence("failed to sign download URL", err)
	}

	return transport.MediaResponse{
		ID:          m.ID,
		ContentType: m.ContentType,
		SizeBytes:   m.SizeBytes,
		CapturedAt:  m.CapturedAt,
		DownloadURL: presigned.URL,
		CreatedAt:   m.CreatedAt,
	}, nil
}

// captureTime extracts the EXIF capture timestamp from JPEG data.
// Best-effort: anything unparseable yields nil.
func captureTime(contentType string, data []byte) *time.Time {
	if !strings.EqualFold(contentType, "image/jpeg") {
		return nil
	}

	meta, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	taken, err := meta.DateTime()
	if err != nil {
		return nil
	}
	return &taken
}

func (s *Service) mapStoreErr(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("property not found")
	}
	return s.persistence(op, err)
}

func (s *Service) persistence(op string, err error) error {
	s.log.DatabaseError(op, err)
	return apperr.Persistence(op+" failed", err)
}
