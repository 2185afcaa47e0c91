package services

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"bust-order-backend/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MaxPhoneUploadBytes = 12 << 20
	phoneTokenTTL       = 2 * time.Hour
)

// phoneExtensions is the probe order used when looking for a phone photo.
var phoneExtensions = []string{"jpg", "jpeg", "png", "webp", "heic", "heif"}

// Photo is an image handed to intake, either uploaded directly or fetched
// from the phone-upload area.
type Photo struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

type PhoneUploadService struct {
	storage *StorageService
	blobs   BlobStore
	tokens  TokenStore
	log     *zap.Logger
}

// NewPhoneUploadService builds the service. tokens may be nil, in which case
// any well-formed token is accepted.
func NewPhoneUploadService(storage *StorageService, blobs BlobStore, tokens TokenStore, log *zap.Logger) *PhoneUploadService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PhoneUploadService{storage: storage, blobs: blobs, tokens: tokens, log: log}
}

func (s *PhoneUploadService) IssueToken(ctx context.Context) (*models.PhoneTokenResponse, error) {
	token := uuid.NewString()
	if s.tokens != nil {
		if err := s.tokens.Issue(ctx, token, phoneTokenTTL); err != nil {
			return nil, err
		}
	}
	return &models.PhoneTokenResponse{Token: token}, nil
}

func (s *PhoneUploadService) checkToken(ctx context.Context, token string) error {
	if _, err := uuid.Parse(token); err != nil {
		return fmt.Errorf("%w: token must be a uuid", ErrInvalidInput)
	}
	if s.tokens == nil {
		return nil
	}
	ok, err := s.tokens.Valid(ctx, token)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidToken
	}
	return nil
}

// Upload stores photo as the token's phone photo, replacing any earlier one
// with the same extension.
func (s *PhoneUploadService) Upload(ctx context.Context, token string, photo Photo) (*models.PhoneUploadResponse, error) {
	token = strings.TrimSpace(token)
	if err := s.checkToken(ctx, token); err != nil {
		return nil, err
	}
	if photo.Size > MaxPhoneUploadBytes || len(photo.Data) > MaxPhoneUploadBytes {
		return nil, fmt.Errorf("%w: photo must be less than 12MB", ErrInvalidInput)
	}
	if len(photo.Data) == 0 {
		return nil, fmt.Errorf("%w: photo is empty", ErrInvalidInput)
	}

	ext := PhotoExtension(photo.Filename, photo.ContentType)
	p := PhonePhotoPath(token, ext)
	contentType := photo.ContentType
	if contentType == "" {
		contentType = contentTypeForExtension(ext)
	}

	if err := s.blobs.Upload(ctx, s.storage.UploadsBucket(), p, photo.Data, contentType, true); err != nil {
		return nil, fmt.Errorf("failed to store phone photo: %w", err)
	}
	s.log.Info("phone photo uploaded", zap.String("token", token), zap.String("path", p))

	resp := &models.PhoneUploadResponse{OK: true, Token: token, Bucket: s.storage.UploadsBucket(), Path: p}
	if url, err := s.storage.SignUpload(ctx, p); err == nil {
		resp.PreviewURL = url
	} else {
		s.log.Warn("failed to sign phone photo", zap.String("path", p), zap.Error(err))
	}
	return resp, nil
}

// Status reports whether a photo exists for token yet.
func (s *PhoneUploadService) Status(ctx context.Context, token string) (*models.PhoneUploadStatusResponse, error) {
	token = strings.TrimSpace(token)
	if _, err := uuid.Parse(token); err != nil {
		return nil, fmt.Errorf("%w: token must be a uuid", ErrInvalidInput)
	}

	p, err := s.find(ctx, token)
	if err != nil {
		return nil, err
	}
	if p == "" {
		return &models.PhoneUploadStatusResponse{Status: "waiting", Token: token}, nil
	}

	resp := &models.PhoneUploadStatusResponse{Status: "uploaded", Token: token, Path: p}
	if url, err := s.storage.SignUpload(ctx, p); err == nil {
		resp.PreviewURL = url
	}
	return resp, nil
}

// Fetch downloads the phone photo for token, or returns ErrPhotoNotFound.
func (s *PhoneUploadService) Fetch(ctx context.Context, token string) (*Photo, error) {
	if err := s.checkToken(ctx, token); err != nil {
		return nil, err
	}
	p, err := s.find(ctx, token)
	if err != nil {
		return nil, err
	}
	if p == "" {
		return nil, ErrPhotoNotFound
	}

	data, err := s.blobs.Download(ctx, s.storage.UploadsBucket(), p)
	if err != nil {
		return nil, fmt.Errorf("failed to download phone photo: %w", err)
	}

	ext := strings.TrimPrefix(path.Ext(p), ".")
	return &Photo{
		Filename:    "phone-photo." + ext,
		ContentType: contentTypeForExtension(ext),
		Size:        int64(len(data)),
		Data:        data,
	}, nil
}

// find returns the stored photo path for token, probing extensions in a
// fixed order, or "" when none exists.
func (s *PhoneUploadService) find(ctx context.Context, token string) (string, error) {
	paths, err := s.blobs.List(ctx, s.storage.UploadsBucket(), "phone/"+token)
	if err != nil {
		return "", fmt.Errorf("failed to list phone uploads: %w", err)
	}
	present := make(map[string]bool, len(paths))
	for _, p := range paths {
		present[p] = true
	}
	for _, ext := range phoneExtensions {
		if p := PhonePhotoPath(token, ext); present[p] {
			return p, nil
		}
	}
	return "", nil
}

// PhotoExtension derives a storage extension from the filename, then the
// MIME type, defaulting to jpg.
func PhotoExtension(filename, contentType string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if ext == "" {
		ct := strings.ToLower(contentType)
		if i := strings.Index(ct, "/"); i >= 0 {
			ext = ct[i+1:]
		}
	}
	if ext == "jpeg" {
		ext = "jpg"
	}
	for _, known := range phoneExtensions {
		if ext == known {
			return ext
		}
	}
	return "jpg"
}

func contentTypeForExtension(ext string) string {
	switch ext {
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	case "heic", "heif":
		return "image/heic"
	default:
		return "image/jpeg"
	}
}
