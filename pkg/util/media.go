package util

import (
	"context"
	"time"

	"gamemarket-api-io/api/pkg/models"

	"github.com/cloudinary/cloudinary-go"
	"github.com/cloudinary/cloudinary-go/api/uploader"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

const mediaTimeout = 40 * time.Second

// MediaStore uploads images and returns their public url.
type MediaStore interface {
	FileUpload(ctx context.Context, file models.File) (UploadedMedia, error)
	RemoteUpload(ctx context.Context, url models.Url) (UploadedMedia, error)
	DestroyMedia(ctx context.Context, publicID string) error
}

type UploadedMedia struct {
	URL      string
	PublicID string
}

var validate = validator.New()

type cloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryStore returns a MediaStore backed by cloudinary.
func NewCloudinaryStore(cfg CloudinaryConfig) (MediaStore, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, errors.Wrap(err, "init cloudinary")
	}
	return &cloudinaryStore{cld: cld, folder: cfg.UploadFolder}, nil
}

func (s *cloudinaryStore) upload(ctx context.Context, input interface{}) (UploadedMedia, error) {
	ctx, cancel := context.WithTimeout(ctx, mediaTimeout)
	defer cancel()

	res, err := s.cld.Upload.Upload(ctx, input, uploader.UploadParams{Folder: s.folder})
	if err != nil {
		return UploadedMedia{}, errors.Wrap(err, "upload media")
	}
	if res.SecureURL == "" {
		return UploadedMedia{}, errors.New("media store returned no url")
	}

	return UploadedMedia{URL: res.SecureURL, PublicID: res.PublicID}, nil
}

func (s *cloudinaryStore) FileUpload(ctx context.Context, file models.File) (UploadedMedia, error) {
	if err := validate.Struct(file); err != nil {
		return UploadedMedia{}, err
	}
	return s.upload(ctx, file.File)
}

func (s *cloudinaryStore) RemoteUpload(ctx context.Context, url models.Url) (UploadedMedia, error) {
	if err := validate.Struct(url); err != nil {
		return UploadedMedia{}, err
	}
	return s.upload(ctx, url.Url)
}

func (s *cloudinaryStore) DestroyMedia(ctx context.Context, publicID string) error {
	if err := validate.Var(publicID, "required"); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, mediaTimeout)
	defer cancel()

	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	return errors.Wrap(err, "destroy media")
}
