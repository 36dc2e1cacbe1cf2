package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"doggydate-backend/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const uploadURLExpiry = 5 * time.Minute

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// Presigner issues presigned S3 requests
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Options configures the bucket that stores pet images
type S3Options struct {
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	Endpoint      string
	PublicBaseURL string
}

// UploadResponse holds a presigned upload URL and the image URL that was
// added to the pet
type UploadResponse struct {
	UploadURL string      `json:"upload_url"`
	ImageURL  string      `json:"image_url"`
	ExpiresIn int         `json:"expires_in"`
	Pet       *models.Pet `json:"mascota"`
}

// MediaService hands out upload URLs for pet images
type MediaService struct {
	pets      PetRepository
	presigner Presigner
	bucket    string
	baseURL   string
}

// NewMediaService creates a media service backed by S3
func NewMediaService(ctx context.Context, pets PetRepository, opts S3Options) (*MediaService, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := strings.TrimRight(opts.PublicBaseURL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
	}

	return NewMediaServiceWithPresigner(pets, s3.NewPresignClient(s3Client), opts.Bucket, baseURL), nil
}

// NewMediaServiceWithPresigner creates a media service with a custom presigner
func NewMediaServiceWithPresigner(pets PetRepository, presigner Presigner, bucket, baseURL string) *MediaService {
	return &MediaService{
		pets:      pets,
		presigner: presigner,
		bucket:    bucket,
		baseURL:   baseURL,
	}
}

// RequestPetImageUpload reserves a new image slot on a pet owned by callerID
// and returns a presigned PUT URL for it. The image URL is appended to the
// pet's image list right away.
func (s *MediaService) RequestPetImageUpload(ctx context.Context, callerID, petID int64, contentType string) (*UploadResponse, error) {
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, validationError("unsupported content type %q", contentType)
	}

	key := fmt.Sprintf("pets/%d/%s.%s", petID, uuid.New().String(), ext)
	imageURL := s.baseURL + "/" + key

	var resp *UploadResponse
	err := s.pets.Transaction(ctx, func(repo PetRepository) error {
		if err := checkOwner(ctx, repo, callerID, petID); err != nil {
			return err
		}
		pet, err := repo.GetByID(ctx, petID)
		if err != nil {
			return err
		}
		if len(pet.Images) >= MaxPetImages {
			return fmt.Errorf("%w: a pet can have at most %d images", ErrConflict, MaxPetImages)
		}

		request, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			ContentType: aws.String(contentType),
		}, func(opts *s3.PresignOptions) {
			opts.Expires = uploadURLExpiry
		})
		if err != nil {
			return fmt.Errorf("failed to generate pre-signed URL: %w", err)
		}

		updated, err := repo.AppendImage(ctx, petID, imageURL)
		if err != nil {
			return err
		}
		resp = &UploadResponse{
			UploadURL: request.URL,
			ImageURL:  imageURL,
			ExpiresIn: int(uploadURLExpiry.Seconds()),
			Pet:       updated,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int64("pet_id", petID).Str("key", key).Msg("Pet image upload URL issued")
	return resp, nil
}
