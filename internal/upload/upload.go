package upload

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"signalcraft-be/internal/config"
	"signalcraft-be/internal/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const URLExpiry = 300 * time.Second

var (
	ErrNotConfigured   = errors.New("uploads bucket not configured")
	ErrInvalidCategory = errors.New("invalid upload category")
)

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

type Category string

const (
	CategoryPreview Category = "preview"
	CategorySource  Category = "source"
	CategoryReview  Category = "review"
	CategoryProduct Category = "product"
	CategoryLogo    Category = "logo"
)

func ParseCategory(raw string) (Category, bool) {
	switch c := Category(raw); c {
	case CategoryPreview, CategorySource, CategoryReview, CategoryProduct, CategoryLogo:
		return c, true
	}
	return "", false
}

type Request struct {
	FileName    string
	ContentType string
	OrderID     *string
	Category    Category
}

type Presigned struct {
	UploadURL string `json:"uploadUrl"`
	FileURL   string `json:"fileUrl"`
	Key       string `json:"key"`
}

// Presigner is the subset of *s3.PresignClient used here.
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type Service interface {
	CreatePresignedURL(ctx context.Context, req Request) (*Presigned, error)
}

type service struct {
	presigner Presigner
	bucket    string
	baseURL   string
	prefix    string
	now       func() time.Time
}

func NewService(presigner Presigner, cfg *config.Config) Service {
	return &service{
		presigner: presigner,
		bucket:    cfg.UploadsBucket,
		baseURL:   strings.TrimRight(cfg.UploadsPublicBaseURL, "/"),
		prefix:    cfg.UploadsPrefix,
		now:       time.Now,
	}
}

// NewS3Presigner loads the default AWS credential chain for cfg.AWSRegion.
// Signing happens locally; no request reaches S3 until the client uploads.
func NewS3Presigner(ctx context.Context, cfg *config.Config) (*s3.PresignClient, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewPresignClient(s3.NewFromConfig(awsCfg)), nil
}

func SafeFileName(name string) string {
	return unsafeFileChars.ReplaceAllString(name, "-")
}

// ObjectKey is prefix/<orderID|general>/<category>/<unix ms>-<uuid>-<safe name>.
func ObjectKey(prefix string, orderID *string, category Category, fileName string, now time.Time) string {
	segment := "general"
	if orderID != nil && *orderID != "" {
		segment = *orderID
	}
	leaf := strconv.FormatInt(now.UnixMilli(), 10) + "-" + uuid.NewString() + "-" + SafeFileName(fileName)
	return strings.Join([]string{prefix, segment, string(category), leaf}, "/")
}

func (s *service) CreatePresignedURL(ctx context.Context, req Request) (*Presigned, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreatePresignedURL"),
	)

	if s.bucket == "" || s.baseURL == "" {
		log.Error("uploads bucket not configured")
		return nil, ErrNotConfigured
	}
	if _, ok := ParseCategory(string(req.Category)); !ok {
		return nil, ErrInvalidCategory
	}

	key := ObjectKey(s.prefix, req.OrderID, req.Category, req.FileName, s.now())

	signed, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(req.ContentType),
	}, s3.WithPresignExpires(URLExpiry))
	if err != nil {
		log.Error("failed to presign upload", zap.Error(err))
		return nil, fmt.Errorf("presign upload: %w", err)
	}

	log.Info("upload url issued", zap.String("key", key), zap.String("category", string(req.Category)))
	return &Presigned{
		UploadURL: signed.URL,
		FileURL:   s.baseURL + "/" + key,
		Key:       key,
	}, nil
}
