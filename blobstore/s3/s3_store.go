package s3

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/hupe1980/hexzone/blobstore"
)

// Client is the subset of the S3 API used by Store. *s3.Client satisfies it.
type Client interface {
	manager.UploadAPIClient
	s3.ListObjectsV2APIClient
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type options struct {
	prefix       string
	region       string
	endpoint     string
	usePathStyle bool
	upload       UploadConfig
}

// Option configures a Store.
type Option func(*options)

// WithPrefix sets the key prefix prepended to all blob names.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithRegion sets the AWS region used by New.
func WithRegion(region string) Option {
	return func(o *options) { o.region = region }
}

// WithEndpoint points New at a custom S3-compatible endpoint. Path-style
// addressing is enabled with it.
func WithEndpoint(endpoint string) Option {
	return func(o *options) {
		o.endpoint = endpoint
		o.usePathStyle = true
	}
}

// WithUploadConfig overrides the multipart upload settings.
func WithUploadConfig(cfg UploadConfig) Option {
	return func(o *options) { o.upload = cfg }
}

// Store implements blobstore.BlobStore for S3.
type Store struct {
	client   Client
	bucket   string
	prefix   string
	upload   UploadConfig
	uploader *manager.Uploader
}

// New loads the default AWS configuration and returns a store for bucket.
func New(ctx context.Context, bucket string, optFns ...Option) (*Store, error) {
	o := options{upload: DefaultUploadConfig()}
	for _, fn := range optFns {
		fn(&o)
	}

	var loadOpts []func(*config.LoadOptions) error
	if o.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(o.region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.endpoint != "" {
			so.BaseEndpoint = aws.String(o.endpoint)
		}
		so.UsePathStyle = o.usePathStyle
	})
	return NewStore(client, bucket, o.prefix, WithUploadConfig(o.upload)), nil
}

// NewStore creates a new S3 blob store on an existing client.
// rootPrefix is prepended to all keys (e.g. "hexzone/").
func NewStore(client Client, bucket, rootPrefix string, optFns ...Option) *Store {
	o := options{upload: DefaultUploadConfig()}
	for _, fn := range optFns {
		fn(&o)
	}
	return &Store{
		client:   client,
		bucket:   bucket,
		prefix:   strings.Trim(rootPrefix, "/"),
		upload:   o.upload,
		uploader: newUploader(client, o.upload),
	}
}

func (s *Store) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	return errors.As(err, &nsk)
}

// Open opens a blob for reading. Only its metadata is fetched here; data is
// read lazily with range requests.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)

	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, blobstore.ErrNotFound
		}
		return nil, err
	}

	return &s3Blob{
		client: s.client,
		bucket: s.bucket,
		key:    key,
		size:   aws.ToInt64(head.ContentLength),
	}, nil
}

// Create starts a streaming upload. The object appears when Close returns
// without error.
func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	return newStreamingWritableBlob(ctx, s.uploader, s.bucket, s.key(name), s.upload.EnableChecksum), nil
}

// Put writes a small blob in a single request.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	return putWithChecksum(ctx, s.client, s.bucket, s.key(name), data)
}

// Delete removes a blob.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	return err
}

// List returns all blob names with the given prefix, relative to the store
// prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.key(prefix)),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			rel := aws.ToString(obj.Key)
			if s.prefix != "" {
				rel = strings.TrimPrefix(strings.TrimPrefix(rel, s.prefix), "/")
			}
			if rel != "" {
				keys = append(keys, rel)
			}
		}
	}
	sort.Strings(keys)
	return keys, nil
}
