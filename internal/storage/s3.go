package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config holds explicit construction parameters. Without a static key pair,
// credentials come from the default AWS chain (environment, shared config,
// instance role).
type S3Config struct {
	Region    string
	Endpoint  string // optional; set for MinIO or other S3-compatible stores
	PathStyle bool

	AccessKeyID     string
	SecretAccessKey string

	// HTTPClient overrides the transport; tests inject a fake here.
	HTTPClient *http.Client
}

// Environment variables:
//
//	DWLOAD_S3_REGION=<region> (default us-east-1)
//	DWLOAD_S3_ENDPOINT=<url> (optional, for MinIO)
//	DWLOAD_S3_PATH_STYLE=true|false (default false)
//	DWLOAD_S3_ACCESS_KEY_ID / DWLOAD_S3_SECRET_ACCESS_KEY (optional static keys)
//	AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY / AWS_SESSION_TOKEN (optional)

// S3ConfigFromEnv fills unset fields of base from the process environment.
func S3ConfigFromEnv(base S3Config) S3Config {
	if base.Region == "" {
		base.Region = os.Getenv("DWLOAD_S3_REGION")
	}
	if base.Endpoint == "" {
		base.Endpoint = os.Getenv("DWLOAD_S3_ENDPOINT")
	}
	if !base.PathStyle {
		base.PathStyle = strings.EqualFold(os.Getenv("DWLOAD_S3_PATH_STYLE"), "true")
	}
	if base.AccessKeyID == "" && base.SecretAccessKey == "" {
		base.AccessKeyID = os.Getenv("DWLOAD_S3_ACCESS_KEY_ID")
		base.SecretAccessKey = os.Getenv("DWLOAD_S3_SECRET_ACCESS_KEY")
	}
	return base
}

// S3FileSystem implements FS over the objects of a single bucket.
// Keys map to paths directly; common prefixes are reported as directories.
type S3FileSystem struct {
	client *s3.Client
	bucket string
}

// NewS3FileSystem creates an S3-backed FS for bucket.
func NewS3FileSystem(ctx context.Context, bucket string, cfg S3Config) (*S3FileSystem, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if cfg.HTTPClient != nil {
			o.HTTPClient = cfg.HTTPClient
		}
	})
	return &S3FileSystem{client: client, bucket: bucket}, nil
}

// objectInfo implements fs.FileInfo for objects and common prefixes
type objectInfo struct {
	name    string
	size    int64
	modTime time.Time
	isDir   bool
}

func (o *objectInfo) Name() string { return o.name }
func (o *objectInfo) Size() int64  { return o.size }
func (o *objectInfo) Mode() fs.FileMode {
	if o.isDir {
		return 0755 | fs.ModeDir
	}
	return 0644
}
func (o *objectInfo) ModTime() time.Time { return o.modTime }
func (o *objectInfo) IsDir() bool        { return o.isDir }
func (o *objectInfo) Sys() any           { return nil }

func dirPrefix(dir string) string {
	dir = strings.Trim(dir, "/")
	if dir == "" || dir == "." {
		return ""
	}
	return dir + "/"
}

func (s *S3FileSystem) ReadDir(ctx context.Context, dir string) ([]FileInfo, error) {
	prefix := dirPrefix(dir)
	var result []FileInfo
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            &s.bucket,
			Prefix:            aws.String(prefix),
			Delimiter:         aws.String("/"),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, s.wrap("readdir", dir, err)
		}
		for _, cp := range out.CommonPrefixes {
			name := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(cp.Prefix), prefix), "/")
			if name != "" {
				result = append(result, &objectInfo{name: name, isDir: true})
			}
		}
		for _, obj := range out.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), prefix)
			if name == "" {
				continue
			}
			result = append(result, &objectInfo{name: name, size: aws.ToInt64(obj.Size), modTime: aws.ToTime(obj.LastModified)})
		}
		if aws.ToBool(out.IsTruncated) && out.NextContinuationToken != nil {
			token = out.NextContinuationToken
			continue
		}
		break
	}

	// S3 has no empty directories; a prefix with no keys does not exist
	if len(result) == 0 {
		return nil, &fs.PathError{Op: "readdir", Path: dir, Err: fs.ErrNotExist}
	}
	return result, nil
}

func (s *S3FileSystem) Stat(ctx context.Context, name string) (FileInfo, error) {
	key := strings.Trim(name, "/")
	if key != "" {
		out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: aws.String(key)})
		if err == nil {
			return &objectInfo{name: path.Base(key), size: aws.ToInt64(out.ContentLength), modTime: aws.ToTime(out.LastModified)}, nil
		}
		if !isNotFound(err) {
			return nil, s.wrap("stat", name, err)
		}
	}

	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  &s.bucket,
		Prefix:  aws.String(dirPrefix(key)),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return nil, s.wrap("stat", name, err)
	}
	if len(out.Contents) == 0 {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}
	return &objectInfo{name: path.Base(key), isDir: true}, nil
}

func (s *S3FileSystem) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: aws.String(strings.Trim(name, "/"))})
	if err != nil {
		return nil, s.wrap("open", name, err)
	}
	return out.Body, nil
}

func (s *S3FileSystem) Join(elem ...string) string {
	return strings.TrimPrefix(path.Join(elem...), "/")
}

func (s *S3FileSystem) wrap(op, name string, err error) error {
	if isNotFound(err) {
		return &fs.PathError{Op: op, Path: "s3://" + s.bucket + "/" + name, Err: fs.ErrNotExist}
	}
	return &fs.PathError{Op: op, Path: "s3://" + s.bucket + "/" + name, Err: err}
}

func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noKey) || errors.As(err, &notFound) {
		return true
	}
	var respErr *awshttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound
}
