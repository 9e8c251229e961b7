package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/cwbudde/algo-ew/catalog"
	"github.com/cwbudde/algo-ew/spectrum"
)

// S3Config addresses an S3-compatible bucket.
type S3Config struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// Validate checks the fields required to build a client.
func (c S3Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("provider: s3 endpoint is required")
	}

	if c.Bucket == "" {
		return errors.New("provider: s3 bucket is required")
	}

	return nil
}

// ObjectStore reads spectra from an S3 or MinIO bucket.
type ObjectStore struct {
	client   *minio.Client
	bucket   string
	Template string
	Codec    Codec
}

// NewObjectStore connects to the bucket described by cfg. Objects are
// addressed with the default key template and decoded as FITS unless
// the fields are changed.
func NewObjectStore(cfg S3Config) (*ObjectStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: newTransport(),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}

	return &ObjectStore{client: client, bucket: cfg.Bucket, Template: DefaultKeyTemplate, Codec: NewFITS()}, nil
}

// Fetch downloads and decodes the object for id.
func (o *ObjectStore) Fetch(ctx context.Context, id catalog.ID) (*spectrum.Spectrum, error) {
	key := Key(o.Template, id)

	obj, err := o.client.GetObject(ctx, o.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, classify(key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, classify(key, err)
	}

	codec := o.Codec
	if codec == nil {
		codec = NewFITS()
	}

	return decode(codec, key, data)
}

func classify(key string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return fmt.Errorf("%s: %w", key, ErrNotFound)
	}

	return fmt.Errorf("get %s: %w", key, err)
}

func newTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
