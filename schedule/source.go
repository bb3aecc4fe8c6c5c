package schedule

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Options configures access to s3:// itinerary locations.
type S3Options struct {
	Region       string
	Endpoint     string
	UsePathStyle bool
}

// Source reads itinerary documents from local paths, HTTP URLs or S3.
type Source struct {
	httpClient *http.Client
	s3         S3Options
}

// NewSource creates a Source. A nil client gets a 60 second timeout.
func NewSource(client *http.Client, s3opts S3Options) *Source {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &Source{httpClient: client, s3: s3opts}
}

// Load fetches and parses the itinerary at location.
func (s *Source) Load(ctx context.Context, location string) (*Store, error) {
	data, err := s.Fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	store, err := NewStoreFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}
	return store, nil
}

// Fetch returns the raw document at location.
func (s *Source) Fetch(ctx context.Context, location string) ([]byte, error) {
	switch {
	case location == "":
		return nil, ErrNoSchedule
	case strings.HasPrefix(location, "s3://"):
		return s.fetchS3(ctx, location)
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return s.fetchHTTP(ctx, location)
	default:
		return os.ReadFile(location)
	}
}

func (s *Source) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}

func (s *Source) fetchS3(ctx context.Context, location string) ([]byte, error) {
	bucket, key, ok := strings.Cut(strings.TrimPrefix(location, "s3://"), "/")
	if !ok || bucket == "" || key == "" {
		return nil, fmt.Errorf("invalid s3 location %q", location)
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(s.s3.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if s.s3.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.s3.Endpoint)
		}
		o.UsePathStyle = s.s3.UsePathStyle
	})
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", location, err)
	}
	defer func() { _ = out.Body.Close() }()
	return io.ReadAll(out.Body)
}
