package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// Snapshot is one decoded feed poll.
type Snapshot struct {
	Records []Record
	Skipped int
}

// Client fetches feed snapshots from an HTTP URL or a local file path.
type Client struct {
	httpClient     *http.Client
	format         Format
	url            string
	tripUpdatesURL string
}

// NewClient creates a feed client. tripUpdatesURL is only used by the gtfsrt
// format and may be empty.
func NewClient(httpClient *http.Client, format Format, url, tripUpdatesURL string) (*Client, error) {
	if format != FormatGeoJSON && format != FormatGTFSRT {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		httpClient:     httpClient,
		format:         format,
		url:            url,
		tripUpdatesURL: tripUpdatesURL,
	}, nil
}

// Fetch retrieves and decodes one snapshot.
func (c *Client) Fetch(ctx context.Context) (*Snapshot, error) {
	data, err := c.fetch(ctx, c.url)
	if err != nil {
		return nil, err
	}
	var (
		records []Record
		skipped int
	)
	switch c.format {
	case FormatGTFSRT:
		var tu []byte
		if c.tripUpdatesURL != "" {
			if tu, err = c.fetch(ctx, c.tripUpdatesURL); err != nil {
				return nil, fmt.Errorf("trip updates: %w", err)
			}
		}
		records, skipped, err = DecodeGTFSRT(data, tu)
	default:
		records, skipped, err = DecodeGeoJSON(data)
	}
	if err != nil {
		return nil, err
	}
	return &Snapshot{Records: records, Skipped: skipped}, nil
}

// fetch reads urlOrPath, which is either an http(s) URL or a local file.
func (c *Client) fetch(ctx context.Context, urlOrPath string) ([]byte, error) {
	if urlOrPath == "" {
		return nil, fmt.Errorf("feed location is empty")
	}
	if !strings.HasPrefix(urlOrPath, "http://") && !strings.HasPrefix(urlOrPath, "https://") {
		return os.ReadFile(urlOrPath)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlOrPath, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", urlOrPath, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, urlOrPath)
	}
	return io.ReadAll(resp.Body)
}
