package registry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the public endpoint of the FGIS Arshin eapi.
	DefaultBaseURL = "https://fgis.gost.ru/fundmetrology/eapi"

	// The registry holds no verification data older than this; the window
	// start just has to predate every real record.
	verificationDateFloor = "2000-01-01"

	defaultTimeout  = 30 * time.Second
	defaultCooldown = 5 * time.Second

	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"
)

// Config carries the connection settings for the registry client.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	Cooldown  time.Duration
}

// Client queries the Arshin verification registry over a reused connection
// with a fixed header set. One lookup is one GET, retried exactly once if
// the registry answers with HTTP 429.
type Client struct {
	baseURL    string
	userAgent  string
	cooldown   time.Duration
	httpClient *http.Client

	// Overridable in tests.
	now   func() time.Time
	sleep func(time.Duration)
}

// New creates a registry client, applying defaults for any zero config
// value.
func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	cooldown := cfg.Cooldown
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		cooldown:   cooldown,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
		sleep:      time.Sleep,
	}
}

// Lookup fetches the most recent verification record for a device number.
// The constructed query URL is always returned so a miss can be checked by
// hand in a browser. Every failure mode (transport error, non-2xx status,
// malformed body, empty result set, exhausted retry) collapses to a nil
// record; a lookup never aborts the caller's run.
func (c *Client) Lookup(ctx context.Context, deviceNumber string) (Record, string) {
	params := url.Values{}
	params.Set("mi_number", strings.TrimSpace(deviceNumber))
	params.Set("sort", "verification_date desc")
	params.Set("rows", "1")
	params.Set("start", "0")
	params.Set("verification_date_start", verificationDateFloor)
	params.Set("verification_date_end", c.now().Format("2006-01-02"))

	queryURL := c.baseURL + "/vri?" + params.Encode()

	resp, err := c.get(ctx, queryURL)
	if err != nil {
		return nil, queryURL
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		drain(resp)
		c.sleep(c.cooldown)
		// One retry; its outcome is final even if it is another 429.
		resp, err = c.get(ctx, queryURL)
		if err != nil {
			return nil, queryURL
		}
	}
	defer drain(resp)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, queryURL
	}

	var body struct {
		Result struct {
			Items []Record `json:"items"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, queryURL
	}
	if len(body.Result.Items) == 0 {
		return nil, queryURL
	}
	return body.Result.Items[0], queryURL
}

func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	return c.httpClient.Do(req)
}

// drain empties and closes the body so the underlying connection can be
// reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
