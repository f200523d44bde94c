package censys

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/azeraturan/spiderfoot/internal/logger"
)

// QueryKind selects the lookup endpoint. It is derived from the input
// event type, never from what the address string looks like.
type QueryKind string

const (
	KindIP   QueryKind = "ip"
	KindHost QueryKind = "host"
)

// ErrRejected means the API key was rejected or the monthly usage
// limit is exhausted. The caller must latch the run and stop querying.
var ErrRejected = errors.New("censys: api key rejected or usage limit exceeded")

// Doer issues the HTTP requests. Transport policy (TLS, redirects,
// timeouts) belongs to whoever builds it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

const maxBodyBytes = 4 << 20

type ClientOptions struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	UserAgent string
	Delay     time.Duration
}

// Client queries the Censys view API one address at a time, pausing
// after every call to stay inside the fixed-rate quota
// (0.4 actions/second, 120 per 5-minute interval).
type Client struct {
	http Doer
	opts ClientOptions

	sleep func(time.Duration)
}

func NewClient(d Doer, opts ClientOptions) *Client {
	return &Client{
		http:  d,
		opts:  opts,
		sleep: time.Sleep,
	}
}

// Lookup fetches the view record for one address. It blocks for the
// configured delay before returning, success or failure alike.
// Expected failure modes (empty body, malformed JSON) are logged and
// come back as (nil, nil); ErrRejected means the run must stop.
func (c *Client) Lookup(addr string, kind QueryKind) (*Record, error) {
	defer c.sleep(c.opts.Delay)

	path := "/ipv4/"
	if kind == KindHost {
		path = "/websites/"
	}

	req, err := http.NewRequest(http.MethodGet, c.opts.BaseURL+path+addr, nil)
	if err != nil {
		return nil, err
	}

	creds := base64.StdEncoding.EncodeToString([]byte(c.opts.KeyID + ":" + c.opts.KeySecret))
	req.Header.Set("Authorization", "Basic "+creds)
	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("censys request for %s: %w", addr, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusForbidden,
		http.StatusTooManyRequests, http.StatusInternalServerError:
		return nil, ErrRejected
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("censys response for %s: %w", addr, err)
	}
	if len(body) == 0 {
		logger.Infof("no Censys info found for %s", addr)
		return nil, nil
	}

	var rec Record
	if err := json.Unmarshal(body, &rec); err != nil {
		logger.Errorf("error processing JSON response from Censys: %v", err)
		return nil, nil
	}
	rec.raw = body

	return &rec, nil
}
