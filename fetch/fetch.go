package fetch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/transform"
)

type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
	Post(ctx context.Context, url string, form url.Values) ([]byte, error)
}

type options struct {
	timeout   time.Duration
	proxy     ProxyFunc
	cookie    string
	userAgent string
	waitTime  time.Duration
	limiter   RateLimiter
	logger    *zap.Logger
}

var defaultOptions = options{
	timeout: 5 * time.Second,
	logger:  zap.NewNop(),
}

type Option func(opts *options)

func WithTimeout(d time.Duration) Option {
	return func(opts *options) {
		opts.timeout = d
	}
}

func WithProxy(p ProxyFunc) Option {
	return func(opts *options) {
		opts.proxy = p
	}
}

func WithCookie(cookie string) Option {
	return func(opts *options) {
		opts.cookie = cookie
	}
}

// WithUserAgent pins the User-Agent header. Without it every request picks a
// random browser agent.
func WithUserAgent(ua string) Option {
	return func(opts *options) {
		opts.userAgent = ua
	}
}

// WithWaitTime makes every request sleep a random duration in [0, d) first.
func WithWaitTime(d time.Duration) Option {
	return func(opts *options) {
		opts.waitTime = d
	}
}

func WithLimiter(l RateLimiter) Option {
	return func(opts *options) {
		opts.limiter = l
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

// BrowserFetch 模拟浏览器访问
type BrowserFetch struct {
	options
	client *http.Client
}

func New(opts ...Option) *BrowserFetch {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}

	client := &http.Client{
		Timeout: options.timeout,
	}

	if options.proxy != nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = options.proxy
		client.Transport = transport
	}

	return &BrowserFetch{options: options, client: client}
}

func (b *BrowserFetch) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("get url failed:%w", err)
	}

	return b.do(ctx, req)
}

// Post submits form as application/x-www-form-urlencoded.
func (b *BrowserFetch) Post(ctx context.Context, url string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("post url failed:%w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return b.do(ctx, req)
}

func (b *BrowserFetch) do(ctx context.Context, req *http.Request) ([]byte, error) {
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	// 随机休眠，模拟人类行为
	if b.waitTime > 0 {
		sleeptime := time.Duration(rand.Int63n(int64(b.waitTime)))
		select {
		case <-time.After(sleeptime):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if len(b.cookie) > 0 {
		req.Header.Set("Cookie", b.cookie)
	}

	ua := b.userAgent
	if ua == "" {
		ua = RandomUserAgent()
	}
	req.Header.Set("User-Agent", ua)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b.logger.Error("fetch failed",
			zap.String("url", req.URL.String()),
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("error status code:%d", resp.StatusCode)
	}

	bodyReader := bufio.NewReader(resp.Body)
	e := DetermineEncoding(bodyReader, resp.Header.Get("Content-Type"))
	utf8Reader := transform.NewReader(bodyReader, e.NewDecoder())

	body, err := io.ReadAll(utf8Reader)
	if err != nil {
		return nil, err
	}
	b.logger.Debug("fetched",
		zap.String("url", req.URL.String()),
		zap.Int("length", len(body)),
	)

	return body, nil
}
