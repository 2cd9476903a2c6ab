package fetch

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/time/rate"
)

func gbk(t *testing.T, s string) string {
	t.Helper()
	out, err := simplifiedchinese.GBK.NewEncoder().String(s)
	require.NoError(t, err)

	return out
}

func TestGet(t *testing.T) {
	var (
		gotCookie string
		gotUA     string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		gotUA = r.Header.Get("User-Agent")
		io.WriteString(w, "<html><body><h1>Grand Hotel</h1></body></html>")
	}))
	defer srv.Close()

	f := New(WithCookie("TASession=abc"), WithUserAgent("tripadvparser/1.0"))
	body, err := f.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "<html><body><h1>Grand Hotel</h1></body></html>", string(body))
	assert.Equal(t, "TASession=abc", gotCookie)
	assert.Equal(t, "tripadvparser/1.0", gotUA)
}

func TestRandomUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	_, err := New().Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, userAgents, gotUA)
}

func TestPost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		io.WriteString(w, "page "+r.PostForm.Get("offset"))
	}))
	defer srv.Close()

	body, err := New().Post(context.Background(), srv.URL, url.Values{"offset": {"30"}})
	require.NoError(t, err)
	assert.Equal(t, "page 30", string(body))
}

func TestStatusCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := New().Get(context.Background(), srv.URL)
	assert.EqualError(t, err, "error status code:403")
}

func TestDecodeBody(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{
			name:        "content type charset",
			contentType: "text/html; charset=gbk",
			body:        gbk(t, "<html><body><p>北京饭店</p></body></html>"),
		},
		{
			name:        "meta charset",
			contentType: "text/html",
			body:        gbk(t, `<html><head><meta charset="gbk"></head><body><p>北京饭店</p></body></html>`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			body, err := New().Get(context.Background(), srv.URL)
			require.NoError(t, err)
			assert.Contains(t, string(body), "<p>北京饭店</p>")
		})
	}
}

func TestDetermineEncoding(t *testing.T) {
	t.Run("utf-8 bom", func(t *testing.T) {
		r := bufio.NewReader(strings.NewReader("\xef\xbb\xbf<p>hi</p>"))
		e := DetermineEncoding(r, "")
		out, err := e.NewDecoder().String("\xef\xbb\xbf<p>hi</p>")
		require.NoError(t, err)
		assert.Contains(t, out, "<p>hi</p>")
	})

	t.Run("chardet fallback", func(t *testing.T) {
		text := strings.Repeat("这家酒店的服务非常好，房间干净整洁，早餐种类丰富，我们下次还会再来。", 20)
		raw := gbk(t, "<html><body><p>"+text+"</p></body></html>")
		e := DetermineEncoding(bufio.NewReader(strings.NewReader(raw)), "")
		out, err := e.NewDecoder().String(raw)
		require.NoError(t, err)
		assert.Contains(t, out, "这家酒店的服务非常好")
	})

	t.Run("short body", func(t *testing.T) {
		e := DetermineEncoding(bufio.NewReader(bytes.NewReader(nil)), "")
		out, err := e.NewDecoder().String("abc")
		require.NoError(t, err)
		assert.Equal(t, "abc", out)
	})
}

func TestLimiter(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	// 桶大小为 1，第二次请求必须等待
	l := Multi(rate.NewLimiter(Per(1, time.Hour), 1))
	f := New(WithLimiter(l))

	_, err := f.Get(context.Background(), srv.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = f.Get(ctx, srv.URL)
	assert.Error(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestWaitTimeHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(WithWaitTime(time.Hour)).Get(ctx, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMulti(t *testing.T) {
	slow := rate.NewLimiter(Per(1, time.Minute), 1)
	fast := rate.NewLimiter(Per(20, time.Second), 1)
	m := Multi(fast, slow)
	assert.Equal(t, slow.Limit(), m.Limit())
	assert.Equal(t, rate.Inf, Multi().Limit())
	assert.NoError(t, Multi().Wait(context.Background()))

	in := []RateLimiter{fast, nil, slow}
	m = Multi(in...)
	assert.Len(t, m.limiters, 2)
	assert.Same(t, fast, in[0])
	assert.Equal(t, rate.Inf, Multi(nil).Limit())
}

func TestNewLimiter(t *testing.T) {
	tests := []struct {
		name      string
		count     int
		dur       time.Duration
		burst     int
		wantLimit rate.Limit
		wantErr   bool
	}{
		{name: "per second", count: 2, dur: time.Second, burst: 1, wantLimit: rate.Limit(2)},
		{name: "burst defaults to one", count: 1, dur: time.Second, wantLimit: rate.Limit(1)},
		{name: "zero count", count: 0, dur: time.Second, wantErr: true},
		{name: "zero duration", count: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLimiter(tt.count, tt.dur, tt.burst)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, float64(tt.wantLimit), float64(l.Limit()), 1e-9)
			assert.NoError(t, l.Wait(context.Background()))
		})
	}
	assert.Equal(t, rate.Inf, Per(0, time.Second))
}

func TestParseProxy(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "127.0.0.1:8888", want: "http://127.0.0.1:8888"},
		{raw: " https://proxy.example:443 ", want: "https://proxy.example:443"},
		{raw: "socks5://127.0.0.1:1080", want: "socks5://127.0.0.1:1080"},
		{raw: "ftp://127.0.0.1:21", wantErr: true},
		{raw: "http://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			u, err := ParseProxy(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, u.String())
		})
	}
}

func TestRoundRobinProxySwitcher(t *testing.T) {
	_, err := RoundRobinProxySwitcher()
	assert.ErrorIs(t, err, ErrNoProxy)
	_, err = RoundRobinProxySwitcher("", "  ")
	assert.ErrorIs(t, err, ErrNoProxy)
	_, err = RoundRobinProxySwitcher("127.0.0.1:8888", "gopher://x")
	assert.Error(t, err)

	p, err := RoundRobinProxySwitcher("127.0.0.1:8888", "", "socks5://127.0.0.1:1080")
	require.NoError(t, err)

	var got []string
	for i := 0; i < 3; i++ {
		u, err := p(nil)
		require.NoError(t, err)
		got = append(got, u.String())
	}
	assert.Equal(t, []string{
		"http://127.0.0.1:8888",
		"socks5://127.0.0.1:1080",
		"http://127.0.0.1:8888",
	}, got)
}

func TestProxyIsUsed(t *testing.T) {
	var seen int32
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&seen, 1)
		io.WriteString(w, "via proxy "+r.URL.Host)
	}))
	defer proxy.Close()

	p, err := RoundRobinProxySwitcher(proxy.URL)
	require.NoError(t, err)

	body, err := New(WithProxy(p)).Get(context.Background(), "http://hotels.example/")
	require.NoError(t, err)
	assert.Equal(t, "via proxy hotels.example", string(body))
	assert.EqualValues(t, 1, seen)
}

func FuzzGetProxy(f *testing.F) {
	f.Add(uint32(1), uint32(10))
	f.Fuzz(func(t *testing.T, index uint32, urlCounts uint32) {
		urlCounts %= 64

		r := roundRobinSwitcher{}
		r.index = index
		r.proxyURLs = make([]*url.URL, urlCounts)

		for i := 0; i < int(urlCounts); i++ {
			r.proxyURLs[i] = &url.URL{}
			r.proxyURLs[i].Host = strconv.Itoa(i)
		}

		p, err := r.GetProxy(nil)
		if urlCounts == 0 {
			assert.EqualError(t, err, "empty proxy urls")
			return
		}

		require.NoError(t, err)
		assert.Same(t, r.proxyURLs[index%urlCounts], p)
	})
}
