package fetch

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
)

type ProxyFunc func(*http.Request) (*url.URL, error)

var ErrNoProxy = errors.New("empty proxy list")

type roundRobinSwitcher struct {
	proxyURLs []*url.URL
	index     uint32
}

func (r *roundRobinSwitcher) GetProxy(pr *http.Request) (*url.URL, error) {
	if len(r.proxyURLs) == 0 {
		return nil, errors.New("empty proxy urls")
	}
	index := atomic.AddUint32(&r.index, 1) - 1
	u := r.proxyURLs[index%uint32(len(r.proxyURLs))]

	return u, nil
}

// ParseProxy reads one proxy address. A bare host:port is taken as http.
func ParseProxy(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("proxy %q:%w", raw, err)
	}
	switch u.Scheme {
	case "http", "https", "socks5":
	default:
		return nil, fmt.Errorf("proxy %q: unsupported scheme %q", raw, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("proxy %q: missing host", raw)
	}

	return u, nil
}

// RoundRobinProxySwitcher hands out the configured proxies in turn, one per
// page request. Blank entries are ignored.
func RoundRobinProxySwitcher(proxies ...string) (ProxyFunc, error) {
	urls := make([]*url.URL, 0, len(proxies))
	for _, p := range proxies {
		if strings.TrimSpace(p) == "" {
			continue
		}
		u, err := ParseProxy(p)
		if err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	if len(urls) == 0 {
		return nil, ErrNoProxy
	}

	return (&roundRobinSwitcher{proxyURLs: urls}).GetProxy, nil
}
