package proxy

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"resty.dev/v3"
)

const (
	probeTimeout     = 5 * time.Second
	probeParallelism = 8
)

// Supplier hands out outbound proxies for catalog downloads in round-robin order.
type Supplier interface {
	// Get returns the next proxy URL, or "" when fetching directly.
	Get() string
	Len() int
}

type supplier struct {
	proxies []string
	current int
	mutex   sync.Mutex
}

// NewSupplier probes the configured proxies against probeURL and keeps the
// ones that answer. An empty list yields a supplier that always goes direct.
func NewSupplier(ctx context.Context, proxies []string, probeURL string) Supplier {
	if len(proxies) == 0 {
		return &supplier{}
	}

	log.Infof("🔄 Probing %d download proxies...", len(proxies))

	healthy := make([]bool, len(proxies))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(probeParallelism)

	for i, proxyURL := range proxies {
		g.Go(func() error {
			healthy[i] = probe(gctx, proxyURL, probeURL)
			return nil
		})
	}
	_ = g.Wait()

	working := make([]string, 0, len(proxies))
	for i, ok := range healthy {
		if ok {
			working = append(working, proxies[i])
		}
	}

	log.Infof("✅ Proxy supplier ready with %d of %d proxies", len(working), len(proxies))
	return &supplier{proxies: working}
}

// Static skips probing; used when proxies are known to be reachable.
func Static(proxies ...string) Supplier {
	return &supplier{proxies: append([]string(nil), proxies...)}
}

func (s *supplier) Get() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(s.proxies) == 0 {
		return ""
	}

	proxyURL := s.proxies[s.current]
	s.current = (s.current + 1) % len(s.proxies)
	return proxyURL
}

func (s *supplier) Len() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.proxies)
}

func probe(ctx context.Context, proxyURL, probeURL string) bool {
	client := resty.New().
		SetTimeout(probeTimeout).
		SetRetryCount(0).
		SetProxy(proxyURL)
	defer client.Close()

	resp, err := client.R().
		SetContext(ctx).
		Head(probeURL)
	if err != nil {
		log.Infof("❌ Proxy %s is not working: %v", proxyURL, err)
		return false
	}
	if resp.IsError() {
		log.Infof("❌ Proxy %s answered %s", proxyURL, resp.Status())
		return false
	}

	log.Debugf("✅ Proxy %s is working", proxyURL)
	return true
}
