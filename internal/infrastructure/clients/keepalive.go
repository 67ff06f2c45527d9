package clients

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/go-resty/resty/v2"
)

// KeepAlive pings a URL so that idle hosting does not put the service to sleep.
type KeepAlive struct {
	url  string
	http *resty.Client
}

func NewKeepAlive(url string, timeout time.Duration) *KeepAlive {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &KeepAlive{
		url:  url,
		http: resty.New().SetTimeout(timeout),
	}
}

func (k *KeepAlive) Ping(ctx context.Context) error {
	resp, err := k.http.R().SetContext(ctx).Get(k.url)
	if err != nil {
		log.FromContext(ctx).WithError(err).Warn("Keep-alive ping failed")
		return fmt.Errorf("keep-alive ping failed: %w", err)
	}
	if resp.IsError() {
		log.FromContext(ctx).WithField("status", resp.StatusCode()).Warn("Keep-alive ping failed")
		return fmt.Errorf("keep-alive ping returned %d", resp.StatusCode())
	}

	log.FromContext(ctx).WithField("status", resp.StatusCode()).Debug("Keep-alive ping ok")
	return nil
}
