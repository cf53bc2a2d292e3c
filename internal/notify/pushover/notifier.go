package pushover

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zflorman/Hillpulse-v3/internal/config"
	"github.com/zflorman/Hillpulse-v3/internal/notify"
)

const defaultEndpoint = "https://api.pushover.net/1/messages.json"

type Notifier struct {
	client   *http.Client
	token    string
	userKey  string
	endpoint string
}

func New(cfg config.PushoverEnvConfig) *Notifier {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Notifier{
		client:   &http.Client{Timeout: timeout},
		token:    cfg.Token,
		userKey:  cfg.UserKey,
		endpoint: endpoint,
	}
}

func (n *Notifier) Name() string { return "pushover" }

// Notify posts one form-encoded message. There is no retry; a push that
// fails is reported in the fanout outcome and dropped.
func (n *Notifier) Notify(ctx context.Context, notification notify.Notification) error {
	if n.token == "" || n.userKey == "" {
		return notify.ErrNotConfigured
	}

	form := url.Values{}
	form.Set("token", n.token)
	form.Set("user", n.userKey)
	form.Set("title", notification.Title)
	form.Set("message", notification.Message)
	if notification.URL != "" {
		form.Set("url", notification.URL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("pushover: unexpected status %d", resp.StatusCode)
	}
	return nil
}
