package impl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/zflorman/Hillpulse-v3/internal/config"
	"github.com/zflorman/Hillpulse-v3/internal/tweet"
)

const (
	defaultOEmbedBaseURL      = "https://publish.twitter.com/oembed"
	defaultSyndicationBaseURL = "https://cdn.syndication.twimg.com/tweet-result"
)

var (
	paragraphRe = regexp.MustCompile(`(?s)<p[^>]*>(.*?)</p>`)
	tagRe       = regexp.MustCompile(`<[^>]*>`)
)

// The oEmbed markup escapes a small fixed set of entities; anything else is
// passed through untouched.
var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
)

type Fetcher struct {
	client             *http.Client
	oembedBaseURL      string
	syndicationBaseURL string
	userAgent          string
	maxBodySize        int64
	logger             *slog.Logger
}

func NewFetcher(cfg config.TweetEnvConfig, logger *slog.Logger) *Fetcher {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	oembedBaseURL := cfg.OEmbedBaseURL
	if oembedBaseURL == "" {
		oembedBaseURL = defaultOEmbedBaseURL
	}
	syndicationBaseURL := cfg.SyndicationBaseURL
	if syndicationBaseURL == "" {
		syndicationBaseURL = defaultSyndicationBaseURL
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "hillpulse/0.1"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client:             &http.Client{Timeout: timeout},
		oembedBaseURL:      oembedBaseURL,
		syndicationBaseURL: syndicationBaseURL,
		userAgent:          userAgent,
		maxBodySize:        1 << 20, // 1 MiB
		logger:             logger,
	}
}

// Resolve tries the oEmbed endpoint first, then the syndication fallback.
// Both failing degrades to "" rather than an error; the caller proceeds
// without text and rejects the request itself.
func (f *Fetcher) Resolve(ctx context.Context, tweetURL string) (string, error) {
	tweetURL = strings.TrimSpace(tweetURL)
	if tweetURL == "" {
		return "", nil
	}

	if text, err := f.fromOEmbed(ctx, tweetURL); err != nil {
		f.logger.Warn("oembed lookup failed", "url", tweetURL, "error", err)
	} else if text != "" {
		return text, nil
	}

	if text, err := f.fromSyndication(ctx, tweetURL); err != nil {
		f.logger.Warn("syndication lookup failed", "url", tweetURL, "error", err)
	} else if text != "" {
		return text, nil
	}

	return "", nil
}

func (f *Fetcher) fromOEmbed(ctx context.Context, tweetURL string) (string, error) {
	query := url.Values{}
	query.Set("url", tweetURL)
	query.Set("omit_script", "true")
	query.Set("dnt", "true")

	var payload struct {
		HTML string `json:"html"`
	}
	if err := f.getJSON(ctx, f.oembedBaseURL+"?"+query.Encode(), &payload); err != nil {
		return "", err
	}
	return ExtractParagraphText(payload.HTML), nil
}

func (f *Fetcher) fromSyndication(ctx context.Context, tweetURL string) (string, error) {
	id := tweet.IDFromURL(tweetURL)
	if id == "" {
		return "", fmt.Errorf("no status id in %q", tweetURL)
	}

	query := url.Values{}
	query.Set("id", id)
	query.Set("lang", "en")

	var payload struct {
		Text string `json:"text"`
	}
	if err := f.getJSON(ctx, f.syndicationBaseURL+"?"+query.Encode(), &payload); err != nil {
		return "", err
	}
	return strings.TrimSpace(payload.Text), nil
}

func (f *Fetcher) getJSON(ctx context.Context, requestURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

// ExtractParagraphText pulls the first <p> fragment out of oEmbed markup,
// strips the remaining tags and decodes the fixed entity set.
func ExtractParagraphText(markup string) string {
	match := paragraphRe.FindStringSubmatch(markup)
	if match == nil {
		return ""
	}
	text := tagRe.ReplaceAllString(match[1], "")
	return strings.TrimSpace(entityReplacer.Replace(text))
}
