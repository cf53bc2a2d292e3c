// Package ingest sequences a webhook payload through text resolution,
// duplicate suppression, summarization and notification fanout.
package ingest

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/zflorman/Hillpulse-v3/internal/dedupe"
	"github.com/zflorman/Hillpulse-v3/internal/notify"
	"github.com/zflorman/Hillpulse-v3/internal/summarizer"
	"github.com/zflorman/Hillpulse-v3/internal/tweet"
)

type Request struct {
	TweetID string
	URL     string
	Author  string
	Text    string
}

type Result struct {
	Duplicate bool
	Filtered  bool
	Summary   string
	Pushed    bool
	Emailed   bool
}

type Pipeline struct {
	resolver   tweet.Resolver
	store      dedupe.SeenStore // nil disables duplicate suppression
	summarizer *summarizer.Summarizer
	notifiers  []notify.Notifier
	filter     *Filter // nil disables filtering
	logger     *slog.Logger
}

func New(resolver tweet.Resolver, store dedupe.SeenStore, s *summarizer.Summarizer, notifiers []notify.Notifier, filter *Filter, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		resolver:   resolver,
		store:      store,
		summarizer: s,
		notifiers:  notifiers,
		filter:     filter,
		logger:     logger,
	}
}

// Process runs one request through the pipeline. The returned error, when
// non-nil, is one of the typed errors in this package.
func (p *Pipeline) Process(ctx context.Context, req Request) (Result, error) {
	id := strings.TrimSpace(req.TweetID)
	if id == "" {
		id = tweet.IDFromURL(req.URL)
	}

	text := strings.TrimSpace(req.Text)
	if text == "" && req.URL != "" && p.resolver != nil {
		resolved, err := p.resolver.Resolve(ctx, req.URL)
		if err != nil {
			// Resolution is best-effort; a failed lookup degrades to no text.
			p.logger.Warn("tweet text resolution failed", "url", req.URL, "error", err)
		}
		text = strings.TrimSpace(resolved)
	}
	if text == "" {
		return Result{}, &ValidationError{Msg: "no tweet text could be resolved"}
	}
	req.Text = text

	if p.filter != nil {
		keep, err := p.filter.Match(req)
		if err != nil {
			// A broken rule must not drop traffic on the floor.
			p.logger.Warn("ingest filter error, passing request through", "error", err)
			keep = true
		}
		if !keep {
			p.logger.Info("request filtered", "tweet_id", id, "author", req.Author)
			return Result{Filtered: true}, nil
		}
	}

	if p.store != nil && id != "" {
		seen, err := p.store.HasSeen(ctx, id)
		if err != nil {
			p.logger.Warn("dedup lookup failed, treating as unseen", "tweet_id", id, "error", err)
		}
		if seen {
			p.logger.Info("duplicate suppressed", "tweet_id", id)
			return Result{Duplicate: true}, nil
		}
		if err := p.store.MarkSeen(ctx, id); err != nil {
			p.logger.Warn("dedup mark failed", "tweet_id", id, "error", err)
		}
	}

	summary, err := p.summarizer.Summarize(ctx, text, req.Author, req.URL)
	if err != nil {
		if errors.Is(err, summarizer.ErrMissingAPIKey) {
			return Result{}, &ConfigurationError{Err: err}
		}
		return Result{}, &UpstreamError{Err: err}
	}

	deliveries := notify.Fanout(ctx, p.logger, p.notifiers, notify.Notification{
		Title:   "HillPulse",
		Message: summary,
		URL:     req.URL,
	})

	result := Result{
		Summary: summary,
		Pushed:  notify.Delivered(deliveries, "pushover"),
		Emailed: notify.Delivered(deliveries, "email"),
	}
	p.logger.Info("ingest processed",
		"tweet_id", id,
		"author", req.Author,
		"pushed", result.Pushed,
		"emailed", result.Emailed,
	)
	return result, nil
}
