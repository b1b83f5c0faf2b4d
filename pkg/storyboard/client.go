package storyboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/doingodswork/yt-storyboard/pkg/videotype"
)

const (
	statusOK                = "OK"
	statusLiveStreamOffline = "LIVE_STREAM_OFFLINE"
)

// trailerResponsePath is where the web client nests the real player response
// for premieres that only have a trailer so far.
const trailerResponsePath = "playabilityStatus.errorScreen.ypcTrailerRenderer.unserializedPlayerResponse"

type ClientOptions struct {
	BaseURL string
	Timeout time.Duration
	// HTTPClient replaces the default transport when set.
	HTTPClient HTTPDoer
	// Guard is invoked at the start of every upstream request. Callers that
	// must keep these blocking requests off a latency-sensitive goroutine can
	// install a check that panics on violation. A panicking guard is a
	// programming error and is not converted into a fetch failure.
	Guard func()
}

func NewClientOpts(baseURL string, timeout time.Duration) ClientOptions {
	return ClientOptions{
		BaseURL: baseURL,
		Timeout: timeout,
	}
}

var DefaultClientOpts = ClientOptions{
	BaseURL: "https://youtubei.googleapis.com",
	Timeout: 5 * time.Second,
}

// Client resolves storyboard renderers by asking the innertube player
// endpoint as up to three different client personas. It keeps no state across
// Resolve calls, so a single Client is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
	guard      func()
	notifier   Notifier
	typeCell   *videotype.Cell
	logger     *zap.Logger
}

// NewClient creates a new storyboard client.
// notifier receives the user-visible failure reports and may be nil.
// typeCell, when not nil, is updated with the detected video type on every
// successful resolution.
func NewClient(opts ClientOptions, notifier Notifier, typeCell *videotype.Cell, logger *zap.Logger) (*Client, error) {
	// Precondition check
	if opts.BaseURL == "" {
		return nil, errors.New("opts.BaseURL must not be empty")
	}

	if notifier == nil {
		notifier = nopNotifier{}
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: opts.Timeout,
			// One connection per request. The player endpoint is hit at most
			// three times per resolution, keeping connections around isn't
			// worth it.
			Transport: &http.Transport{
				DisableKeepAlives: true,
			},
		}
	}
	guard := opts.Guard
	if guard == nil {
		guard = func() {}
	}

	return &Client{
		baseURL:    opts.BaseURL,
		httpClient: httpClient,
		guard:      guard,
		notifier:   notifier,
		typeCell:   typeCell,
		logger:     logger,
	}, nil
}

// Resolve determines the storyboard renderer for the given video id.
// It tries the Android client first and the TV embedded client second,
// stopping at the first concrete answer. A video confirmed to have no
// storyboard is a concrete answer and stops the chain just like a renderer
// does; only when both attempts fail is the resolution Unresolved.
// No failure escapes this method, the combined attempt errors end up in the
// resolution's Err field.
func (c *Client) Resolve(ctx context.Context, videoID string) Resolution {
	// Precondition check
	if videoID == "" {
		return unresolved(errors.New("videoID must not be empty"))
	}

	zapFieldVideoID := zap.String("videoID", videoID)

	res := c.resolveWith(ctx, androidPersona, videoID)
	if res.Kind != Unresolved {
		return res
	}
	c.logger.Debug("Video not available using Android client", zapFieldVideoID)

	tvRes := c.resolveWith(ctx, tvEmbeddedPersona, videoID)
	if tvRes.Kind != Unresolved {
		return tvRes
	}
	c.logger.Debug("Video not available using TV embedded client", zapFieldVideoID)

	return unresolved(multierr.Append(res.Err, tvRes.Err))
}

// resolveWith runs one top-level attempt: fetch as the persona, dispatch on
// the playability status, and for offline premieres run exactly one trailer
// sub-attempt before the attempt counts as exhausted.
func (c *Client) resolveWith(ctx context.Context, p persona, videoID string) Resolution {
	doc, ferr := c.fetchPlayerResponse(ctx, p, videoID)
	if ferr != nil {
		return unresolved(fmt.Errorf("%v client: %w", p.name, ferr))
	}

	switch status := playabilityStatus(doc); status {
	case statusOK:
		return c.extractRenderer(doc, false)
	case statusLiveStreamOffline:
		// Premiere placeholder. The Android client wraps the trailer's
		// player response in a base64-like encoding, so an additional fetch
		// with the web client is required for the unserialized one.
		return c.resolveTrailer(ctx, videoID)
	default:
		return unresolved(fmt.Errorf("%v client: playability status %q", p.name, status))
	}
}

// playabilityStatus returns the playability status of a player response, or
// an empty string if the response doesn't contain one. Callers must treat ""
// as "unknown", never as a status of its own.
func playabilityStatus(doc gjson.Result) string {
	status := doc.Get("playabilityStatus.status")
	if status.Type != gjson.String {
		return ""
	}
	return status.String()
}

// extractRenderer pulls the storyboard renderer out of a player response
// whose status the caller already confirmed to be OK.
func (c *Client) extractRenderer(doc gjson.Result, viaTrailer bool) Resolution {
	storyboards := doc.Get("storyboards")
	if !storyboards.Exists() {
		// The video genuinely has no storyboard. Not a failure.
		c.logger.Debug("Player response has no storyboards, using empty storyboard")
		return Resolution{Kind: ConfirmedEmpty}
	}

	rendererKey := "playerStoryboardSpecRenderer"
	isLiveStream := storyboards.Get("playerLiveStoryboardSpecRenderer").Exists()
	if isLiveStream {
		rendererKey = "playerLiveStoryboardSpecRenderer"
	}
	rendererElement := storyboards.Get(rendererKey)

	spec := rendererElement.Get("spec")
	if spec.Type != gjson.String {
		// A storyboards object without a proper spec is a broken response,
		// not a confirmed-empty one.
		c.logger.Error("Couldn't get storyboard spec from player response", zap.String("rendererKey", rendererKey))
		return unresolved(fmt.Errorf("storyboards.%v doesn't contain a spec string", rendererKey))
	}

	renderer := Renderer{
		Spec:         spec.String(),
		IsLiveStream: isLiveStream,
	}
	if level := rendererElement.Get("recommendedLevel"); level.Exists() {
		if level.Type != gjson.Number {
			c.logger.Error("Storyboard recommendedLevel is not a number", zap.String("rendererKey", rendererKey))
			return unresolved(fmt.Errorf("storyboards.%v.recommendedLevel is not a number", rendererKey))
		}
		recommendedLevel := int(level.Int())
		renderer.RecommendedLevel = &recommendedLevel
	}

	c.publishVideoType(renderer, viaTrailer)
	c.logger.Debug("Fetched storyboard renderer", zap.String("spec", renderer.Spec), zap.Bool("isLiveStream", renderer.IsLiveStream))

	return Resolution{Kind: Resolved, Renderer: renderer}
}

// resolveTrailer re-fetches with the web client and extracts the renderer
// from the nested unserialized player response. Always silent: the regular
// chain continues after this, so there's nothing to tell the user yet.
func (c *Client) resolveTrailer(ctx context.Context, videoID string) Resolution {
	doc, ferr := c.fetchPlayerResponse(ctx, webPersona, videoID)
	if ferr != nil {
		return unresolved(fmt.Errorf("Web client: %w", ferr))
	}

	nested := doc.Get(trailerResponsePath)
	if !nested.IsObject() {
		c.logger.Error("Couldn't get unserialized player response from trailer response", zap.String("videoID", videoID))
		return unresolved(errors.New("Web client: trailer response doesn't contain an unserialized player response"))
	}

	if status := playabilityStatus(nested); status != statusOK {
		return unresolved(fmt.Errorf("Web client: trailer playability status %q", status))
	}
	return c.extractRenderer(nested, true)
}

func (c *Client) publishVideoType(renderer Renderer, viaTrailer bool) {
	if c.typeCell == nil {
		return
	}
	switch {
	case viaTrailer:
		c.typeCell.Set(videotype.Premiere)
	case renderer.IsLiveStream:
		c.typeCell.Set(videotype.LiveStream)
	default:
		c.typeCell.Set(videotype.OnDemand)
	}
}
