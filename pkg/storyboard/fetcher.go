package storyboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"net"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// fetchPlayerResponse issues one player request as the given persona and
// returns the parsed response. Every failure is classified as a *FetchError;
// nothing panics out of this function except a panicking Guard, which is a
// programming error on the caller's side.
func (c *Client) fetchPlayerResponse(ctx context.Context, p persona, videoID string) (doc gjson.Result, ferr *FetchError) {
	// The guard runs before the recovery below is installed: a violated
	// restricted-context precondition must stay fatal.
	c.guard()

	zapFieldClient := zap.String("client", p.name)
	start := time.Now()
	defer func() {
		c.logger.Debug("Player response request took", zap.Duration("duration", time.Since(start)), zapFieldClient)
	}()
	defer func() {
		if r := recover(); r != nil {
			// Should never happen, but a misbehaving transport or notifier
			// must not crash the caller.
			c.logger.Error("Player response fetch panicked", zap.Any("panic", r), zapFieldClient)
			ferr = &FetchError{Kind: FailureInternal, msg: fmt.Sprintf("panic during player response fetch: %v", r)}
		}
	}()

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+playerRoute, bytes.NewReader(p.body(videoID)))
	if err != nil {
		return gjson.Result{}, &FetchError{Kind: FailureInternal, msg: "Couldn't create POST request", cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			c.reportError("Storyboard temporarily not available (API timed out)", err, p.surfaceErrors)
		} else {
			c.reportError(fmt.Sprintf("Storyboard temporarily not available: %v", err), err, p.surfaceErrors)
		}
		return gjson.Result{}, &FetchError{Kind: FailureNetwork, msg: "Couldn't send POST request", cause: err}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		// Always report this, as a non-200 response means something is broken.
		c.reportError(fmt.Sprintf("Storyboard not available: %v", res.StatusCode), nil, true)
		return gjson.Result{}, &FetchError{Kind: FailureBadStatus, StatusCode: res.StatusCode, msg: fmt.Sprintf("Bad POST response: %v", res.StatusCode)}
	}

	resBody, err := ioutil.ReadAll(res.Body)
	if err != nil {
		c.reportError(fmt.Sprintf("Storyboard temporarily not available: %v", err), err, p.surfaceErrors)
		return gjson.Result{}, &FetchError{Kind: FailureNetwork, msg: "Couldn't read response body", cause: err}
	}
	if !gjson.ValidBytes(resBody) {
		c.logger.Error("Player response is not valid JSON", zapFieldClient)
		return gjson.Result{}, &FetchError{Kind: FailureMalformed, msg: "Player response is not valid JSON"}
	}

	return gjson.ParseBytes(resBody), nil
}

// reportError notifies the user if wanted and always logs.
func (c *Client) reportError(message string, cause error, surface bool) {
	if surface {
		c.notifier.Report(message, cause)
	}
	if cause != nil {
		c.logger.Info(message, zap.Error(cause))
	} else {
		c.logger.Info(message)
	}
}
