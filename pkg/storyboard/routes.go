package storyboard

import (
	"fmt"
	"strings"
)

// playerRoute is the innertube player endpoint with a fields filter that keeps
// the response small. The error screen must be included because the premiere
// trailer fallback digs the real player response out of it.
const playerRoute = "/youtubei/v1/player" +
	"?fields=storyboards.playerStoryboardSpecRenderer," +
	"storyboards.playerLiveStoryboardSpecRenderer," +
	"playabilityStatus.status,playabilityStatus.errorScreen"

// persona is one of the client identities the player endpoint can be asked
// as. Each one gets a different response envelope and fails in different ways,
// which is what the whole fallback chain is about.
type persona struct {
	name         string
	bodyTemplate string
	// surfaceErrors decides whether timeouts and IO errors are reported to
	// the Notifier. Non-200 statuses are always reported.
	surfaceErrors bool
}

var (
	// androidPersona is the primary attempt. Silent, because the TV embedded
	// fallback still runs after it.
	androidPersona = persona{
		name: "Android",
		bodyTemplate: `{"context":{"client":{"clientName":"ANDROID","clientVersion":"18.19.35","androidSdkVersion":33,"osName":"Android","osVersion":"13"}},"videoId":"%s"}`,
	}

	// tvEmbeddedPersona is the last resort for the regular chain, so its
	// failures are the ones worth telling the user about. Its template needs
	// the video id twice: once for the embed URL and once as the video id.
	tvEmbeddedPersona = persona{
		name: "TVEmbedded",
		bodyTemplate: `{"context":{"client":{"clientName":"TVHTML5_SIMPLY_EMBEDDED_PLAYER","clientVersion":"2.0"},"thirdParty":{"embedUrl":"https://www.youtube.com/watch?v=%s"}},"videoId":"%s"}`,
		surfaceErrors: true,
	}

	// webPersona is only used for the premiere trailer fallback. The Android
	// client wraps the trailer's player response in a base64-like encoding,
	// the web client delivers it unserialized.
	webPersona = persona{
		name: "Web",
		bodyTemplate: `{"context":{"client":{"clientName":"WEB","clientVersion":"2.20220918"}},"videoId":"%s"}`,
	}
)

// body renders the persona's innertube request body for the given video id,
// substituting the id as often as the template requires it.
func (p persona) body(videoID string) []byte {
	n := strings.Count(p.bodyTemplate, "%s")
	args := make([]interface{}, n)
	for i := range args {
		args[i] = videoID
	}
	return []byte(fmt.Sprintf(p.bodyTemplate, args...))
}
