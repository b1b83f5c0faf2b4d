package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/doingodswork/yt-storyboard/pkg/storyboard"
)

var (
	videoID = flag.String("videoID", "", "ID of the video to resolve the storyboard for")
	baseURL = flag.String("baseURL", "https://youtubei.googleapis.com", "Base URL of the innertube API")
	timeout = flag.Duration("timeout", 5*time.Second, "Timeout for a single player response request")
)

// stderrNotifier prints the reports a player would show as toasts.
type stderrNotifier struct{}

func (stderrNotifier) Report(message string, cause error) {
	if cause != nil {
		fmt.Fprintf(os.Stderr, "%v: %v\n", message, cause)
		return
	}
	fmt.Fprintln(os.Stderr, message)
}

func main() {
	ctx := context.Background()
	flag.Parse()

	// Precondition checks
	if *videoID == "" {
		log.Fatal("videoID CLI argument must not be empty")
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Couldn't create logger: %v", err)
	}
	defer logger.Sync()

	sbOpts := storyboard.NewClientOpts(*baseURL, *timeout)
	sbClient, err := storyboard.NewClient(sbOpts, stderrNotifier{}, nil, logger)
	if err != nil {
		log.Fatalf("Couldn't create storyboard client: %v", err)
	}

	res := sbClient.Resolve(ctx, *videoID)
	switch res.Kind {
	case storyboard.Resolved:
		fmt.Printf("Storyboard resolved successfully: spec=%v isLiveStream=%v", res.Renderer.Spec, res.Renderer.IsLiveStream)
		if res.Renderer.RecommendedLevel != nil {
			fmt.Printf(" recommendedLevel=%v", *res.Renderer.RecommendedLevel)
		}
		fmt.Println()
	case storyboard.ConfirmedEmpty:
		fmt.Println("Video confirmed to have no storyboard")
	default:
		log.Fatalf("Couldn't resolve storyboard: %v", res.Err)
	}
}
