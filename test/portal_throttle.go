// portal_throttle.go

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	portalbridge "github.com/opengovern/portal-bridge"
	"github.com/opengovern/portal-bridge/adapters"
)

// Fires a burst of concurrent reads at the portal to watch retries and
// rate-limit waits. Metrics are served on -metrics while it runs.
func main() {
	calls := flag.Int("calls", 50, "Number of calls")
	concurrency := flag.Int("concurrency", 8, "Calls in flight")
	metricsAddr := flag.String("metrics", ":9464", "Address for the /metrics endpoint")
	flag.Parse()

	token := os.Getenv("PORTAL_TOKEN")
	if token == "" {
		log.Fatal("PORTAL_TOKEN environment variable not set.")
	}

	cfg, err := portalbridge.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	cfg.Mode = portalbridge.ModeDevelopment

	sdk := portalbridge.NewPortalBridge(cfg, adapters.NewPortalAdapterFromConfig(cfg))
	if err := sdk.TokenStore().SetToken(token); err != nil {
		log.Fatalf("Error storing credential: %v", err)
	}

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(sdk.Metrics().Registry(), promhttp.HandlerOpts{}))
		if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
			log.Printf("metrics server stopped: %v", err)
		}
	}()

	endpoints := []string{"/policies", "/claims", "/auth/me"}
	batch := make([]portalbridge.BatchCall[int], *calls)
	for i := range batch {
		endpoint := endpoints[rand.Intn(len(endpoints))]
		batch[i] = func(ctx context.Context) (int, error) {
			resp, err := sdk.Dispatch(ctx, portalbridge.NewRequestContext(http.MethodGet, endpoint, nil))
			if err != nil {
				return 0, err
			}
			return resp.StatusCode, nil
		}
	}

	start := time.Now()
	statuses, err := portalbridge.BatchLimit(context.Background(), *concurrency, batch...)
	elapsed := time.Since(start)

	ok := 0
	for _, s := range statuses {
		if s != 0 {
			ok++
		}
	}
	fmt.Printf("%d/%d calls succeeded in %s\n", ok, *calls, elapsed)
	if err != nil {
		fmt.Printf("First failure: %v\n", err)
	}
	if info := sdk.GetRateLimitInfo(); info != nil && info.RemainingRequests != nil {
		fmt.Printf("Remaining requests: %d\n", *info.RemainingRequests)
	}
}
