// Command loadtest drives the rank API with a fixed query mix and prints
// throughput and latency percentiles. Repeating queries across workers
// exercises the result cache; a fraction of requests override the blend
// weights to bypass it.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

type options struct {
	baseURL     string
	concurrency int
	duration    time.Duration
	limit       int
	sweepEvery  int
}

var rankQueries = []string{
	"distributed systems",
	"link analysis",
	"page authority",
	"ranking algorithm",
	"inverted index",
	"term frequency",
	"eigenvector centrality",
	"power iteration",
	"query expansion",
	"cache optimization",
	"relevance scoring",
	"document graph",
	"dangling nodes",
	"score blending",
	"result pagination",
}

type stats struct {
	total   atomic.Int64
	success atomic.Int64
	failed  atomic.Int64

	mu          sync.Mutex
	latencies   []time.Duration
	statusCodes map[int]int64
}

func newStats() *stats {
	return &stats{
		latencies:   make([]time.Duration, 0, 100000),
		statusCodes: make(map[int]int64),
	}
}

func (s *stats) record(latency time.Duration, statusCode int, err error) {
	s.total.Add(1)
	if err != nil {
		s.failed.Add(1)
		return
	}
	if statusCode >= 200 && statusCode < 300 {
		s.success.Add(1)
	} else {
		s.failed.Add(1)
	}

	s.mu.Lock()
	s.latencies = append(s.latencies, latency)
	s.statusCodes[statusCode]++
	s.mu.Unlock()
}

func main() {
	opts := options{}
	flag.StringVar(&opts.baseURL, "url", "http://localhost:8080", "base URL of the ranking service")
	flag.IntVar(&opts.concurrency, "concurrency", 10, "number of concurrent workers")
	flag.DurationVar(&opts.duration, "duration", 30*time.Second, "test duration")
	flag.IntVar(&opts.limit, "limit", 10, "result limit per request (0 for the full ordering)")
	flag.IntVar(&opts.sweepEvery, "sweep-every", 8, "send custom blend weights every Nth request (0 disables)")
	flag.Parse()

	fmt.Println("=== LinkRanker Load Test ===")
	fmt.Printf("Target:      %s\n", opts.baseURL)
	fmt.Printf("Concurrency: %d\n", opts.concurrency)
	fmt.Printf("Duration:    %s\n", opts.duration)
	fmt.Printf("Queries:     %d unique\n", len(rankQueries))
	fmt.Println()

	st := run(opts)
	report(st, opts.duration)
}

func run(opts options) *stats {
	st := newStats()
	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        opts.concurrency * 2,
			MaxIdleConnsPerHost: opts.concurrency * 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.duration)
	defer cancel()

	var wg sync.WaitGroup
	fmt.Print("Running")
	for w := 0; w < opts.concurrency; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			worker(ctx, client, opts, st, workerID)
		}(w)
	}

	progress := time.NewTicker(5 * time.Second)
	defer progress.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-progress.C:
				fmt.Print(".")
			}
		}
	}()

	wg.Wait()
	fmt.Println(" done!")
	fmt.Println()
	return st
}

func worker(ctx context.Context, client *http.Client, opts options, st *stats, workerID int) {
	for seq := workerID; ; seq++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		target := rankURL(opts, rankQueries[seq%len(rankQueries)], seq)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			panic(fmt.Sprintf("creating request: %v", err))
		}

		start := time.Now()
		resp, err := client.Do(req)
		latency := time.Since(start)
		if err != nil {
			st.record(latency, 0, err)
			continue
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		st.record(latency, resp.StatusCode, nil)
	}
}

func rankURL(opts options, query string, seq int) string {
	v := url.Values{}
	v.Set("q", query)
	if opts.limit > 0 {
		v.Set("limit", fmt.Sprintf("%d", opts.limit))
	}
	// Custom weights take the uncached path, so the report covers both.
	if opts.sweepEvery > 0 && seq%opts.sweepEvery == 0 {
		v.Set("content_weight", "0.5")
		v.Set("authority_weight", "0.5")
	}
	return fmt.Sprintf("%s/api/v1/rank?%s", opts.baseURL, v.Encode())
}

func report(st *stats, duration time.Duration) {
	total := st.total.Load()
	success := st.success.Load()
	failed := st.failed.Load()

	fmt.Println("=== Results ===")
	fmt.Printf("Total Requests:  %d\n", total)
	fmt.Printf("Successful:      %d\n", success)
	fmt.Printf("Errors:          %d\n", failed)
	if total > 0 {
		fmt.Printf("Error Rate:      %.2f%%\n", float64(failed)/float64(total)*100)
		fmt.Printf("Requests/sec:    %.2f\n", float64(total)/duration.Seconds())
	}

	st.mu.Lock()
	latencies := make([]time.Duration, len(st.latencies))
	copy(latencies, st.latencies)
	codes := make(map[int]int64, len(st.statusCodes))
	for code, count := range st.statusCodes {
		codes[code] = count
	}
	st.mu.Unlock()

	if len(latencies) > 0 {
		sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

		var sum time.Duration
		for _, l := range latencies {
			sum += l
		}
		avg := sum / time.Duration(len(latencies))

		fmt.Println()
		fmt.Println("=== Latency ===")
		fmt.Printf("Min:    %s\n", latencies[0])
		fmt.Printf("Avg:    %s\n", avg)
		fmt.Printf("P50:    %s\n", percentile(latencies, 50))
		fmt.Printf("P90:    %s\n", percentile(latencies, 90))
		fmt.Printf("P95:    %s\n", percentile(latencies, 95))
		fmt.Printf("P99:    %s\n", percentile(latencies, 99))
		fmt.Printf("Max:    %s\n", latencies[len(latencies)-1])

		var sumSquared float64
		for _, l := range latencies {
			diff := float64(l) - float64(avg)
			sumSquared += diff * diff
		}
		fmt.Printf("StdDev: %s\n", time.Duration(math.Sqrt(sumSquared/float64(len(latencies)))))
	}

	fmt.Println()
	fmt.Println("=== Status Codes ===")
	sorted := make([]int, 0, len(codes))
	for code := range codes {
		sorted = append(sorted, code)
	}
	sort.Ints(sorted)
	for _, code := range sorted {
		fmt.Printf("  %d: %d\n", code, codes[code])
	}

	if total == 0 {
		fmt.Println()
		fmt.Println("WARNING: No requests completed. Is the service running?")
		os.Exit(1)
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
