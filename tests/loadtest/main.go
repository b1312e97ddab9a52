// Command loadtest drives concurrent query traffic against a running aisd
// instance and prints per-endpoint latency percentiles.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
)

var httpClient = &http.Client{
	Timeout: 10 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

type loader struct {
	baseURL string
	ids     []int64
}

func main() {
	baseURL := flag.String("url", "http://127.0.0.1:5000", "aisd base URL")
	workers := flag.Int("workers", 50, "concurrent workers")
	duration := flag.Duration("duration", 10*time.Second, "duration of each phase")
	flag.Parse()

	fmt.Println("=== aisd Query Load Test ===")
	fmt.Printf("Target: %s | Workers: %d | Phase: %s\n\n", *baseURL, *workers, *duration)

	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(*baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	l := &loader{baseURL: *baseURL}
	l.ids = l.discoverIDs()
	fmt.Printf("Discovered %d vessels for route lookups\n", len(l.ids))

	fmt.Println("\n--- Phase 1: Viewport queries (GET /api/positions) ---")
	runPhase(*workers, *duration, func(rng *rand.Rand) result {
		return l.getPositions(rng, "")
	})

	fmt.Println("\n--- Phase 2: Mixed (60% positions, 20% search, 10% route, 10% geofence) ---")
	runPhase(*workers, *duration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.60:
			return l.getPositions(rng, "")
		case r < 0.80:
			return l.getPositions(rng, l.searchTerm(rng))
		case r < 0.90:
			return l.getRoute(rng)
		default:
			return l.postGeofence(rng)
		}
	})
}

// discoverIDs takes vessel ids from one wide positions query.
func (l *loader) discoverIDs() []int64 {
	resp, err := httpClient.Get(l.baseURL + "/api/positions?bounds=-90,-180,90,180&hours=24")
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	var trails []struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&trails); err != nil {
		return nil
	}
	ids := make([]int64, len(trails))
	for i, t := range trails {
		ids[i] = t.ID
	}
	return ids
}

// randomBounds returns a viewport-sized box somewhere over European waters.
func randomBounds(rng *rand.Rand) [4]float64 {
	lat := 35 + rng.Float64()*30
	lon := -20 + rng.Float64()*50
	size := 0.5 + rng.Float64()*4
	return [4]float64{lat, lon, lat + size, lon + size*1.5}
}

func (l *loader) searchTerm(rng *rand.Rand) string {
	if len(l.ids) > 0 && rng.Float64() < 0.5 {
		id := fmt.Sprint(l.ids[rng.Intn(len(l.ids))])
		return id[:min(len(id), 3+rng.Intn(4))]
	}
	names := []string{"maersk", "nordic", "star", "pilot", "tug", "ever"}
	return names[rng.Intn(len(names))]
}

func (l *loader) getPositions(rng *rand.Rand, search string) result {
	b := randomBounds(rng)
	endpoint := "GET /api/positions"
	url := fmt.Sprintf("%s/api/positions?bounds=%.4f,%.4f,%.4f,%.4f&hours=%d", l.baseURL, b[0], b[1], b[2], b[3], 1+rng.Intn(24))
	if search != "" {
		endpoint += " (search)"
		url += "&search=" + search
	}
	return timed(endpoint, http.StatusOK, func() (*http.Response, error) {
		return httpClient.Get(url)
	})
}

func (l *loader) getRoute(rng *rand.Rand) result {
	id := int64(rng.Intn(1_000_000_000))
	if len(l.ids) > 0 {
		id = l.ids[rng.Intn(len(l.ids))]
	}
	return timed("GET /api/route/{id}", http.StatusOK, func() (*http.Response, error) {
		return httpClient.Get(fmt.Sprintf("%s/api/route/%d", l.baseURL, id))
	})
}

func (l *loader) postGeofence(rng *rand.Rand) result {
	zone := func() map[string]any {
		b := randomBounds(rng)
		return map[string]any{"bounds": b[:]}
	}
	body := map[string]any{
		"hours":     1 + rng.Intn(24),
		"whitelist": []any{zone()},
	}
	if rng.Float64() < 0.5 {
		body["blacklist"] = []any{zone()}
	}
	data, _ := json.Marshal(body)
	return timed("POST /api/geofence", http.StatusOK, func() (*http.Response, error) {
		return httpClient.Post(l.baseURL+"/api/geofence", "application/json", bytes.NewReader(data))
	})
}

func timed(endpoint string, want int, do func() (*http.Response, error)) result {
	start := time.Now()
	resp, err := do()
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{endpoint, resp.StatusCode, lat, resp.StatusCode != want}
}

func runPhase(workers int, duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
	stop := make(chan struct{})

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					results <- workFn(rng)
					totalOps.Add(1)
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps, totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-30s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 96))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		fmt.Printf("  %-30s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors,
			fmtDur(avgDuration(s.latencies)),
			fmtDur(percentile(s.latencies, 0.50)),
			fmtDur(percentile(s.latencies, 0.95)),
			fmtDur(percentile(s.latencies, 0.99)))
	}

	if totalOps == 0 {
		fmt.Println("  No requests completed")
		return
	}
	fmt.Println("  " + strings.Repeat("-", 96))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, float64(totalOps)/duration.Seconds())
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dus", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
