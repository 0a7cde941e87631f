//go:build load
// +build load

// Load driver for the decrypt surface. It is not a test; run it with
// the load tag against an instance started with a vendor module, e.g.
// the testutil stub:
//
//	go run -tags load tests/load/decrypt_load_test.go -addr localhost:8000
//
// Every request runs the full path: routing, capability gate, and one
// vendor module execution, so the numbers reflect the service's real
// per-chapter unlock cost.
package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

var (
	addr     = flag.String("addr", "localhost:8000", "service address")
	site     = flag.String("site", "qidian", "encrypted site to route through")
	requests = flag.Int("requests", 1000, "total number of requests")
	workers  = flag.Int("workers", 10, "number of concurrent workers")
)

// reversePacket matches the testutil vendor module stub.
const reversePacket = `Fock.transform = function(s) { return s.split("").reverse().join(""); };`

type result struct {
	duration time.Duration
	err      error
}

func main() {
	flag.Parse()

	log.Printf("Starting decrypt load test")
	log.Printf("Target: %s", *addr)
	log.Printf("Site: %s", *site)
	log.Printf("Requests: %d", *requests)
	log.Printf("Workers: %d", *workers)

	body, err := json.Marshal(map[string]string{
		"site_id":           *site,
		"encrypted_content": "ABC123",
		"chapter_id":        "42",
		"key_packet":        base64.StdEncoding.EncodeToString([]byte(reversePacket)),
		"user_id":           "load",
	})
	if err != nil {
		log.Fatalf("Failed to build request: %v", err)
	}

	url := fmt.Sprintf("http://%s/decrypt", *addr)
	client := &http.Client{Timeout: 10 * time.Second}

	results := runLoadTest(client, url, body, *requests, *workers)
	analyzeResults(results)
}

func runLoadTest(client *http.Client, url string, body []byte, totalRequests, workers int) []result {
	results := make([]result, 0, totalRequests)
	var mu sync.Mutex

	var completed atomic.Int32
	start := time.Now()

	var wg sync.WaitGroup
	requestsChan := make(chan int, totalRequests)

	for i := 0; i < totalRequests; i++ {
		requestsChan <- i
	}
	close(requestsChan)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for range requestsChan {
				res := executeRequest(client, url, body)

				mu.Lock()
				results = append(results, res)
				mu.Unlock()

				count := completed.Add(1)
				if count%100 == 0 {
					elapsed := time.Since(start)
					rps := float64(count) / elapsed.Seconds()
					log.Printf("Progress: %d/%d requests (%.2f req/sec)",
						count, totalRequests, rps)
				}
			}
		}()
	}

	wg.Wait()

	return results
}

func executeRequest(client *http.Client, url string, body []byte) result {
	start := time.Now()

	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err == nil {
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			err = fmt.Errorf("status %d", resp.StatusCode)
		}
	}

	return result{
		duration: time.Since(start),
		err:      err,
	}
}

func analyzeResults(results []result) {
	if len(results) == 0 {
		log.Println("No results to analyze")
		return
	}

	var (
		totalDuration time.Duration
		successCount  int
		errorCount    int
		durations     []time.Duration
	)

	for _, r := range results {
		totalDuration += r.duration
		if r.err == nil {
			successCount++
		} else {
			errorCount++
		}
		durations = append(durations, r.duration)
	}

	sort.Slice(durations, func(a, b int) bool { return durations[a] < durations[b] })

	total := len(results)
	avgDuration := totalDuration / time.Duration(total)
	p50 := durations[total*50/100]
	p95 := durations[total*95/100]
	p99 := durations[total*99/100]
	maxDuration := durations[total-1]

	fmt.Println("\n========================================")
	fmt.Println("Decrypt Load Test Results")
	fmt.Println("========================================")
	fmt.Printf("Total Requests:    %d\n", total)
	fmt.Printf("Successful:        %d (%.2f%%)\n", successCount, float64(successCount)/float64(total)*100)
	fmt.Printf("Failed:            %d (%.2f%%)\n", errorCount, float64(errorCount)/float64(total)*100)
	fmt.Println("----------------------------------------")
	fmt.Printf("Average Latency:   %v\n", avgDuration)
	fmt.Printf("P50 Latency:       %v\n", p50)
	fmt.Printf("P95 Latency:       %v\n", p95)
	fmt.Printf("P99 Latency:       %v\n", p99)
	fmt.Printf("Max Latency:       %v\n", maxDuration)
	fmt.Println("========================================")
}
