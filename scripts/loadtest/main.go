// Loadtest is a concurrent TCP load testing tool that measures throughput,
// latency percentiles, and backend distribution for load balancer testing.
//
// Usage:
//
//	go run ./scripts/loadtest -addr localhost:8080 -concurrency 10 -requests 1000
//	go run ./scripts/loadtest -addr localhost:8080 -concurrency 50 -requests 5000 -csv results.csv -out summary.json
//
// Features:
//   - Concurrent workers for high throughput testing
//   - Per-backend latency and distribution statistics
//   - CSV output with per-connection details
//   - JSON summary with percentiles (p50, p90, p95, p99)
//
// Each request opens a fresh TCP connection, optionally writes a payload,
// reads one HTTP-framed response, and closes. The backend is attributed
// from the demo backend response body ("Response from backend <port>");
// anything else is counted under "(unknown)".
package main

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

func main() {
	var (
		addr        = flag.String("addr", "localhost:8080", "Target host:port")
		concurrency = flag.Int("concurrency", 10, "Number of concurrent workers")
		requests    = flag.Int("requests", 100, "Total number of connections to open")
		payload     = flag.String("payload", "", "Bytes to write after connecting (optional)")
		timeoutSec  = flag.Int("timeout", 10, "Per-connection timeout in seconds")
	)

	outJSON := flag.String("out", "", "Write JSON summary to this file (optional)")
	outCSV := flag.String("csv", "", "Write per-connection CSV to this file (optional)")
	verbose := flag.Bool("v", false, "Verbose per-connection logging to stdout")
	flag.Parse()

	timeout := time.Duration(*timeoutSec) * time.Second

	jobs := make(chan int)
	var wg sync.WaitGroup

	var total int32
	var success int32
	var failure int32

	// BackendStats tracks statistics for a specific backend server.
	type BackendStats struct {
		Count     int32           `json:"count"`
		Success   int32           `json:"success"`
		Failure   int32           `json:"failure"`
		Latencies []time.Duration `json:"-"`
	}

	backendStats := make(map[string]*BackendStats)
	var backendMu sync.Mutex

	var allLatencies []time.Duration
	var latMu sync.Mutex

	statusCodes := make(map[int]int32)
	var statusMu sync.Mutex

	// open CSV if requested
	var csvFile *os.File
	var csvWriter *csv.Writer
	var csvMu sync.Mutex
	if *outCSV != "" {
		f, err := os.Create(*outCSV)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create csv file: %v\n", err)
			os.Exit(1)
		}
		csvFile = f
		csvWriter = csv.NewWriter(f)
		// header
		csvWriter.Write([]string{"idx", "timestamp", "backend", "status", "duration_ms"})
	}

	testStart := time.Now()

	// worker
	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for idx := range jobs {
				atomic.AddInt32(&total, 1)
				start := time.Now()

				backend, status, err := doRequest(*addr, *payload, timeout)
				dur := time.Since(start)

				// record overall latency
				latMu.Lock()
				allLatencies = append(allLatencies, dur)
				latMu.Unlock()

				if err != nil {
					atomic.AddInt32(&failure, 1)
					if *verbose {
						fmt.Printf("[%d] idx=%d error=%v\n", workerID, idx, err)
					}
					continue
				}

				// status code map
				statusMu.Lock()
				statusCodes[status]++
				statusMu.Unlock()

				ok := status >= 200 && status <= 299
				if ok {
					atomic.AddInt32(&success, 1)
				} else {
					atomic.AddInt32(&failure, 1)
				}

				backendMu.Lock()
				bs, found := backendStats[backend]
				if !found {
					bs = &BackendStats{}
					backendStats[backend] = bs
				}
				bs.Count++
				if ok {
					bs.Success++
				} else {
					bs.Failure++
				}
				bs.Latencies = append(bs.Latencies, dur)
				backendMu.Unlock()

				// optional CSV row and verbose
				if csvWriter != nil {
					csvMu.Lock()
					csvWriter.Write([]string{
						fmt.Sprintf("%d", idx),
						time.Now().Format(time.RFC3339Nano),
						backend,
						fmt.Sprintf("%d", status),
						fmt.Sprintf("%.3f", float64(dur.Microseconds())/1000.0),
					})
					csvMu.Unlock()
				}

				if *verbose {
					fmt.Printf("[%d] idx=%d backend=%s status=%d dur=%v\n", workerID, idx, backend, status, dur)
				}
			}
		}(i)
	}

	// send jobs
	go func() {
		for i := 0; i < *requests; i++ {
			jobs <- i
		}
		close(jobs)
	}()

	wg.Wait()
	testEnd := time.Now()

	if csvWriter != nil {
		csvWriter.Flush()
		csvFile.Close()
	}

	// summarize
	totalDuration := testEnd.Sub(testStart)
	throughput := float64(total) / totalDuration.Seconds()

	fmt.Println("--- Load Test Summary ---")
	fmt.Printf("Target: %s\n", *addr)
	fmt.Printf("Connections: %d  Concurrency: %d\n", *requests, *concurrency)
	fmt.Printf("Total sent: %d  Success: %d  Failure: %d\n", total, success, failure)
	fmt.Printf("Duration: %v  Throughput: %.2f conn/s\n", totalDuration, throughput)

	// status codes
	fmt.Println("\nStatus codes:")
	statusMu.Lock()
	var scKeys []int
	for k := range statusCodes {
		scKeys = append(scKeys, k)
	}
	sort.Ints(scKeys)
	for _, k := range scKeys {
		fmt.Printf("  %d -> %d\n", k, statusCodes[k])
	}
	statusMu.Unlock()

	// backends
	fmt.Println("\nBackend distribution & stats:")
	backendMu.Lock()
	var backendKeys []string
	for k := range backendStats {
		backendKeys = append(backendKeys, k)
	}
	sort.Strings(backendKeys)
	for _, k := range backendKeys {
		bs := backendStats[k]
		// compute latency stats for this backend
		var min, max time.Duration
		var sum time.Duration
		latCount := len(bs.Latencies)
		if latCount > 0 {
			min = bs.Latencies[0]
			for _, d := range bs.Latencies {
				if d < min {
					min = d
				}
				if d > max {
					max = d
				}
				sum += d
			}
		}
		var avg time.Duration
		if latCount > 0 {
			avg = sum / time.Duration(latCount)
		}

		// percentiles
		var p50, p90, p95, p99 time.Duration
		if latCount > 0 {
			// make a copy and sort
			tmp := make([]time.Duration, latCount)
			copy(tmp, bs.Latencies)
			sort.Slice(tmp, func(i, j int) bool { return tmp[i] < tmp[j] })
			p := func(pct float64) time.Duration {
				idx := int(float64(len(tmp)-1) * pct)
				if idx < 0 {
					idx = 0
				}
				if idx >= len(tmp) {
					idx = len(tmp) - 1
				}
				return tmp[idx]
			}
			p50 = p(0.50)
			p90 = p(0.90)
			p95 = p(0.95)
			p99 = p(0.99)
		}

		fmt.Printf("  %s -> total=%d success=%d failure=%d\n", k, bs.Count, bs.Success, bs.Failure)
		if latCount > 0 {
			fmt.Printf("    latencies: samples=%d min=%v avg=%v max=%v p50=%v p90=%v p95=%v p99=%v\n",
				latCount, min, avg, max, p50, p90, p95, p99)
		}
	}
	backendMu.Unlock()

	// overall latencies
	if len(allLatencies) > 0 {
		tmp := make([]time.Duration, len(allLatencies))
		copy(tmp, allLatencies)
		sort.Slice(tmp, func(i, j int) bool { return tmp[i] < tmp[j] })
		var sum time.Duration
		for _, d := range tmp {
			sum += d
		}
		avg := sum / time.Duration(len(tmp))
		fmt.Println("\nOverall latencies:")
		fmt.Printf("  samples=%d min=%v avg=%v max=%v p50=%v p90=%v p95=%v p99=%v\n",
			len(tmp), tmp[0], avg, tmp[len(tmp)-1], tmp[int(0.5*float64(len(tmp)-1))], tmp[int(0.9*float64(len(tmp)-1))], tmp[int(0.95*float64(len(tmp)-1))], tmp[int(0.99*float64(len(tmp)-1))])
	}

	// quick memory/CPU hint
	fmt.Printf("\nGOMAXPROCS=%d  NumGoroutine=%d\n", runtime.GOMAXPROCS(0), runtime.NumGoroutine())

	// optional JSON output
	if *outJSON != "" {
		type BackendSummary struct {
			Total   int32   `json:"total"`
			Success int32   `json:"success"`
			Failure int32   `json:"failure"`
			P50     float64 `json:"p50_ms"`
			P90     float64 `json:"p90_ms"`
			P95     float64 `json:"p95_ms"`
			P99     float64 `json:"p99_ms"`
		}
		report := map[string]interface{}{}
		report["target"] = *addr
		report["requests"] = *requests
		report["concurrency"] = *concurrency
		report["total_sent"] = total
		report["success"] = success
		report["failure"] = failure
		report["duration_ms"] = totalDuration.Milliseconds()
		report["throughput_rps"] = throughput

		bsum := map[string]BackendSummary{}
		backendMu.Lock()
		for k, v := range backendStats {
			bs := BackendSummary{Total: v.Count, Success: v.Success, Failure: v.Failure}
			if len(v.Latencies) > 0 {
				tmp := make([]time.Duration, len(v.Latencies))
				copy(tmp, v.Latencies)
				sort.Slice(tmp, func(i, j int) bool { return tmp[i] < tmp[j] })
				pick := func(p float64) float64 { return float64(tmp[int(float64(len(tmp)-1)*p)].Milliseconds()) }
				bs.P50 = pick(0.50)
				bs.P90 = pick(0.90)
				bs.P95 = pick(0.95)
				bs.P99 = pick(0.99)
			}
			bsum[k] = bs
		}
		backendMu.Unlock()
		report["backends"] = bsum

		f, err := os.Create(*outJSON)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create json file: %v\n", err)
			os.Exit(1)
		}
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		enc.Encode(report)
		f.Close()
		fmt.Printf("\nWrote JSON summary to %s\n", *outJSON)
	}

	// exit with non-zero if there were failures
	if failure > 0 {
		os.Exit(2)
	}
}

// doRequest opens one connection, reads a single HTTP-framed response, and
// reports which backend answered it plus the parsed status code.
func doRequest(addr, payload string, timeout time.Duration) (string, int, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return "", 0, err
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(timeout))

	if payload != "" {
		if _, err := conn.Write([]byte(payload)); err != nil {
			return "", 0, err
		}
	}

	return readResponse(conn)
}

// readResponse parses status line and headers, then reads exactly
// Content-Length body bytes. Reading to EOF would wait on the balancer
// keeping the connection open, so framing by Content-Length matters here.
func readResponse(conn net.Conn) (string, int, error) {
	reader := bufio.NewReader(conn)

	statusLine, err := reader.ReadString('\n')
	if err != nil {
		return "", 0, err
	}

	status := 0
	parts := strings.Fields(statusLine)
	if len(parts) >= 2 {
		status, _ = strconv.Atoi(parts[1])
	}

	contentLength := 0
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", status, err
		}
		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed == "" {
			break
		}
		if v, ok := strings.CutPrefix(strings.ToLower(trimmed), "content-length:"); ok {
			contentLength, _ = strconv.Atoi(strings.TrimSpace(v))
		}
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(reader, body); err != nil {
		return "", status, err
	}

	backend := "(unknown)"
	if rest, ok := strings.CutPrefix(strings.TrimSpace(string(body)), "Response from backend "); ok {
		backend = rest
	}

	return backend, status, nil
}
