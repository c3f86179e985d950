// Package culler checks bookmark URLs and groups the dead ones into an
// outline that the restructurer can apply.
package culler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/nikbrunner/bmr/internal/model"
	"github.com/nikbrunner/bmr/internal/outline"
)

// Status represents the health status of a URL.
type Status int

const (
	Healthy     Status = iota // 2xx or 3xx response
	Dead                      // 404 or 410 Gone
	Unreachable               // timeout, DNS failure, connection refused, etc.
)

func (s Status) String() string {
	switch s {
	case Healthy:
		return "healthy"
	case Dead:
		return "dead"
	default:
		return "unreachable"
	}
}

// Result holds the check result for a single bookmark.
type Result struct {
	Node       model.Node
	Status     Status
	StatusCode int    // 0 if the connection failed
	Error      string // set for unreachable URLs
}

// ProgressFunc is called after each URL is checked.
type ProgressFunc func(completed, total int)

// Options configures a check run.
type Options struct {
	Concurrency int
	Timeout     time.Duration
	// ExcludeDomains lists hosts where a 404 likely means "private", not dead.
	ExcludeDomains []string
	OnProgress     ProgressFunc
	Client         *http.Client // optional
	Logger         *slog.Logger
}

const (
	defaultConcurrency = 10
	defaultTimeout     = 10 * time.Second
)

// Bookmarks flattens roots into its bookmarks, skipping folders.
func Bookmarks(roots []model.Node) []model.Node {
	var out []model.Node
	model.Walk(roots, func(n *model.Node) bool {
		if !n.IsFolder() {
			c := *n
			c.Children = nil
			out = append(out, c)
		}
		return true
	})
	return out
}

// CheckURLs checks every node's URL concurrently. Results keep the input order.
// Cancelling ctx marks the remaining URLs unreachable.
func CheckURLs(ctx context.Context, nodes []model.Node, opts Options) []Result {
	if len(nodes) == 0 {
		return nil
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	excludeMap := make(map[string]bool)
	for _, domain := range opts.ExcludeDomains {
		excludeMap[strings.ToLower(domain)] = true
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{
			Timeout: opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		}
	}

	results := make([]Result, len(nodes))
	jobs := make(chan int, len(nodes))
	var wg sync.WaitGroup

	var progressMu sync.Mutex
	completed := 0

	for range opts.Concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = checkURL(ctx, client, nodes[idx], excludeMap)
				opts.Logger.Debug("culler: checked",
					"url", nodes[idx].URL,
					"status", results[idx].Status.String(),
					"code", results[idx].StatusCode,
				)

				if opts.OnProgress != nil {
					progressMu.Lock()
					completed++
					opts.OnProgress(completed, len(nodes))
					progressMu.Unlock()
				}
			}
		}()
	}

	for i := range nodes {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

func checkURL(ctx context.Context, client *http.Client, node model.Node, excludeMap map[string]bool) Result {
	result := Result{Node: node}

	// HEAD first, some servers only answer GET
	resp, err := do(ctx, client, http.MethodHead, node.URL)
	if err != nil {
		resp, err = do(ctx, client, http.MethodGet, node.URL)
		if err != nil {
			result.Status = Unreachable
			result.Error = normalizeError(err.Error())
			return result
		}
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		result.Status = Healthy
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		if isExcludedDomain(node.URL, excludeMap) {
			result.Status = Unreachable
			result.Error = "Possibly private (auth required)"
		} else {
			result.Status = Dead
		}
	default:
		// 403, 500 and friends may be temporary or need auth
		result.Status = Unreachable
		result.Error = http.StatusText(resp.StatusCode)
	}

	return result
}

func do(ctx context.Context, client *http.Client, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return client.Do(req)
}

// isExcludedDomain checks if the URL's host or a parent domain is excluded.
func isExcludedDomain(rawURL string, excludeMap map[string]bool) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	if excludeMap[host] {
		return true
	}
	for domain := range excludeMap {
		if strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// normalizeError simplifies verbose error messages into readable categories.
func normalizeError(errStr string) string {
	lower := strings.ToLower(errStr)

	switch {
	case strings.Contains(lower, "no such host"):
		return "DNS failure"
	case strings.Contains(lower, "context deadline exceeded"),
		strings.Contains(lower, "timeout"):
		return "Timeout"
	case strings.Contains(lower, "connection refused"):
		return "Connection refused"
	case strings.Contains(lower, "certificate"):
		return "TLS/certificate error"
	case strings.Contains(lower, "network is unreachable"):
		return "Network unreachable"
	case strings.Contains(lower, "tls:"):
		return "TLS error"
	default:
		return errStr
	}
}

// DeadOutline renders an outline that moves every dead bookmark into
// folder. It is empty when nothing is dead.
func DeadOutline(results []Result, folder string) string {
	var dead []model.Node
	for _, r := range results {
		if r.Status == Dead {
			dead = append(dead, r.Node)
		}
	}
	if len(dead) == 0 {
		return ""
	}
	return outline.Render([]model.Node{{Title: folder, Children: dead}})
}
