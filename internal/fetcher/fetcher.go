package fetcher

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// Client is the HTTP client used for fetching postings
var Client = &http.Client{Timeout: 30 * time.Second}

// Title retrieves a job posting and returns its page title, falling back to
// the first <h1>
func Title(rawURL string) (string, error) {
	// Validate URL
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme == "" {
		u, err = url.Parse("https://" + strings.TrimSpace(rawURL))
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}

	req, err := http.NewRequest("GET", u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "jobtrack/1.0")

	resp, err := Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	// Read body with size limit (5MB)
	doc, err := html.Parse(io.LimitReader(resp.Body, 5*1024*1024))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	if title := firstText(doc, "title"); title != "" {
		return title, nil
	}
	if h1 := firstText(doc, "h1"); h1 != "" {
		return h1, nil
	}
	return "", fmt.Errorf("no title found")
}

// IsURL checks if a string looks like a URL
func IsURL(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "http://") ||
		strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "www.")
}

// firstText returns the collapsed text of the first element named tag
func firstText(n *html.Node, tag string) string {
	if n.Type == html.ElementNode && n.Data == tag {
		var sb strings.Builder
		var collect func(*html.Node)
		collect = func(n *html.Node) {
			if n.Type == html.TextNode {
				sb.WriteString(n.Data)
				sb.WriteString(" ")
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				collect(c)
			}
		}
		collect(n)
		if text := strings.Join(strings.Fields(sb.String()), " "); text != "" {
			return text
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if text := firstText(c, tag); text != "" {
			return text
		}
	}
	return ""
}
