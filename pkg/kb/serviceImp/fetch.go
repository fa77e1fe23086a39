package serviceImp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"agriyield/pkg/httpx"
	"agriyield/pkg/kb/service"
)

const defaultMaxBytes = 1_500_000

type fetcher struct {
	allow    map[string]bool
	maxBytes int64
	client   *httpx.Client
}

func newFetcher(domains []string, maxBytes int64, client *httpx.Client) *fetcher {
	allow := map[string]bool{}
	for _, h := range domains {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			allow[h] = true
		}
	}
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	if client == nil {
		client = httpx.New(nil, "kb-fetch", "AgriYield-KB/1.0")
	}
	return &fetcher{allow: allow, maxBytes: maxBytes, client: client}
}

func (f *fetcher) allowed(u *url.URL) bool {
	return (u.Scheme == "http" || u.Scheme == "https") && f.allow[strings.ToLower(u.Host)]
}

// mainText returns the readable text and title of an allow-listed page.
func (f *fetcher) mainText(ctx context.Context, rawURL string) (string, string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", "", fmt.Errorf("bad url: %w", err)
	}
	if !f.allowed(u) {
		return "", "", service.ErrDomainNotAllowed
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", "", err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("fetch %s: status %d", u.Host, resp.StatusCode)
	}
	if resp.ContentLength > f.maxBytes {
		return "", "", service.ErrPageTooLarge
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return "", "", err
	}
	if int64(len(b)) > f.maxBytes {
		return "", "", service.ErrPageTooLarge
	}

	ct := strings.ToLower(resp.Header.Get("Content-Type"))
	switch {
	case strings.Contains(ct, "text/plain"):
		s := string(b)
		return s, guessTitle(s), nil
	case strings.Contains(ct, "text/html"):
	default:
		return "", "", fmt.Errorf("%w: %s", service.ErrUnsupportedType, ct)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		return "", "", err
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	sel := doc.Find("main, article")
	if sel.Length() == 0 {
		sel = doc.Find("body")
	}
	sel.Find("script, style, nav, footer").Remove()
	var parts []string
	sel.Find("h1,h2,h3,p,li").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return cleanWhitespace(strings.Join(parts, "\n")), title, nil
}

var wsRe = regexp.MustCompile(`[ \t]+\n`)

func cleanWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	return wsRe.ReplaceAllString(s, "\n")
}

func guessTitle(s string) string {
	line := strings.SplitN(strings.TrimSpace(s), "\n", 2)[0]
	if r := []rune(line); len(r) > 120 {
		line = string(r[:120])
	}
	return line
}
