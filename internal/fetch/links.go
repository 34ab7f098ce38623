package fetch

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// maxLinks caps how many links are kept per page.
const maxLinks = 200

// ExtractLinks returns the distinct same-host links in htmlContent, resolved against baseURL,
// without fragments or trailing slashes, in document order.
func ExtractLinks(htmlContent string, baseURL string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL: %s (must have scheme and host)", baseURL)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	seen := make(map[string]bool)
	links := make([]string, 0)
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") {
			return true
		}
		ref, err := url.Parse(href)
		if err != nil {
			return true
		}

		abs := base.ResolveReference(ref)
		if abs.Host != base.Host || (abs.Scheme != "http" && abs.Scheme != "https") {
			return true
		}
		abs.Fragment = ""
		link := strings.TrimSuffix(abs.String(), "/")

		if !seen[link] {
			seen[link] = true
			links = append(links, link)
		}
		return len(links) < maxLinks
	})

	return links, nil
}
