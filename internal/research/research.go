// Package research gathers pages from the hiring company's own website to ground
// company research: values, culture, engineering and about pages.
package research

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/jonathan/interview-prep/internal/fetch"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultMaxPages is how many company pages are kept per job.
	DefaultMaxPages = 3
	// maxAttempts bounds how many candidates are fetched per job.
	maxAttempts = 8
	// fetchConcurrency bounds parallel page fetches.
	fetchConcurrency = 3
	// maxSourceRunes caps the text kept per page.
	maxSourceRunes = 3000
	// minPriority drops discovered links that look promotional or legal.
	minPriority = 0.5
)

// PageFetcher returns the readable text of a URL.
type PageFetcher interface {
	Page(ctx context.Context, url string) (*fetch.Page, error)
}

// Source is a company page kept as research context.
type Source struct {
	URL   string `json:"url"`
	Type  string `json:"type"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Gather fetches up to maxPages pages from the company domain behind jobURL, best
// candidates first. Pages that fail to load or repeat earlier content are skipped.
// Jobs posted on third-party boards yield nothing.
func Gather(ctx context.Context, pages PageFetcher, jobURL string, maxPages int) []Source {
	domain := CompanyDomain(jobURL)
	if pages == nil || domain == "" {
		return nil
	}
	if maxPages < 1 {
		maxPages = DefaultMaxPages
	}

	var links []string
	if home, err := pages.Page(ctx, "https://"+domain); err == nil {
		links = home.Links
	}

	candidates := CandidateURLs(domain, links)
	if len(candidates) > maxAttempts {
		candidates = candidates[:maxAttempts]
	}

	fetched := make([]*fetch.Page, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, c := range candidates {
		g.Go(func() error {
			if page, err := pages.Page(gctx, c.URL); err == nil {
				fetched[i] = page
			}
			return nil
		})
	}
	_ = g.Wait()

	seen := make(map[string]bool)
	var sources []Source
	for i, page := range fetched {
		if page == nil || strings.TrimSpace(page.Text) == "" {
			continue
		}
		hash := computeHash(page.Text)
		if seen[hash] {
			continue
		}
		seen[hash] = true

		sources = append(sources, Source{
			URL:   candidates[i].URL,
			Type:  candidates[i].Type,
			Title: page.Title,
			Text:  truncateRunes(strings.TrimSpace(page.Text), maxSourceRunes),
		})
		if len(sources) == maxPages {
			break
		}
	}
	return sources
}

// FormatSources renders sources as prompt context.
func FormatSources(sources []Source) string {
	if len(sources) == 0 {
		return "(no company pages available)"
	}
	var sb strings.Builder
	for i, s := range sources {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(fmt.Sprintf("[%s] %s\n%s", s.Type, s.URL, s.Text))
	}
	return sb.String()
}

// URLs returns the source URLs in order.
func URLs(sources []Source) []string {
	out := make([]string, 0, len(sources))
	for _, s := range sources {
		out = append(out, s.URL)
	}
	return out
}

// computeHash computes SHA256 hash of content and returns hex string
func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
