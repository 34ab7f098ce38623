package fetch

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Page is the readable text of a fetched page.
type Page struct {
	URL      string
	Platform Platform
	Title    string
	Text     string
	Rendered bool
	// Links are the same-host links found on the page.
	Links []string
}

// Fetcher turns URLs into readable page text, falling back to a browser for thin pages.
type Fetcher struct {
	opts   *Options
	render Renderer
	log    *zap.SugaredLogger
}

// NewFetcher creates a Fetcher. A nil render disables the browser fallback.
func NewFetcher(opts *Options, render Renderer, log *zap.SugaredLogger) *Fetcher {
	if opts == nil {
		opts = DefaultOptions()
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Fetcher{opts: opts, render: render, log: log}
}

// Page fetches urlStr and extracts its main text using platform-specific selectors.
func (f *Fetcher) Page(ctx context.Context, urlStr string) (*Page, error) {
	platform := DetectPlatform(urlStr)
	contentSelectors := PlatformContentSelectors(platform)
	noiseSelectors := PlatformNoiseSelectors(platform)

	result, err := URL(ctx, urlStr, f.opts)
	if err != nil {
		return nil, err
	}

	text, err := ExtractMainText(result.HTML, contentSelectors, noiseSelectors...)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "content extraction failed", Cause: err}
	}
	page := &Page{
		URL:      urlStr,
		Platform: platform,
		Title:    PageTitle(result.HTML),
		Text:     text,
	}
	if links, err := ExtractLinks(result.HTML, urlStr); err == nil {
		page.Links = links
	}
	f.log.Debugw("fetched page", "url", urlStr, "platform", platform, "bytes", len(result.HTML), "chars", len(text))

	if f.render != nil && ShouldUseBrowser(text) {
		f.log.Infow("page content too short, rendering in browser", "url", urlStr, "chars", len(text), "min", MinContentLength)
		html, renderErr := f.render(ctx, urlStr)
		if renderErr != nil {
			f.log.Warnw("browser rendering failed, using HTTP content", "url", urlStr, "error", renderErr)
		} else if rendered, extractErr := ExtractMainText(html, contentSelectors, noiseSelectors...); extractErr == nil && len(rendered) > len(text) {
			page.Text = rendered
			page.Rendered = true
			if title := PageTitle(html); title != "" {
				page.Title = title
			}
			if links, err := ExtractLinks(html, urlStr); err == nil && len(links) > len(page.Links) {
				page.Links = links
			}
		}
	}

	if strings.TrimSpace(page.Text) == "" {
		return nil, &Error{URL: urlStr, Message: "page has no readable content"}
	}
	return page, nil
}
