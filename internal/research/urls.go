package research

import (
	"net/url"
	"sort"
	"strings"
)

// Page categories.
const (
	TypeValues      = "values"
	TypeCulture     = "culture"
	TypeEngineering = "engineering"
	TypeAbout       = "about"
	TypeCareers     = "careers"
	TypePress       = "press"
	TypeOther       = "other"
)

// RankedURL is a candidate page with its crawl priority.
type RankedURL struct {
	URL      string  `json:"url"`
	Priority float64 `json:"priority"` // 0.0-1.0, higher = more relevant
	Type     string  `json:"type"`
}

// HighValuePaths returns the paths probed on every company domain and their priority.
func HighValuePaths() map[string]float64 {
	return map[string]float64{
		"values":                0.9,
		"culture":               0.9,
		"leadership-principles": 0.9,
		"mission":               0.8,
		"engineering":           0.8,
		"about":                 0.7,
		"company":               0.7,
		"careers":               0.6,
	}
}

// thirdPartyDomains are hosts that never belong to the hiring company.
var thirdPartyDomains = []string{
	"greenhouse.io",
	"lever.co",
	"workday.com",
	"myworkdayjobs.com",
	"ashbyhq.com",
	"smartrecruiters.com",
	"linkedin.com",
	"indeed.com",
	"glassdoor.com",
	"ziprecruiter.com",
	"wellfound.com",
	"medium.com",
}

// careerPrefixes are host labels stripped to reach the company's main site.
var careerPrefixes = []string{"www.", "careers.", "jobs.", "apply.", "boards."}

// IsThirdParty checks if a URL is hosted by a job board or other platform.
func IsThirdParty(urlStr string) bool {
	host := hostOf(urlStr)
	if host == "" {
		return false
	}
	for _, domain := range thirdPartyDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// CompanyDomain returns the company's own host for a job posting URL, or "" when the
// posting lives on a third-party board.
func CompanyDomain(jobURL string) string {
	if IsThirdParty(jobURL) {
		return ""
	}
	host := hostOf(jobURL)
	for {
		trimmed := host
		for _, p := range careerPrefixes {
			trimmed = strings.TrimPrefix(trimmed, p)
		}
		if trimmed == host {
			break
		}
		host = trimmed
	}
	if !strings.Contains(host, ".") {
		return ""
	}
	return host
}

// IsFromCompanyDomain checks if a URL is on domain or one of its subdomains.
func IsFromCompanyDomain(urlStr, domain string) bool {
	host := strings.TrimPrefix(hostOf(urlStr), "www.")
	domain = strings.ToLower(domain)
	return host != "" && (host == domain || strings.HasSuffix(host, "."+domain))
}

// AssignPathPriority returns a priority based on URL path patterns
func AssignPathPriority(urlStr string) float64 {
	path := strings.ToLower(pathOf(urlStr))

	for _, pattern := range []string{"leadership-principles", "values", "mission", "principles", "culture-memo"} {
		if strings.Contains(path, pattern) {
			return 0.95
		}
	}
	for _, pattern := range []string{"culture", "about", "engineering", "who-we-are", "our-story", "team", "careers", "company"} {
		if strings.Contains(path, pattern) {
			return 0.85
		}
	}
	for _, pattern := range []string{"press", "news", "announcements"} {
		if strings.Contains(path, pattern) {
			return 0.7
		}
	}
	for _, pattern := range []string{"/p/", "/product", "/pricing", "/login", "/signup", "/legal", "/privacy", "/terms", "/cookie"} {
		if strings.Contains(path, pattern) {
			return 0.1
		}
	}
	return 0.5
}

// Categorize maps a URL onto a page category.
func Categorize(urlStr string) string {
	path := strings.ToLower(pathOf(urlStr))
	switch {
	case strings.Contains(path, "values"), strings.Contains(path, "principles"), strings.Contains(path, "mission"):
		return TypeValues
	case strings.Contains(path, "culture"), strings.Contains(path, "team"):
		return TypeCulture
	case strings.Contains(path, "engineering"):
		return TypeEngineering
	case strings.Contains(path, "about"), strings.Contains(path, "company"), strings.Contains(path, "who-we-are"):
		return TypeAbout
	case strings.Contains(path, "careers"):
		return TypeCareers
	case strings.Contains(path, "press"), strings.Contains(path, "news"):
		return TypePress
	default:
		return TypeOther
	}
}

// CandidateURLs combines the high-value paths of domain with links discovered on the
// company homepage. Links off the domain or below minPriority are dropped. The result
// is deduplicated and sorted by priority, then URL.
func CandidateURLs(domain string, links []string) []RankedURL {
	seen := make(map[string]bool)
	var out []RankedURL
	add := func(u string, priority float64) {
		key := strings.TrimSuffix(strings.ToLower(u), "/")
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, RankedURL{URL: u, Priority: priority, Type: Categorize(u)})
	}

	for _, link := range links {
		if !IsFromCompanyDomain(link, domain) {
			continue
		}
		if p := AssignPathPriority(link); p >= minPriority {
			add(link, p)
		}
	}
	for path, priority := range HighValuePaths() {
		add("https://"+domain+"/"+path, priority)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].URL < out[j].URL
	})
	return out
}

func hostOf(urlStr string) string {
	u, err := url.Parse(strings.TrimSpace(urlStr))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

func pathOf(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return urlStr
	}
	return u.Path
}
