package application

import (
	"context"
	"strings"
	"time"

	"github.com/picabord/website/blog/domain"
)

// SitemapEntry is one URL of the public site.
type SitemapEntry struct {
	URL          string
	LastModified time.Time
	ChangeFreq   string
	Priority     float64
}

type staticPage struct {
	path       string
	changeFreq string
	priority   float64
}

var staticPages = []staticPage{
	{path: "", changeFreq: "monthly", priority: 1.0},
	{path: "/about", changeFreq: "monthly", priority: 0.8},
	{path: "/contact", changeFreq: "monthly", priority: 0.8},
	{path: "/pika", changeFreq: "monthly", priority: 0.9},
	{path: "/tec", changeFreq: "monthly", priority: 0.9},
	{path: "/blog", changeFreq: "weekly", priority: 0.9},
	{path: "/privacy", changeFreq: "yearly", priority: 0.5},
	{path: "/privacy-settings", changeFreq: "yearly", priority: 0.3},
}

// Sitemap lists the static pages followed by every published post.
// Static pages are stamped with now; posts carry their own date, or a zero
// LastModified when the date does not parse.
func (s *PostService) Sitemap(ctx context.Context, baseURL string, now time.Time) ([]SitemapEntry, error) {
	posts, err := s.GetAllPosts(ctx)
	if err != nil {
		return nil, err
	}

	baseURL = strings.TrimSuffix(baseURL, "/")
	entries := make([]SitemapEntry, 0, len(staticPages)+len(posts))
	for _, p := range staticPages {
		entries = append(entries, SitemapEntry{
			URL:          baseURL + p.path,
			LastModified: now,
			ChangeFreq:   p.changeFreq,
			Priority:     p.priority,
		})
	}

	for _, p := range posts {
		lastMod, _ := domain.ParseDate(p.Date)
		entries = append(entries, SitemapEntry{
			URL:          baseURL + postsPath + p.Slug,
			LastModified: lastMod,
			ChangeFreq:   "monthly",
			Priority:     0.7,
		})
	}
	return entries, nil
}
