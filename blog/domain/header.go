package domain

import (
	"fmt"
	"math"
	"strings"

	"github.com/picabord/website/blog/frontmatter"
	"gopkg.in/yaml.v3"
)

const (
	excerptLength  = 150
	wordsPerMinute = 200
)

// Header field names as they appear in post files.
const (
	FieldID            = "id"
	FieldSlug          = "slug"
	FieldTitle         = "title"
	FieldDate          = "date"
	FieldExcerpt       = "excerpt"
	FieldCategory      = "category"
	FieldTags          = "tags"
	FieldImage         = "image"
	FieldFeaturedImage = "featuredImage"
	FieldAuthor        = "author"
	FieldPublished     = "published"
)

// Header is the typed view of a decoded front-matter block.
// A nil field was absent from the file.
type Header struct {
	ID            *string
	Slug          *string
	Title         *string
	Date          *string
	Excerpt       *string
	Category      *string
	Tags          *string
	Image         *string
	FeaturedImage *string
	Author        *string
	Published     *string
}

// ParseHeader picks the known fields out of decoded front-matter.
func ParseHeader(f frontmatter.Fields) Header {
	opt := func(key string) *string {
		if v, ok := f.Get(key); ok {
			return &v
		}
		return nil
	}

	return Header{
		ID:            opt(FieldID),
		Slug:          opt(FieldSlug),
		Title:         opt(FieldTitle),
		Date:          opt(FieldDate),
		Excerpt:       opt(FieldExcerpt),
		Category:      opt(FieldCategory),
		Tags:          opt(FieldTags),
		Image:         opt(FieldImage),
		FeaturedImage: opt(FieldFeaturedImage),
		Author:        opt(FieldAuthor),
		Published:     opt(FieldPublished),
	}
}

// EffectiveSlug is the header slug, or key when the header has none.
func (h Header) EffectiveSlug(key string) string {
	if s := value(h.Slug); s != "" {
		return s
	}
	return key
}

// NewPost builds a Post from a header and body, filling defaults.
// It fails with ErrInvalidPost when the title is missing or blank, or the
// date is missing. The published flag is not checked; see Validate.
func NewPost(h Header, body, key, defaultAuthor string) (*Post, error) {
	title := strings.TrimSpace(value(h.Title))
	if title == "" {
		return nil, fmt.Errorf("%w: missing title", ErrInvalidPost)
	}
	if h.Date == nil {
		return nil, fmt.Errorf("%w: missing date", ErrInvalidPost)
	}

	if defaultAuthor == "" {
		defaultAuthor = DefaultAuthor
	}
	author := value(h.Author)
	if author == "" {
		author = defaultAuthor
	}

	excerpt := value(h.Excerpt)
	if strings.TrimSpace(excerpt) == "" {
		excerpt = DeriveExcerpt(body)
	}

	image := value(h.Image)
	if image == "" {
		image = value(h.FeaturedImage)
	}

	return &Post{
		Key:           key,
		ID:            value(h.ID),
		Slug:          h.EffectiveSlug(key),
		Title:         title,
		Date:          *h.Date,
		Excerpt:       excerpt,
		Author:        author,
		Category:      ParseCategory(value(h.Category)),
		FeaturedImage: image,
		Tags:          ParseTags(value(h.Tags)),
		Published:     h.IsPublished(),
		Body:          body,
		ReadingTime:   ReadingTime(body),
	}, nil
}

// Validate is NewPost that also rejects unpublished posts with ErrUnpublished.
func Validate(h Header, body, key, defaultAuthor string) (*Post, error) {
	p, err := NewPost(h, body, key, defaultAuthor)
	if err != nil {
		return nil, err
	}
	if !p.Published {
		return nil, ErrUnpublished
	}
	return p, nil
}

// ParseCategory maps a header value onto a known category, case-insensitively.
func ParseCategory(s string) Category {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) {
			return c
		}
	}
	return DefaultCategory
}

// ParseTags reads a flow sequence such as `["a", "b"]` or `[a, b]`.
// Anything that is not a sequence yields no tags. Duplicates and blanks are
// dropped, first occurrence wins.
func ParseTags(s string) []string {
	tags := []string{}
	if strings.TrimSpace(s) == "" {
		return tags
	}

	var raw []string
	if err := yaml.Unmarshal([]byte(s), &raw); err != nil {
		return tags
	}

	seen := make(map[string]struct{}, len(raw))
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	return tags
}

// DeriveExcerpt returns the first 150 characters of body followed by "...".
func DeriveExcerpt(body string) string {
	r := []rune(strings.TrimSpace(body))
	if len(r) > excerptLength {
		r = r[:excerptLength]
	}
	return string(r) + "..."
}

// ReadingTime estimates whole minutes to read body at 200 words per minute,
// never less than one.
func ReadingTime(body string) int {
	words := len(strings.Fields(body))
	minutes := int(math.Ceil(float64(words) / wordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// IsPublished is false only for an explicit `published: false`.
func (h Header) IsPublished() bool {
	if h.Published == nil {
		return true
	}
	return !strings.EqualFold(strings.TrimSpace(*h.Published), "false")
}

func value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
