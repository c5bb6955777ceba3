package api

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/picabord/website/blog/domain"
)

// Frontmatter is the metadata block of a post as returned to clients.
type Frontmatter struct {
	Title         string   `json:"title"`
	Excerpt       string   `json:"excerpt"`
	Date          string   `json:"date"`
	Author        string   `json:"author"`
	Category      string   `json:"category"`
	FeaturedImage string   `json:"featuredImage"`
	Tags          []string `json:"tags"`
	Published     bool     `json:"published"`
}

type Post struct {
	Slug        string      `json:"slug"`
	Frontmatter Frontmatter `json:"frontmatter"`
	Content     string      `json:"content"`
	ReadingTime int         `json:"readingTime"`
}

type Heading struct {
	Level int    `json:"level"`
	ID    string `json:"id"`
	Text  string `json:"text"`
}

// RenderedPost is a single post page: the raw post plus its HTML body.
type RenderedPost struct {
	Post
	HTML     string    `json:"html"`
	Headings []Heading `json:"headings"`
}

// CMSPost is a post as seen by the editor. ID is the storage key used in
// CMS URLs; PostID is the identifier kept inside the file.
type CMSPost struct {
	Post
	ID     string `json:"id"`
	PostID string `json:"postId,omitempty"`
}

// PostRequest is the body of CMS create and update calls.
type PostRequest struct {
	Title    string  `json:"title"`
	Excerpt  string  `json:"excerpt"`
	Category string  `json:"category"`
	Tags     TagList `json:"tags"`
	Image    string  `json:"image"`
	Content  string  `json:"content"`
}

// WriteResult answers a successful CMS write.
type WriteResult struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Slug    string `json:"slug"`
	Message string `json:"message"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthStatus struct {
	IsAuthenticated bool  `json:"isAuthenticated"`
	User            *User `json:"user"`
}

type User struct {
	Username string `json:"username"`
}

type Error struct {
	Error string `json:"error"`
}

// TagList accepts tags as a JSON array or as a string. A string is read as
// a JSON array if it looks like one and as a comma separated list otherwise.
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = nil
		return nil
	}

	if len(data) > 0 && data[0] == '[' {
		var tags []string
		if err := json.Unmarshal(data, &tags); err != nil {
			return err
		}
		*t = tags
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") {
		var tags []string
		if err := json.Unmarshal([]byte(s), &tags); err == nil {
			*t = tags
			return nil
		}
		s = strings.Trim(s, "[]")
	}

	var tags []string
	for _, part := range strings.Split(s, ",") {
		part = strings.Trim(strings.TrimSpace(part), `"'`)
		if part != "" {
			tags = append(tags, part)
		}
	}
	*t = tags
	return nil
}

// Input converts the request into the store's write payload.
func (r PostRequest) Input() domain.PostInput {
	return domain.PostInput{
		Title:    r.Title,
		Excerpt:  r.Excerpt,
		Category: r.Category,
		Tags:     []string(r.Tags),
		Image:    r.Image,
		Body:     r.Content,
	}
}

func NewPost(p *domain.Post) Post {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return Post{
		Slug: p.Slug,
		Frontmatter: Frontmatter{
			Title:         p.Title,
			Excerpt:       p.Excerpt,
			Date:          p.Date,
			Author:        p.Author,
			Category:      string(p.Category),
			FeaturedImage: p.FeaturedImage,
			Tags:          tags,
			Published:     p.Published,
		},
		Content:     p.Body,
		ReadingTime: p.ReadingTime,
	}
}

func NewPosts(posts []*domain.Post) []Post {
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		out = append(out, NewPost(p))
	}
	return out
}

func NewCMSPost(p *domain.Post) CMSPost {
	return CMSPost{
		Post:   NewPost(p),
		ID:     p.Key,
		PostID: p.ID,
	}
}

func NewCMSPosts(posts []*domain.Post) []CMSPost {
	out := make([]CMSPost, 0, len(posts))
	for _, p := range posts {
		out = append(out, NewCMSPost(p))
	}
	return out
}
