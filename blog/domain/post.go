package domain

import (
	"context"
	"errors"
)

var (
	// ErrPostNotFound is returned when no file matches a slug or storage key.
	ErrPostNotFound = errors.New("post not found")
	// ErrInvalidInput is returned by write operations before anything touches disk.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidPost marks a file whose header lacks a title or a date.
	ErrInvalidPost = errors.New("invalid post header")
	// ErrUnpublished marks a valid post that has published set to false.
	ErrUnpublished = errors.New("post is not published")
)

// Category is one of the fixed blog sections.
type Category string

const (
	CategoryHardware         Category = "Hardware"
	CategorySoftware         Category = "Software"
	CategoryIndustryInsights Category = "Industry Insights"
	CategoryCompanyNews      Category = "Company News"
)

// Categories lists every known category in display order.
var Categories = []Category{
	CategoryHardware,
	CategorySoftware,
	CategoryIndustryInsights,
	CategoryCompanyNews,
}

// DefaultCategory is used when a header has no category or an unknown one.
const DefaultCategory = CategorySoftware

// DefaultAuthor is used when a header has no author.
const DefaultAuthor = "PICABORD Team"

// Post represents a blog post
// A post is backed by exactly one file in the content directory. Key is the
// file's base name without extension and doubles as the slug when the header
// has none.
type Post struct {
	Key           string
	ID            string
	Slug          string
	Title         string
	Date          string
	Excerpt       string
	Author        string
	Category      Category
	FeaturedImage string
	Tags          []string
	Published     bool
	Body          string
	ReadingTime   int
}

// PostInput carries the editable fields of a post from the CMS.
type PostInput struct {
	Title    string
	Excerpt  string
	Category string
	Tags     []string
	Image    string
	Body     string
}

type PostRepository interface {
	// ListPosts returns published, valid posts, newest first.
	ListPosts(ctx context.Context) ([]*Post, error)
	// ListAllPosts is ListPosts including unpublished posts.
	ListAllPosts(ctx context.Context) ([]*Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*Post, error)
	// GetPost loads a post by storage key regardless of its published flag.
	GetPost(ctx context.Context, key string) (*Post, error)

	CreatePost(ctx context.Context, in PostInput) (*Post, error)
	UpdatePost(ctx context.Context, key string, in PostInput) (*Post, error)
	DeletePost(ctx context.Context, key string) error
}
