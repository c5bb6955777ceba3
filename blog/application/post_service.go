package application

import (
	"context"
	"fmt"

	"github.com/picabord/website/blog/domain"
)

// DefaultRelatedLimit is used when GetRelatedPosts gets a non-positive limit.
const DefaultRelatedLimit = 3

// RenderedPost is a post with its body converted to HTML.
type RenderedPost struct {
	Post     *domain.Post
	HTML     string
	Headings []Heading
}

// PostService is the entry point for page handlers, the sitemap and the CMS.
// Every query re-reads the content directory through the repository.
type PostService struct {
	repo     domain.PostRepository
	markdown MarkdownRenderer
}

func NewPostService(repo domain.PostRepository, markdown MarkdownRenderer) *PostService {
	return &PostService{
		repo:     repo,
		markdown: markdown,
	}
}

// GetAllPosts returns all published posts, newest first.
func (s *PostService) GetAllPosts(ctx context.Context) ([]*domain.Post, error) {
	posts, err := s.repo.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// GetPostBySlug returns a published post or an error wrapping domain.ErrPostNotFound.
func (s *PostService) GetPostBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	return s.repo.GetPostBySlug(ctx, slug)
}

// GetPostsByCategory returns the published posts whose category equals category exactly.
func (s *PostService) GetPostsByCategory(ctx context.Context, category string) ([]*domain.Post, error) {
	posts, err := s.GetAllPosts(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]*domain.Post, 0, len(posts))
	for _, p := range posts {
		if string(p.Category) == category {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// GetRelatedPosts returns up to limit posts from category, newest first,
// leaving out the post with currentSlug.
func (s *PostService) GetRelatedPosts(ctx context.Context, currentSlug, category string, limit int) ([]*domain.Post, error) {
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}

	posts, err := s.GetPostsByCategory(ctx, category)
	if err != nil {
		return nil, err
	}

	related := make([]*domain.Post, 0, limit)
	for _, p := range posts {
		if p.Slug == currentSlug {
			continue
		}
		related = append(related, p)
		if len(related) == limit {
			break
		}
	}
	return related, nil
}

// GetAllCategories returns the distinct categories of published posts in
// the order they first appear in the listing.
func (s *PostService) GetAllCategories(ctx context.Context) ([]string, error) {
	posts, err := s.GetAllPosts(ctx)
	if err != nil {
		return nil, err
	}

	categories := newOrderedSet[string]()
	for _, p := range posts {
		categories.Add(string(p.Category))
	}
	return categories.Items(), nil
}

// GetAllTags returns the distinct tags of published posts in first-seen order.
func (s *PostService) GetAllTags(ctx context.Context) ([]string, error) {
	posts, err := s.GetAllPosts(ctx)
	if err != nil {
		return nil, err
	}

	tags := newOrderedSet[string]()
	for _, p := range posts {
		for _, t := range p.Tags {
			tags.Add(t)
		}
	}
	return tags.Items(), nil
}

// RenderPost looks up a published post and renders its body.
func (s *PostService) RenderPost(ctx context.Context, slug string) (*RenderedPost, error) {
	post, err := s.repo.GetPostBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	content, err := s.markdown.Render(post.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to render post %s: %w", slug, err)
	}

	return &RenderedPost{
		Post:     post,
		HTML:     content.HTML,
		Headings: content.Headings,
	}, nil
}

// ListAdminPosts returns every valid post, including unpublished ones.
func (s *PostService) ListAdminPosts(ctx context.Context) ([]*domain.Post, error) {
	posts, err := s.repo.ListAllPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// GetAdminPost loads a post by storage key for editing.
func (s *PostService) GetAdminPost(ctx context.Context, key string) (*domain.Post, error) {
	return s.repo.GetPost(ctx, key)
}

func (s *PostService) CreatePost(ctx context.Context, in domain.PostInput) (*domain.Post, error) {
	return s.repo.CreatePost(ctx, in)
}

func (s *PostService) UpdatePost(ctx context.Context, key string, in domain.PostInput) (*domain.Post, error) {
	return s.repo.UpdatePost(ctx, key, in)
}

func (s *PostService) DeletePost(ctx context.Context, key string) error {
	return s.repo.DeletePost(ctx, key)
}
