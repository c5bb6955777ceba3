package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/picabord/website/blog/domain"
	"github.com/picabord/website/blog/frontmatter"
	"github.com/picabord/website/shared/metrics"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var _ domain.PostRepository = (*FilePostRepository)(nil)

const (
	// defaultExt is used for every file the repository creates.
	defaultExt = ".mdx"

	maxKeySuffix = 1000
)

// postExtensions are the file extensions treated as posts, in lookup order.
var postExtensions = []string{".mdx", ".md"}

// FilePostRepository implements domain.PostRepository over a flat directory
// of front-matter files. Nothing is cached: every call reads the directory
// again, and concurrent writers are not coordinated.
type FilePostRepository struct {
	dir      string
	author   string
	now      func() time.Time
	logger   zerolog.Logger
	recorder metrics.Recorder
}

// Option configures a FilePostRepository.
type Option func(*FilePostRepository)

// WithAuthor sets the author written on create and used when a file has none.
func WithAuthor(author string) Option {
	return func(r *FilePostRepository) {
		if author != "" {
			r.author = author
		}
	}
}

// WithClock replaces time.Now for the dates stamped on new posts.
func WithClock(now func() time.Time) Option {
	return func(r *FilePostRepository) {
		r.now = now
	}
}

// WithLogger sets the logger that reports skipped files and cleanup failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *FilePostRepository) {
		r.logger = logger
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(recorder metrics.Recorder) Option {
	return func(r *FilePostRepository) {
		r.recorder = recorder
	}
}

// NewPostRepository creates a FilePostRepository rooted at dir.
// The directory does not need to exist until the first write.
func NewPostRepository(dir string, opts ...Option) *FilePostRepository {
	r := &FilePostRepository{
		dir:      dir,
		author:   domain.DefaultAuthor,
		now:      time.Now,
		logger:   log.Logger,
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// postFile is one candidate post on disk.
type postFile struct {
	key  string
	path string
	ext  string
}

// ListPosts returns published posts sorted newest first.
// A missing content directory yields no posts.
func (r *FilePostRepository) ListPosts(ctx context.Context) ([]*domain.Post, error) {
	return r.scan(ctx, false)
}

// ListAllPosts is ListPosts including unpublished posts.
func (r *FilePostRepository) ListAllPosts(ctx context.Context) ([]*domain.Post, error) {
	return r.scan(ctx, true)
}

func (r *FilePostRepository) scan(ctx context.Context, includeUnpublished bool) ([]*domain.Post, error) {
	start := time.Now()

	files, err := r.listFiles()
	if err != nil {
		return nil, err
	}

	posts := make([]*domain.Post, 0, len(files))
	slugs := make(map[string]string, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := os.ReadFile(f.path)
		if err != nil {
			r.skip(f, "unreadable", err)
			continue
		}

		fields, body := frontmatter.Decode(string(raw))
		post, err := domain.NewPost(domain.ParseHeader(fields), body, f.key, r.author)
		if err != nil {
			r.skip(f, "invalid", err)
			continue
		}
		if !post.Published && !includeUnpublished {
			r.recorder.IncSkipped("unpublished")
			continue
		}

		if other, dup := slugs[post.Slug]; dup {
			r.logger.Warn().Str("slug", post.Slug).Str("path", f.path).Str("shadowedBy", other).Msg("Duplicate post slug")
		} else {
			slugs[post.Slug] = f.path
		}

		posts = append(posts, post)
	}

	domain.SortByDateDesc(posts)
	r.recorder.ObserveScan(time.Since(start), len(files))

	return posts, nil
}

// GetPostBySlug returns the first published post whose slug matches.
// Files are visited in directory order; the first slug match decides the
// result, so a matching file that fails validation yields ErrPostNotFound
// even if a later file carries the same slug.
func (r *FilePostRepository) GetPostBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	if slug == "" {
		return nil, fmt.Errorf("%w: empty slug", domain.ErrPostNotFound)
	}

	files, err := r.listFiles()
	if err != nil {
		return nil, err
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := os.ReadFile(f.path)
		if err != nil {
			r.logger.Debug().Err(err).Str("path", f.path).Msg("Skipping unreadable post file")
			continue
		}

		fields, body := frontmatter.Decode(string(raw))
		header := domain.ParseHeader(fields)
		if header.EffectiveSlug(f.key) != slug {
			continue
		}

		post, err := domain.Validate(header, body, f.key, r.author)
		if err != nil {
			r.skip(f, "invalid", err)
			return nil, fmt.Errorf("%w: %s", domain.ErrPostNotFound, slug)
		}
		return post, nil
	}

	return nil, fmt.Errorf("%w: %s", domain.ErrPostNotFound, slug)
}

// GetPost loads the post stored under key, published or not.
func (r *FilePostRepository) GetPost(ctx context.Context, key string) (*domain.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !domain.ValidKey(key) {
		return nil, fmt.Errorf("%w: bad key %q", domain.ErrInvalidInput, key)
	}

	f, err := r.findFile(key)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read post file: %w", err)
	}

	fields, body := frontmatter.Decode(string(raw))
	return domain.NewPost(domain.ParseHeader(fields), body, f.key, r.author)
}

// CreatePost writes a new post file keyed by the slug derived from the title.
// A taken key gets a numeric suffix; the stored slug follows the key.
func (r *FilePostRepository) CreatePost(ctx context.Context, in domain.PostInput) (*domain.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		r.recorder.IncWrite("create", metrics.ResultInvalid)
		return nil, err
	}

	if err := os.MkdirAll(r.dir, 0755); err != nil {
		r.recorder.IncWrite("create", metrics.ResultError)
		return nil, fmt.Errorf("failed to create post directory: %w", err)
	}

	id := uuid.NewString()
	slug := domain.Slugify(in.Title)
	if slug == "" {
		slug = id
	}

	key, err := r.freeKey(slug, "")
	if err != nil {
		r.recorder.IncWrite("create", metrics.ResultError)
		return nil, err
	}

	stored := storedPost{
		id:        id,
		slug:      key,
		date:      r.now().Format(domain.DateLayout),
		author:    r.author,
		published: true,
	}

	post, err := r.write(r.pathFor(key, defaultExt), key, stored, in)
	if err != nil {
		r.recorder.IncWrite("create", metrics.ResultError)
		return nil, err
	}

	r.recorder.IncWrite("create", metrics.ResultSuccess)
	r.logger.Info().Str("key", key).Str("id", id).Msg("Created post")
	return post, nil
}

// UpdatePost rewrites the post stored under key. The original date, id,
// author and published flag are kept; the slug is derived from the new title.
// When the slug moves the post to a new key, the new file is written before
// the old one is removed, and a failed removal is only logged.
func (r *FilePostRepository) UpdatePost(ctx context.Context, key string, in domain.PostInput) (*domain.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !domain.ValidKey(key) {
		r.recorder.IncWrite("update", metrics.ResultInvalid)
		return nil, fmt.Errorf("%w: bad key %q", domain.ErrInvalidInput, key)
	}
	if err := validateInput(in); err != nil {
		r.recorder.IncWrite("update", metrics.ResultInvalid)
		return nil, err
	}

	old, err := r.findFile(key)
	if err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			r.recorder.IncWrite("update", metrics.ResultMissing)
		} else {
			r.recorder.IncWrite("update", metrics.ResultError)
		}
		return nil, err
	}

	raw, err := os.ReadFile(old.path)
	if err != nil {
		r.recorder.IncWrite("update", metrics.ResultError)
		return nil, fmt.Errorf("failed to read post file: %w", err)
	}
	fields, _ := frontmatter.Decode(string(raw))
	header := domain.ParseHeader(fields)

	stored := storedPost{
		id:        orDefault(header.ID, uuid.NewString),
		date:      orDefault(header.Date, func() string { return r.now().Format(domain.DateLayout) }),
		author:    orDefault(header.Author, func() string { return r.author }),
		published: header.IsPublished(),
	}

	slug := domain.Slugify(in.Title)
	if slug == "" {
		slug = old.key
	}
	newKey, err := r.freeKey(slug, old.key)
	if err != nil {
		r.recorder.IncWrite("update", metrics.ResultError)
		return nil, err
	}
	stored.slug = newKey

	newPath := old.path
	if newKey != old.key {
		newPath = r.pathFor(newKey, defaultExt)
	}

	post, err := r.write(newPath, newKey, stored, in)
	if err != nil {
		r.recorder.IncWrite("update", metrics.ResultError)
		return nil, err
	}

	if newPath != old.path {
		if err := os.Remove(old.path); err != nil {
			r.logger.Warn().Err(err).Str("path", old.path).Msg("Failed to remove renamed post file")
		}
	}

	r.recorder.IncWrite("update", metrics.ResultSuccess)
	r.logger.Info().Str("key", newKey).Str("previousKey", old.key).Msg("Updated post")
	return post, nil
}

// DeletePost removes the post stored under key.
func (r *FilePostRepository) DeletePost(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !domain.ValidKey(key) {
		r.recorder.IncWrite("delete", metrics.ResultInvalid)
		return fmt.Errorf("%w: bad key %q", domain.ErrInvalidInput, key)
	}

	f, err := r.findFile(key)
	if err == nil {
		err = os.Remove(f.path)
		if errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("%w: %s", domain.ErrPostNotFound, key)
		}
	}

	switch {
	case err == nil:
		r.recorder.IncWrite("delete", metrics.ResultSuccess)
		r.logger.Info().Str("key", key).Msg("Deleted post")
		return nil
	case errors.Is(err, domain.ErrPostNotFound):
		r.recorder.IncWrite("delete", metrics.ResultMissing)
		return err
	default:
		r.recorder.IncWrite("delete", metrics.ResultError)
		return fmt.Errorf("failed to delete post: %w", err)
	}
}

// listFiles returns the post files in directory order (sorted by name).
func (r *FilePostRepository) listFiles() ([]postFile, error) {
	entries, err := os.ReadDir(r.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read post directory: %w", err)
	}

	files := make([]postFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := filepath.Ext(name)
		if !isPostExt(ext) {
			continue
		}
		files = append(files, postFile{
			key:  strings.TrimSuffix(name, ext),
			path: filepath.Join(r.dir, name),
			ext:  ext,
		})
	}
	return files, nil
}

func (r *FilePostRepository) findFile(key string) (postFile, error) {
	for _, ext := range postExtensions {
		path := r.pathFor(key, ext)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return postFile{key: key, path: path, ext: ext}, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return postFile{}, fmt.Errorf("failed to stat post file: %w", err)
		}
	}
	return postFile{}, fmt.Errorf("%w: %s", domain.ErrPostNotFound, key)
}

// freeKey returns base, or base-2, base-3, ... whichever is not taken by a
// file other than the one stored under current.
func (r *FilePostRepository) freeKey(base, current string) (string, error) {
	candidate := base
	for i := 2; i <= maxKeySuffix; i++ {
		if candidate == current {
			return candidate, nil
		}
		_, err := r.findFile(candidate)
		if errors.Is(err, domain.ErrPostNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = base + "-" + strconv.Itoa(i)
	}
	return "", fmt.Errorf("no free key for slug %q", base)
}

func (r *FilePostRepository) pathFor(key, ext string) string {
	return filepath.Join(r.dir, key+ext)
}

// write encodes the post, stores it at path and returns it as the read side
// would see it.
func (r *FilePostRepository) write(path, key string, stored storedPost, in domain.PostInput) (*domain.Post, error) {
	content, err := encodePost(stored, in)
	if err != nil {
		return nil, err
	}

	if err := writeFileAtomic(path, []byte(content)); err != nil {
		return nil, fmt.Errorf("failed to write post file: %w", err)
	}

	fields, body := frontmatter.Decode(content)
	return domain.NewPost(domain.ParseHeader(fields), body, key, r.author)
}

func (r *FilePostRepository) skip(f postFile, reason string, err error) {
	r.recorder.IncSkipped(reason)
	r.logger.Warn().Err(err).Str("path", f.path).Str("reason", reason).Msg("Skipping post file")
}

// storedPost holds the header values the repository owns rather than the editor.
type storedPost struct {
	id        string
	slug      string
	date      string
	author    string
	published bool
}

func encodePost(s storedPost, in domain.PostInput) (string, error) {
	tags, err := json.Marshal(normalizeTags(in.Tags))
	if err != nil {
		return "", fmt.Errorf("failed to encode tags: %w", err)
	}

	fields := []frontmatter.Field{
		frontmatter.Quoted(domain.FieldID, s.id),
		frontmatter.Quoted(domain.FieldSlug, s.slug),
		frontmatter.Quoted(domain.FieldTitle, strings.TrimSpace(in.Title)),
		frontmatter.Quoted(domain.FieldDate, s.date),
		frontmatter.Quoted(domain.FieldExcerpt, strings.TrimSpace(in.Excerpt)),
		frontmatter.Quoted(domain.FieldCategory, string(domain.ParseCategory(in.Category))),
		frontmatter.Raw(domain.FieldTags, string(tags)),
	}
	if image := strings.TrimSpace(in.Image); image != "" {
		fields = append(fields, frontmatter.Quoted(domain.FieldImage, image))
	}
	fields = append(fields,
		frontmatter.Quoted(domain.FieldAuthor, s.author),
		frontmatter.Raw(domain.FieldPublished, strconv.FormatBool(s.published)),
	)

	return frontmatter.Encode(fields, in.Body), nil
}

func validateInput(in domain.PostInput) error {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Body) == "" {
		return fmt.Errorf("%w: title and content required", domain.ErrInvalidInput)
	}
	return nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func isPostExt(ext string) bool {
	for _, e := range postExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func orDefault(v *string, fallback func() string) string {
	if v != nil && strings.TrimSpace(*v) != "" {
		return *v
	}
	return fallback()
}
