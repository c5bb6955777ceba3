package persistence

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/picabord/website/blog/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRepo creates a repository over a fresh temp directory.
func setupTestRepo(t *testing.T, opts ...Option) (*FilePostRepository, string) {
	t.Helper()
	dir := t.TempDir()
	opts = append([]Option{WithLogger(zerolog.Nop())}, opts...)
	return NewPostRepository(dir, opts...), dir
}

func writePost(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func post(title, date string, extra ...string) string {
	s := "---\ntitle: \"" + title + "\"\ndate: \"" + date + "\"\n"
	for _, e := range extra {
		s += e + "\n"
	}
	return s + "---\n\nBody of " + title + "\n"
}

func slugsOf(posts []*domain.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Slug)
	}
	return out
}

func TestListPosts_MissingDirectory(t *testing.T) {
	repo := NewPostRepository(filepath.Join(t.TempDir(), "does-not-exist"), WithLogger(zerolog.Nop()))

	posts, err := repo.ListPosts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestListPosts_FiltersUnpublished(t *testing.T) {
	repo, dir := setupTestRepo(t)
	writePost(t, dir, "visible.mdx", post("Visible", "2024-01-01"))
	writePost(t, dir, "hidden.mdx", post("Hidden", "2024-01-02", "published: false"))

	posts, err := repo.ListPosts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"visible"}, slugsOf(posts))

	all, err := repo.ListAllPosts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"hidden", "visible"}, slugsOf(all))
}

func TestListPosts_SortsNewestFirst(t *testing.T) {
	repo, dir := setupTestRepo(t)
	writePost(t, dir, "jan.mdx", post("Jan", "2024-01-01"))
	writePost(t, dir, "mar.mdx", post("Mar", "2024-03-01"))
	writePost(t, dir, "feb.md", post("Feb", "2024-02-01"))

	posts, err := repo.ListPosts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"mar", "feb", "jan"}, slugsOf(posts))
}

func TestListPosts_SkipsInvalidAndForeignFiles(t *testing.T) {
	repo, dir := setupTestRepo(t)
	writePost(t, dir, "good.mdx", post("Good", "2024-01-01"))
	writePost(t, dir, "no-title.mdx", "---\ndate: \"2024-01-01\"\n---\nbody")
	writePost(t, dir, "no-date.mdx", "---\ntitle: \"T\"\n---\nbody")
	writePost(t, dir, "no-header.md", "just text")
	writePost(t, dir, "notes.txt", post("Text", "2024-01-01"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.mdx"), 0755))

	posts, err := repo.ListPosts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"good"}, slugsOf(posts))
}

func TestListPosts_ComputesDerivedFields(t *testing.T) {
	repo, dir := setupTestRepo(t)
	writePost(t, dir, "p.mdx", post("P", "2024-01-01", `tags: ["go", "web"]`, `category: "Hardware"`))

	posts, err := repo.ListPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)

	p := posts[0]
	assert.Equal(t, "Body of P\n", p.Body)
	assert.Equal(t, "Body of P...", p.Excerpt)
	assert.Equal(t, 1, p.ReadingTime)
	assert.Equal(t, []string{"go", "web"}, p.Tags)
	assert.Equal(t, domain.CategoryHardware, p.Category)
	assert.Equal(t, domain.DefaultAuthor, p.Author)
}

func TestListPosts_CanceledContext(t *testing.T) {
	repo, dir := setupTestRepo(t)
	writePost(t, dir, "p.mdx", post("P", "2024-01-01"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.ListPosts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetPostBySlug(t *testing.T) {
	repo, dir := setupTestRepo(t)
	writePost(t, dir, "my-post.mdx", post("Mine", "2024-01-01"))
	writePost(t, dir, "uuid-file.mdx", post("Explicit", "2024-01-01", `slug: "explicit-slug"`))

	t.Run("filename fallback", func(t *testing.T) {
		p, err := repo.GetPostBySlug(context.Background(), "my-post")
		require.NoError(t, err)
		assert.Equal(t, "Mine", p.Title)
	})

	t.Run("explicit slug", func(t *testing.T) {
		p, err := repo.GetPostBySlug(context.Background(), "explicit-slug")
		require.NoError(t, err)
		assert.Equal(t, "Explicit", p.Title)
		assert.Equal(t, "uuid-file", p.Key)
	})

	t.Run("explicit slug hides filename", func(t *testing.T) {
		_, err := repo.GetPostBySlug(context.Background(), "uuid-file")
		assert.ErrorIs(t, err, domain.ErrPostNotFound)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := repo.GetPostBySlug(context.Background(), "nope")
		assert.ErrorIs(t, err, domain.ErrPostNotFound)
	})
}

func TestGetPostBySlug_FirstMatchDecides(t *testing.T) {
	repo, dir := setupTestRepo(t)
	// a-bad sorts before b-good; both claim the same slug
	writePost(t, dir, "a-bad.mdx", "---\nslug: \"shared\"\ndate: \"2024-01-01\"\n---\nno title")
	writePost(t, dir, "b-good.mdx", post("Good", "2024-01-01", `slug: "shared"`))

	_, err := repo.GetPostBySlug(context.Background(), "shared")
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
}

func TestGetPostBySlug_Unpublished(t *testing.T) {
	repo, dir := setupTestRepo(t)
	writePost(t, dir, "draft.mdx", post("Draft", "2024-01-01", "published: false"))

	_, err := repo.GetPostBySlug(context.Background(), "draft")
	assert.ErrorIs(t, err, domain.ErrPostNotFound)

	p, err := repo.GetPost(context.Background(), "draft")
	require.NoError(t, err)
	assert.False(t, p.Published)
}

func TestCreatePost(t *testing.T) {
	day := time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC)
	repo, dir := setupTestRepo(t, WithClock(func() time.Time { return day }))

	p, err := repo.CreatePost(context.Background(), domain.PostInput{
		Title:    `Hello "World"`,
		Category: "Hardware",
		Tags:     []string{"go", "go", "web"},
		Image:    "/blog/uploads/a.png",
		Body:     "Some content",
	})
	require.NoError(t, err)

	assert.Equal(t, "hello-world", p.Slug)
	assert.Equal(t, "hello-world", p.Key)
	assert.Equal(t, `Hello "World"`, p.Title)
	assert.Equal(t, "2024-05-06", p.Date)
	assert.Equal(t, domain.CategoryHardware, p.Category)
	assert.Equal(t, []string{"go", "web"}, p.Tags)
	assert.Equal(t, "/blog/uploads/a.png", p.FeaturedImage)
	assert.NotEmpty(t, p.ID)
	assert.True(t, p.Published)
	assert.FileExists(t, filepath.Join(dir, "hello-world.mdx"))

	got, err := repo.GetPostBySlug(context.Background(), "hello-world")
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestCreatePost_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "content", "blog")
	repo := NewPostRepository(dir, WithLogger(zerolog.Nop()))

	_, err := repo.CreatePost(context.Background(), domain.PostInput{Title: "T", Body: "b"})
	require.NoError(t, err)
	assert.DirExists(t, dir)
}

func TestCreatePost_RejectsMissingFields(t *testing.T) {
	tests := []struct {
		name string
		in   domain.PostInput
	}{
		{name: "empty title", in: domain.PostInput{Title: "", Body: "x"}},
		{name: "blank title", in: domain.PostInput{Title: "   ", Body: "x"}},
		{name: "empty body", in: domain.PostInput{Title: "T", Body: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "blog")
			repo := NewPostRepository(dir, WithLogger(zerolog.Nop()))

			_, err := repo.CreatePost(context.Background(), tt.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.NoDirExists(t, dir)
		})
	}
}

func TestCreatePost_SuffixesTakenKey(t *testing.T) {
	repo, _ := setupTestRepo(t)

	first, err := repo.CreatePost(context.Background(), domain.PostInput{Title: "Same", Body: "1"})
	require.NoError(t, err)
	second, err := repo.CreatePost(context.Background(), domain.PostInput{Title: "Same", Body: "2"})
	require.NoError(t, err)

	assert.Equal(t, "same", first.Slug)
	assert.Equal(t, "same-2", second.Slug)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestUpdatePost_PreservesDateAndRenames(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo, dir := setupTestRepo(t, WithClock(func() time.Time { return now }))

	created, err := repo.CreatePost(context.Background(), domain.PostInput{Title: "Original", Body: "b"})
	require.NoError(t, err)

	now = time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)
	updated, err := repo.UpdatePost(context.Background(), created.Key, domain.PostInput{
		Title: "Renamed Post",
		Body:  "new body",
	})
	require.NoError(t, err)

	assert.Equal(t, "2024-01-01", updated.Date)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "renamed-post", updated.Slug)
	assert.Equal(t, "new body", updated.Body)
	assert.NoFileExists(t, filepath.Join(dir, "original.mdx"))
	assert.FileExists(t, filepath.Join(dir, "renamed-post.mdx"))

	got, err := repo.GetPostBySlug(context.Background(), "renamed-post")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", got.Date)
}

func TestUpdatePost_SameSlugKeepsFileAndFlags(t *testing.T) {
	repo, dir := setupTestRepo(t)
	writePost(t, dir, "legacy.md", post("Legacy", "March 1, 2024", "published: false", `author: "Someone"`))

	updated, err := repo.UpdatePost(context.Background(), "legacy", domain.PostInput{Title: "Legacy", Body: "edited"})
	require.NoError(t, err)

	assert.Equal(t, "legacy", updated.Key)
	assert.Equal(t, "March 1, 2024", updated.Date)
	assert.Equal(t, "Someone", updated.Author)
	assert.False(t, updated.Published)
	assert.NotEmpty(t, updated.ID)
	assert.FileExists(t, filepath.Join(dir, "legacy.md"))
	assert.NoFileExists(t, filepath.Join(dir, "legacy.mdx"))
}

func TestUpdatePost_DoesNotClobberOtherPost(t *testing.T) {
	repo, dir := setupTestRepo(t)
	writePost(t, dir, "taken.mdx", post("Taken", "2024-01-01"))
	writePost(t, dir, "mine.mdx", post("Mine", "2024-01-01"))

	updated, err := repo.UpdatePost(context.Background(), "mine", domain.PostInput{Title: "Taken", Body: "b"})
	require.NoError(t, err)

	assert.Equal(t, "taken-2", updated.Key)
	taken, err := repo.GetPost(context.Background(), "taken")
	require.NoError(t, err)
	assert.Equal(t, "Body of Taken\n", taken.Body)
}

func TestUpdatePost_Errors(t *testing.T) {
	repo, dir := setupTestRepo(t)
	writePost(t, dir, "p.mdx", post("P", "2024-01-01"))

	_, err := repo.UpdatePost(context.Background(), "missing", domain.PostInput{Title: "T", Body: "b"})
	assert.ErrorIs(t, err, domain.ErrPostNotFound)

	_, err = repo.UpdatePost(context.Background(), "p", domain.PostInput{Title: "", Body: "b"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = repo.UpdatePost(context.Background(), "../p", domain.PostInput{Title: "T", Body: "b"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDeletePost(t *testing.T) {
	repo, dir := setupTestRepo(t)
	writePost(t, dir, "p.mdx", post("P", "2024-01-01"))

	require.NoError(t, repo.DeletePost(context.Background(), "p"))
	assert.NoFileExists(t, filepath.Join(dir, "p.mdx"))

	err := repo.DeletePost(context.Background(), "p")
	assert.ErrorIs(t, err, domain.ErrPostNotFound)

	err = repo.DeletePost(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, domain.ErrPostNotFound)

	err = repo.DeletePost(context.Background(), "../etc")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestWriteFileAtomic_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.mdx")

	require.NoError(t, writeFileAtomic(path, []byte("one")))
	require.NoError(t, writeFileAtomic(path, []byte("two")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}
