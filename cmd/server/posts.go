package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/picabord/website/blog/application"
	"github.com/picabord/website/blog/domain"
	"github.com/picabord/website/shared/metrics"
)

type PostsCmd struct {
	List PostsListCmd `cmd:"" default:"1" help:"List posts, newest first."`
	Show PostsShowCmd `cmd:"" help:"Print one published post."`
}

type PostsListCmd struct {
	All      bool   `name:"all" short:"a" help:"Include unpublished posts."`
	Category string `name:"category" short:"c" help:"Only posts in this category."`
}

func (l *PostsListCmd) Run(g *Globals) error {
	return l.run(context.Background(), newPostService(g.Config(), metrics.NoopRecorder{}), os.Stdout)
}

func (l *PostsListCmd) run(ctx context.Context, svc *application.PostService, out io.Writer) error {
	var (
		posts []*domain.Post
		err   error
	)
	switch {
	case l.All:
		posts, err = svc.ListAdminPosts(ctx)
	case l.Category != "":
		posts, err = svc.GetPostsByCategory(ctx, l.Category)
	default:
		posts, err = svc.GetAllPosts(ctx)
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tSLUG\tCATEGORY\tPUBLISHED\tTITLE")
	for _, p := range posts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", p.Date, p.Slug, p.Category, p.Published, p.Title)
	}
	return w.Flush()
}

type PostsShowCmd struct {
	Slug string `arg:"" help:"Slug of the post."`
	HTML bool   `name:"html" help:"Print the rendered HTML instead of the raw body."`
}

func (s *PostsShowCmd) Run(g *Globals) error {
	return s.run(context.Background(), newPostService(g.Config(), metrics.NoopRecorder{}), os.Stdout)
}

func (s *PostsShowCmd) run(ctx context.Context, svc *application.PostService, out io.Writer) error {
	rendered, err := svc.RenderPost(ctx, s.Slug)
	if err != nil {
		return err
	}
	p := rendered.Post

	fmt.Fprintf(out, "Title:        %s\n", p.Title)
	fmt.Fprintf(out, "Slug:         %s\n", p.Slug)
	fmt.Fprintf(out, "Date:         %s\n", p.Date)
	fmt.Fprintf(out, "Author:       %s\n", p.Author)
	fmt.Fprintf(out, "Category:     %s\n", p.Category)
	fmt.Fprintf(out, "Tags:         %s\n", strings.Join(p.Tags, ", "))
	fmt.Fprintf(out, "Reading time: %d min\n\n", p.ReadingTime)

	if s.HTML {
		fmt.Fprintln(out, rendered.HTML)
		return nil
	}
	fmt.Fprintln(out, p.Body)
	return nil
}

type CategoriesCmd struct{}

func (CategoriesCmd) Run(g *Globals) error {
	svc := newPostService(g.Config(), metrics.NoopRecorder{})
	categories, err := svc.GetAllCategories(context.Background())
	if err != nil {
		return err
	}
	return printLines(os.Stdout, categories)
}

type TagsCmd struct{}

func (TagsCmd) Run(g *Globals) error {
	svc := newPostService(g.Config(), metrics.NoopRecorder{})
	tags, err := svc.GetAllTags(context.Background())
	if err != nil {
		return err
	}
	return printLines(os.Stdout, tags)
}

func printLines(out io.Writer, lines []string) error {
	for _, l := range lines {
		if _, err := fmt.Fprintln(out, l); err != nil {
			return err
		}
	}
	return nil
}
