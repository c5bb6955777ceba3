package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/picabord/website/shared/config"
	"github.com/picabord/website/shared/metrics"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeContent(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	posts := map[string]string{
		"alpha.mdx": "---\ntitle: \"Alpha\"\ndate: \"2025-01-01\"\ncategory: \"Hardware\"\ntags: [\"pcb\"]\n---\n\n## Intro\n\nalpha body\n",
		"beta.md":   "---\ntitle: \"Beta\"\ndate: \"2025-02-01\"\ncategory: \"Software\"\n---\n\nbeta body\n",
		"gamma.mdx": "---\ntitle: \"Gamma\"\ndate: \"2025-03-01\"\npublished: false\n---\n\ngamma body\n",
	}
	for name, content := range posts {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Port:            8080,
		ContentDir:      writeContent(t),
		UploadsDir:      t.TempDir(),
		SiteURL:         "https://picabord.space",
		SiteAuthor:      "PICABORD Team",
		CMSUsername:     "admin",
		CMSPassword:     "pw",
		LogLevel:        "info",
		LogFormat:       "json",
		ShutdownTimeout: time.Second,
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger("warn", "json", &buf)
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)

	logger, err = newLogger("", "console", &buf)
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())

	_, err = newLogger("loud", "json", &buf)
	assert.Error(t, err)
}

func TestLoadConfig_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("CONTENT_DIR", "from-env")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "")

	cli := &CLI{EnvFile: filepath.Join(t.TempDir(), "absent.env"), ContentDir: "from-flag", LogFormat: "json"}
	cfg, err := cli.loadConfig()
	require.NoError(t, err)

	assert.Equal(t, "from-flag", cfg.ContentDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)

	cli.LogFormat = "yaml"
	_, err = cli.loadConfig()
	assert.Error(t, err)
}

func TestPostsListCmd(t *testing.T) {
	cfg := testConfig(t)
	svc := newPostService(cfg, metrics.NoopRecorder{})

	var out bytes.Buffer
	require.NoError(t, (&PostsListCmd{}).run(context.Background(), svc, &out))
	assert.Contains(t, out.String(), "alpha")
	assert.Contains(t, out.String(), "beta")
	assert.NotContains(t, out.String(), "gamma")

	out.Reset()
	require.NoError(t, (&PostsListCmd{All: true}).run(context.Background(), svc, &out))
	assert.Contains(t, out.String(), "gamma")

	out.Reset()
	require.NoError(t, (&PostsListCmd{Category: "Software"}).run(context.Background(), svc, &out))
	assert.Contains(t, out.String(), "beta")
	assert.NotContains(t, out.String(), "alpha")
}

func TestPostsShowCmd(t *testing.T) {
	svc := newPostService(testConfig(t), metrics.NoopRecorder{})

	var out bytes.Buffer
	require.NoError(t, (&PostsShowCmd{Slug: "alpha", HTML: true}).run(context.Background(), svc, &out))
	assert.Contains(t, out.String(), "Title:        Alpha")
	assert.Contains(t, out.String(), `<h2 id="intro">Intro</h2>`)

	err := (&PostsShowCmd{Slug: "gamma"}).run(context.Background(), svc, &out)
	assert.Error(t, err)
}

func TestNewRouter_ServesMetrics(t *testing.T) {
	reg := prom.NewRegistry()
	router := newRouter(testConfig(t), reg)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/posts", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `picabord_http_requests_total{method="GET",route="/api/posts",status="200"} 1`)
	assert.Contains(t, w.Body.String(), "picabord_content_scanned_files_total 3")
}
