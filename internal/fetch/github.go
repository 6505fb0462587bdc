// Package fetch downloads demo files attached to GitHub release assets,
// for pulling shared demo corpora onto a parse host.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	vcsurl "github.com/gitsight/go-vcsurl"
	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"

	"github.com/replaylab/demobridge/internal/logging"
)

func NewGitHubClient(token string) *github.Client {
	if token == "" {
		return github.NewClient(&http.Client{Timeout: 30 * time.Second})
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)
	tc.Timeout = 30 * time.Second
	return github.NewClient(tc)
}

// RepoFromURL resolves a repository URL or owner/name shorthand.
func RepoFromURL(raw string) (owner, name string, err error) {
	if !strings.ContainsAny(raw, ":@") && strings.Count(raw, "/") == 1 {
		parts := strings.SplitN(raw, "/", 2)
		if parts[0] == "" || parts[1] == "" {
			return "", "", fmt.Errorf("invalid repository %q", raw)
		}
		return parts[0], parts[1], nil
	}
	info, err := vcsurl.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("parse repository URL %q: %w", raw, err)
	}
	if info.Username == "" || info.Name == "" {
		return "", "", fmt.Errorf("repository URL %q has no owner/name", raw)
	}
	return info.Username, info.Name, nil
}

type DemoFetcher struct {
	client *github.Client
	owner  string
	repo   string
	logger logging.Logger
}

func NewDemoFetcher(client *github.Client, owner, repo string, logger logging.Logger) *DemoFetcher {
	return &DemoFetcher{client: client, owner: owner, repo: repo, logger: logger}
}

// Asset is a downloadable demo attached to a release.
type Asset struct {
	ID   int64
	Name string
	Size int64
}

// ListDemos lists the .dem assets of a release tag; an empty tag means
// the latest release.
func (f *DemoFetcher) ListDemos(ctx context.Context, tag string) ([]Asset, error) {
	release, err := f.release(ctx, tag)
	if err != nil {
		return nil, err
	}
	var assets []Asset
	for _, a := range release.Assets {
		if !strings.HasSuffix(a.GetName(), ".dem") {
			continue
		}
		assets = append(assets, Asset{ID: a.GetID(), Name: a.GetName(), Size: int64(a.GetSize())})
	}
	return assets, nil
}

// Download fetches one asset into dir and returns the local path.
func (f *DemoFetcher) Download(ctx context.Context, asset Asset, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	rc, _, err := f.client.Repositories.DownloadReleaseAsset(ctx, f.owner, f.repo, asset.ID, http.DefaultClient)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", asset.Name, err)
	}
	defer rc.Close()

	dest := filepath.Join(dir, filepath.Base(asset.Name))
	out, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	defer out.Close()

	n, err := io.Copy(out, rc)
	if err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("write %s: %w", dest, err)
	}
	f.logger.Info("downloaded demo", "asset", asset.Name, "bytes", n, "dest", dest)
	return dest, nil
}

func (f *DemoFetcher) release(ctx context.Context, tag string) (*github.RepositoryRelease, error) {
	if tag == "" {
		release, _, err := f.client.Repositories.GetLatestRelease(ctx, f.owner, f.repo)
		if err != nil {
			return nil, fmt.Errorf("latest release of %s/%s: %w", f.owner, f.repo, err)
		}
		return release, nil
	}
	release, _, err := f.client.Repositories.GetReleaseByTag(ctx, f.owner, f.repo, tag)
	if err != nil {
		return nil, fmt.Errorf("release %s of %s/%s: %w", tag, f.owner, f.repo, err)
	}
	return release, nil
}
