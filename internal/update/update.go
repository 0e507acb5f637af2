// Package update replaces the running lambdo binary with the newest
// GitHub release.
package update

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/creativeprojects/go-selfupdate"
)

// Repository that publishes lambdo releases.
const (
	repoOwner = "cameronsjo"
	repoName  = "lambdo"
)

// DevVersion is the version of binaries built without release ldflags.
const DevVersion = "dev"

// Release describes an available release.
type Release struct {
	Version     string
	ReleaseURL  string
	PublishedAt string
	Changelog   string
}

func newRelease(r *selfupdate.Release) *Release {
	return &Release{
		Version:     r.Version(),
		ReleaseURL:  r.URL,
		PublishedAt: r.PublishedAt.Format("2006-01-02"),
		Changelog:   r.ReleaseNotes,
	}
}

func detectLatest(ctx context.Context) (*selfupdate.Updater, *selfupdate.Release, error) {
	source, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return nil, nil, fmt.Errorf("create update source: %w", err)
	}

	updater, err := selfupdate.NewUpdater(selfupdate.Config{Source: source})
	if err != nil {
		return nil, nil, fmt.Errorf("create updater: %w", err)
	}

	latest, found, err := updater.DetectLatest(ctx, selfupdate.NewRepositorySlug(repoOwner, repoName))
	if err != nil {
		return nil, nil, fmt.Errorf("detect latest version: %w", err)
	}
	if !found {
		return updater, nil, nil
	}
	return updater, latest, nil
}

// Check reports whether a release newer than current exists.
func Check(ctx context.Context, current string) (*Release, bool, error) {
	_, latest, err := detectLatest(ctx)
	if err != nil || latest == nil {
		return nil, false, err
	}
	if !Newer(latest, current) {
		return nil, false, nil
	}
	return newRelease(latest), true, nil
}

// Apply installs the newest release over the running binary. A nil release
// means current is already the newest.
func Apply(ctx context.Context, current string) (*Release, error) {
	updater, latest, err := detectLatest(ctx)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, fmt.Errorf("no releases found for %s/%s", repoOwner, repoName)
	}
	if !Newer(latest, current) {
		return nil, nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return nil, fmt.Errorf("locate executable: %w", err)
	}
	if err := updater.UpdateTo(ctx, latest, exe); err != nil {
		return nil, fmt.Errorf("update binary: %w", err)
	}
	return newRelease(latest), nil
}

// Newer reports whether latest is newer than current. Development builds
// are always considered out of date.
func Newer(latest *selfupdate.Release, current string) bool {
	if current == "" || current == DevVersion {
		return true
	}
	return !latest.LessOrEqual(strings.TrimPrefix(current, "v"))
}

// Platform returns the os/arch pair releases are selected for.
func Platform() string {
	return fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
}

// ChangelogPreview returns at most n lines of a changelog and how many
// were left out.
func ChangelogPreview(changelog string, n int) ([]string, int) {
	changelog = strings.TrimSpace(changelog)
	if changelog == "" {
		return nil, 0
	}
	lines := strings.Split(changelog, "\n")
	if len(lines) <= n {
		return lines, 0
	}
	return lines[:n], len(lines) - n
}
