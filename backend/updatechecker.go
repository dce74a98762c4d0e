package backend

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// UpdateChecker periodically logs when a newer release than the running
// version has been published.
type UpdateChecker struct {
	versionTagFound  string
	latestReleaseURL string
	appVersionTag    string
	httpC            *retryablehttp.Client
}

func NewUpdateChecker(appVersionTag, latestReleaseURL string) *UpdateChecker {
	c := retryablehttp.NewClient()
	c.RetryMax = 3
	c.Logger = nil
	return &UpdateChecker{
		appVersionTag:    appVersionTag,
		latestReleaseURL: latestReleaseURL,
		httpC:            c,
	}
}

func (u *UpdateChecker) Start(ctx context.Context, interval time.Duration) {
	go func() {
		u.checkForUpdate(ctx) // check once at startup
		t := time.NewTicker(interval)
		for {
			select {
			case <-ctx.Done():
				t.Stop()
				return
			case <-t.C:
				u.checkForUpdate(ctx)
			}
		}
	}()
}

func (u *UpdateChecker) checkForUpdate(ctx context.Context) {
	t := u.CheckLatestVersionTag(ctx)
	if t != "" && t != u.appVersionTag && t != u.versionTagFound {
		u.versionTagFound = t
		log.Printf("A new version is available: %s (running %s)", t, u.appVersionTag)
	}
}

// CheckLatestVersionTag follows the latest release redirect and returns the
// tag it lands on, or "" if it does not land on a release page.
func (u *UpdateChecker) CheckLatestVersionTag(ctx context.Context) string {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodHead, u.latestReleaseURL, nil)
	if err != nil {
		return ""
	}
	resp, err := u.httpC.Do(req)
	if err != nil {
		log.Printf("failed to check for newest version: %s", err.Error())
		return ""
	}
	resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return ""
	}
	// a release page looks like .../releases/tag/<tag>
	_, tag, found := strings.Cut(strings.TrimSuffix(resp.Request.URL.Path, "/"), "/tag/")
	if !found || tag == "" || strings.Contains(tag, "/") {
		return ""
	}
	return tag
}
