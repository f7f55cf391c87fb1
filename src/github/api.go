package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Visibility is repository visibility metadata from the API.
type Visibility struct {
	Private bool `json:"private"`
}

// RepoIsPrivate queries the repository's visibility. Unknown visibility
// (missing token, API failure, repo not resolvable) reports false: default
// attestation behavior treats the repository as not private.
func (c *Context) RepoIsPrivate(ctx context.Context) bool {
	if c.Repository == "" {
		return false
	}

	url := fmt.Sprintf("%s/repos/%s", strings.TrimRight(c.APIURL, "/"), c.Repository)

	var vis Visibility
	if err := c.doJSON(ctx, http.MethodGet, url, &vis); err != nil {
		return false
	}
	return vis.Private
}

func (c *Context) doJSON(ctx context.Context, method, url string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("GitHub API %s %s: %d %s", method, url, resp.StatusCode, string(body))
	}

	if result != nil {
		return json.Unmarshal(body, result)
	}
	return nil
}
