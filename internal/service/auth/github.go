package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	githubOAuthURL = "https://github.com/login/oauth/access_token"
	githubAPIURL   = "https://api.github.com"
)

// GitHubClient talks to GitHub's OAuth and user endpoints.
type GitHubClient struct {
	clientID     string
	clientSecret string
	httpClient   *http.Client
	baseOAuthURL string
	baseAPIURL   string
}

// NewGitHubClient constructs a client with the app's OAuth credentials.
func NewGitHubClient(clientID, clientSecret string) *GitHubClient {
	return &GitHubClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		baseOAuthURL: githubOAuthURL,
		baseAPIURL:   githubAPIURL,
	}
}

// GitHubProfile is the subset of the GitHub user payload we keep.
type GitHubProfile struct {
	ID    string
	Login string
	Name  string
}

// ExchangeCode swaps an OAuth authorization code for an access token.
func (c *GitHubClient) ExchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"code":          {code},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseOAuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("github token exchange: unexpected status %s", resp.Status)
	}
	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if body.AccessToken == "" {
		return "", errors.New("github token exchange: empty access token")
	}
	return body.AccessToken, nil
}

// UserInfo fetches the authenticated GitHub user.
func (c *GitHubClient) UserInfo(ctx context.Context, accessToken string) (*GitHubProfile, error) {
	var body struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
		Name  string `json:"name"`
	}
	if err := c.getJSON(ctx, accessToken, "/user", &body); err != nil {
		return nil, err
	}
	return &GitHubProfile{
		ID:    strconv.FormatInt(body.ID, 10),
		Login: body.Login,
		Name:  body.Name,
	}, nil
}

// PrimaryEmail returns the account's primary email address.
func (c *GitHubClient) PrimaryEmail(ctx context.Context, accessToken string) (string, error) {
	var emails []struct {
		Email   string `json:"email"`
		Primary bool   `json:"primary"`
	}
	if err := c.getJSON(ctx, accessToken, "/user/emails", &emails); err != nil {
		return "", err
	}
	for _, entry := range emails {
		if entry.Primary {
			return entry.Email, nil
		}
	}
	return "", errors.New("github: no primary email on account")
}

func (c *GitHubClient) getJSON(ctx context.Context, accessToken, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseAPIURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github %s: unexpected status %s", path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
