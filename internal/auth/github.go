package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/google/go-github/v61/github"
	"golang.org/x/sync/errgroup"
)

const gitHubUserAgent = "DevFlow"

type GitHubProfile struct {
	ID        int64
	Login     string
	AvatarURL string
	Raw       json.RawMessage
}

type GitHubEmail struct {
	Email    string
	Primary  bool
	Verified bool
}

// GitHubClient reads the authenticated user's profile and emails.
type GitHubClient struct {
	httpClient *http.Client
	baseURL    *url.URL
}

func NewGitHubClient(httpClient *http.Client) *GitHubClient {
	return &GitHubClient{httpClient: httpClient}
}

// WithBaseURL points the client at another API root, such as a GitHub
// Enterprise host or a test server. The URL must end in a slash.
func (c *GitHubClient) WithBaseURL(u *url.URL) *GitHubClient {
	clone := *c
	clone.baseURL = u
	return &clone
}

func (c *GitHubClient) client(accessToken string) *github.Client {
	gh := github.NewClient(c.httpClient).WithAuthToken(accessToken)
	gh.UserAgent = gitHubUserAgent
	if c.baseURL != nil {
		gh.BaseURL = c.baseURL
	}
	return gh
}

// Fetch loads /user and /user/emails concurrently.
func (c *GitHubClient) Fetch(ctx context.Context, accessToken string) (*GitHubProfile, []GitHubEmail, error) {
	gh := c.client(accessToken)

	var (
		profile *GitHubProfile
		emails  []GitHubEmail
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		user, _, err := gh.Users.Get(gctx, "")
		if err != nil {
			return errProfileFetch.Wrap(err)
		}

		raw, err := json.Marshal(user)
		if err != nil {
			return err
		}

		profile = &GitHubProfile{
			ID:        user.GetID(),
			Login:     user.GetLogin(),
			AvatarURL: user.GetAvatarURL(),
			Raw:       raw,
		}
		return nil
	})

	g.Go(func() error {
		list, _, err := gh.Users.ListEmails(gctx, &github.ListOptions{PerPage: 100})
		if err != nil {
			return errEmailsFetch.Wrap(err)
		}

		for _, e := range list {
			emails = append(emails, GitHubEmail{
				Email:    e.GetEmail(),
				Primary:  e.GetPrimary(),
				Verified: e.GetVerified(),
			})
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return profile, emails, nil
}
