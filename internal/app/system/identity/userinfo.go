package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// UserInfoClient calls an OpenID Connect userinfo endpoint.
type UserInfoClient struct {
	url  string
	base *http.Client
}

// NewUserInfoClient returns a client for the endpoint at url. base is the
// transport client used underneath the oauth2 wrapper; nil means
// http.DefaultClient.
func NewUserInfoClient(url string, base *http.Client) *UserInfoClient {
	return &UserInfoClient{url: url, base: base}
}

type userInfo struct {
	Subject    string `json:"sub"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Nickname   string `json:"nickname"`
}

// Lookup fetches the caller's claims with accessToken as the bearer.
func (c *UserInfoClient) Lookup(ctx context.Context, accessToken string) (Profile, error) {
	if c.base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.base)
	}
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return Profile{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return Profile{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return Profile{}, fmt.Errorf("userinfo: status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var info userInfo
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&info); err != nil {
		return Profile{}, fmt.Errorf("userinfo: decode: %w", err)
	}

	name := info.Name
	if name == "" {
		name = strings.TrimSpace(info.GivenName + " " + info.FamilyName)
	}
	if name == "" {
		name = info.Nickname
	}
	return Profile{Email: info.Email, Name: name}, nil
}
