package user

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

const profileColumns = "id,username,firstname,lastname,avatar_url"

// HTTPProfiles interroge l'API REST du service de profils (PostgREST / Supabase).
type HTTPProfiles struct {
	client *resty.Client
}

func NewHTTPProfiles(baseURL, serviceKey string) *HTTPProfiles {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("apikey", serviceKey).
		SetHeader("Authorization", "Bearer "+serviceKey).
		SetHeader("Accept", "application/json")
	return &HTTPProfiles{client: client}
}

func (p *HTTPProfiles) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	return p.fetch(ctx, "id", userID)
}

func (p *HTTPProfiles) ResolveUsername(ctx context.Context, username string) (string, error) {
	profile, err := p.fetch(ctx, "username", username)
	if err != nil {
		return "", err
	}
	return profile.UserID, nil
}

func (p *HTTPProfiles) fetch(ctx context.Context, column, value string) (*Profile, error) {
	var profiles []Profile
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParam(column, "eq."+value).
		SetQueryParam("select", profileColumns).
		SetQueryParam("limit", "1").
		SetResult(&profiles).
		Get("/rest/v1/users")
	if err != nil {
		return nil, fmt.Errorf("service de profils: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, ErrUserNotFound
	}
	if resp.IsError() {
		return nil, fmt.Errorf("service de profils: statut %d", resp.StatusCode())
	}
	if len(profiles) == 0 {
		return nil, ErrUserNotFound
	}
	return &profiles[0], nil
}
