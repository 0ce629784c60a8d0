package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	googleoauth "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"
)

// ErrGoogleNotConfigured is returned when no OAuth client id is configured.
var ErrGoogleNotConfigured = errors.New("google sign-in is not configured")

// GoogleProfile is the identity Google vouches for.
type GoogleProfile struct {
	GoogleID      string
	Email         string
	Name          string
	Picture       string
	EmailVerified bool
}

type GoogleVerifier interface {
	// VerifyIDToken checks a Sign-In ID token against the configured client id.
	VerifyIDToken(ctx context.Context, token string) (*GoogleProfile, error)
	// FetchUserInfo resolves an OAuth access token through the userinfo endpoint.
	FetchUserInfo(ctx context.Context, accessToken string) (*GoogleProfile, error)
}

type googleVerifier struct {
	clientID string
}

func NewGoogleVerifier(clientID string) GoogleVerifier {
	return &googleVerifier{clientID: clientID}
}

func (v *googleVerifier) VerifyIDToken(ctx context.Context, token string) (*GoogleProfile, error) {
	if v.clientID == "" {
		return nil, ErrGoogleNotConfigured
	}

	payload, err := idtoken.Validate(ctx, token, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("validate id token: %w", err)
	}

	p := &GoogleProfile{GoogleID: payload.Subject}
	p.Email, _ = payload.Claims["email"].(string)
	p.Name, _ = payload.Claims["name"].(string)
	p.Picture, _ = payload.Claims["picture"].(string)
	p.EmailVerified, _ = payload.Claims["email_verified"].(bool)
	if p.Email == "" {
		return nil, errors.New("id token has no email claim")
	}
	return p, nil
}

func (v *googleVerifier) FetchUserInfo(ctx context.Context, accessToken string) (*GoogleProfile, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	svc, err := googleoauth.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create oauth2 service: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}

	p := &GoogleProfile{
		GoogleID: info.Id,
		Email:    info.Email,
		Name:     info.Name,
		Picture:  info.Picture,
	}
	if info.VerifiedEmail != nil {
		p.EmailVerified = *info.VerifiedEmail
	}
	if p.Email == "" {
		return nil, errors.New("userinfo has no email")
	}
	return p, nil
}
