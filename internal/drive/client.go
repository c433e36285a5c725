package drive

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"sapcs/internal/config"
)

// NewService builds an authenticated Drive API service. A complete OAuth
// triple (client id, secret, refresh token) takes precedence; otherwise the
// service falls back to application default credentials with the drive scope.
func NewService(ctx context.Context, cfg config.DriveConfig) (*gdrive.Service, error) {
	if cfg.ClientID != "" && cfg.ClientSecret != "" && cfg.RefreshToken != "" {
		conf := &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{gdrive.DriveScope},
		}
		ts := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
		svc, err := gdrive.NewService(ctx, option.WithTokenSource(ts))
		if err != nil {
			return nil, fmt.Errorf("create drive service: %w", err)
		}
		return svc, nil
	}

	svc, err := gdrive.NewService(ctx, option.WithScopes(gdrive.DriveScope))
	if err != nil {
		return nil, fmt.Errorf("create drive service with default credentials: %w", err)
	}
	return svc, nil
}
