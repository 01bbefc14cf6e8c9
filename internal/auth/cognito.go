package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"signalcraft-be/internal/config"
	"signalcraft-be/internal/logger"

	"go.uber.org/zap"
)

type TokenSet struct {
	AccessToken string `json:"access_token"`
	IDToken     string `json:"id_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type IdentityPoolConfig struct {
	IdentityPoolID string `json:"identityPoolId"`
	Region         string `json:"region"`
}

// CognitoClient talks to the hosted UI endpoints of the user pool domain.
type CognitoClient struct {
	domain       string
	clientID     string
	logoutURI    string
	identityPool IdentityPoolConfig
	httpClient   *http.Client
}

func NewCognitoClient(cfg *config.Config, httpClient *http.Client) *CognitoClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	region := cfg.CognitoIdentityPoolRegion
	if region == "" {
		region = cfg.CognitoRegion
	}
	return &CognitoClient{
		domain:    strings.TrimRight(cfg.CognitoDomain, "/"),
		clientID:  cfg.CognitoClientID,
		logoutURI: cfg.CognitoLogoutURI,
		identityPool: IdentityPoolConfig{
			IdentityPoolID: cfg.CognitoIdentityPoolID,
			Region:         region,
		},
		httpClient: httpClient,
	}
}

// Exchange redeems an authorization code (PKCE) for tokens.
func (c *CognitoClient) Exchange(ctx context.Context, code, codeVerifier, redirectURI string) (*TokenSet, error) {
	log := logger.FromCtx(ctx).With(zap.String("layer", "auth"), zap.String("method", "Exchange"))

	if c.domain == "" || c.clientID == "" {
		return nil, ErrNotConfigured
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", c.clientID)
	form.Set("code", code)
	form.Set("code_verifier", codeVerifier)
	form.Set("redirect_uri", redirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.domain+"/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("token endpoint unreachable", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn("token exchange rejected", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", ErrExchangeFailed, resp.StatusCode)
	}

	var tokens TokenSet
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrExchangeFailed, err)
	}
	if tokens.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access token", ErrExchangeFailed)
	}
	return &tokens, nil
}

func (c *CognitoClient) LogoutURL() (string, error) {
	if c.domain == "" || c.clientID == "" || c.logoutURI == "" {
		return "", ErrNotConfigured
	}
	q := url.Values{}
	q.Set("client_id", c.clientID)
	q.Set("logout_uri", c.logoutURI)
	return c.domain + "/logout?" + q.Encode(), nil
}

func (c *CognitoClient) IdentityPoolConfig() (IdentityPoolConfig, error) {
	if c.identityPool.IdentityPoolID == "" {
		return IdentityPoolConfig{}, ErrNotConfigured
	}
	return c.identityPool, nil
}
