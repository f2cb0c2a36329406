package identity

import (
	"context"
	"errors"
	"net/http"
	"time"

	cErr "joingo/internal/pkg/error"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// OAuth2PasswordAuthenticator 以 resource owner password grant 登入
type OAuth2PasswordAuthenticator struct {
	logger     *zap.Logger
	config     *oauth2.Config
	verifier   TokenVerifier
	httpClient *http.Client
	now        func() time.Time
}

func NewOAuth2PasswordAuthenticator(logger *zap.Logger, tokenURL, clientID, clientSecret string, verifier TokenVerifier, httpClient *http.Client) *OAuth2PasswordAuthenticator {
	return &OAuth2PasswordAuthenticator{
		logger: logger,
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: tokenURL, AuthStyle: oauth2.AuthStyleInParams},
			Scopes:       []string{"openid", "email", "profile"},
		},
		verifier:   verifier,
		httpClient: httpClient,
		now:        time.Now,
	}
}

func (a *OAuth2PasswordAuthenticator) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	token, err := a.config.PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			status := 0
			if re.Response != nil {
				status = re.Response.StatusCode
			}
			a.logger.Info("identity: sign-in rejected", zap.Int("status", status))
			return nil, cErr.Unauthorized("Invalid email or password")
		}
		a.logger.Error("identity: sign-in request failed", zap.Error(err))
		return nil, cErr.ExternalRequestError("Identity provider unreachable")
	}

	idToken, _ := token.Extra("id_token").(string)
	if idToken == "" {
		a.logger.Error("identity: token response without id_token")
		return nil, cErr.Unauthorized("Invalid email or password")
	}
	subject, err := a.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}

	var expiresIn int64
	if !token.Expiry.IsZero() {
		expiresIn = int64(token.Expiry.Sub(a.now()).Seconds())
	}
	return &SignInResult{
		IDToken:      idToken,
		RefreshToken: token.RefreshToken,
		ExpiresIn:    expiresIn,
		SubjectID:    subject.SubjectID,
		Email:        subject.Email,
		DisplayName:  subject.DisplayName,
	}, nil
}
