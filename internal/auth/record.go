// Package auth manages the Spotify OAuth2 credential: its on-disk cache,
// silent refresh and interactive re-authorization.
package auth

import (
	"strings"
	"time"

	"golang.org/x/oauth2"

	"quickactions/internal/core"
)

// ErrAuthenticationRequired is shared with core so both layers agree on the sentinel.
var ErrAuthenticationRequired = core.ErrAuthenticationRequired

// TokenRecord is the persisted credential.
type TokenRecord struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	Scopes       []string  `json:"scopes,omitempty"`
}

// Valid reports whether the access token is usable at now for at least margin.
func (r *TokenRecord) Valid(now time.Time, margin time.Duration) bool {
	if r == nil || r.AccessToken == "" {
		return false
	}
	return now.Before(r.ExpiresAt.Add(-margin))
}

// Token converts the record to an oauth2 token.
func (r *TokenRecord) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		TokenType:    r.TokenType,
		Expiry:       r.ExpiresAt,
	}
}

// Clone returns a deep copy of the record.
func (r *TokenRecord) Clone() *TokenRecord {
	if r == nil {
		return nil
	}
	clone := *r
	clone.Scopes = append([]string(nil), r.Scopes...)
	return &clone
}

// RecordFromToken converts an oauth2 token. Granted scopes are read from the
// token's "scope" extra field.
func RecordFromToken(token *oauth2.Token) *TokenRecord {
	record := &TokenRecord{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		ExpiresAt:    token.Expiry,
	}
	if scope, ok := token.Extra("scope").(string); ok && scope != "" {
		record.Scopes = strings.Fields(scope)
	}
	return record
}
