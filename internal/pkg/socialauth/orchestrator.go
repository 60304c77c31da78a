package socialauth

import (
	"context"
	"fmt"
	"strings"
	"time"

	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/Lloyd3312/brightpost-ai/app/models"
	"github.com/Lloyd3312/brightpost-ai/app/repository"
)

// Orchestrator drives the two-phase connection protocol. Initiate is pure URL
// building; Callback runs the upstream calls in strict order and writes the
// credential store exactly once, after everything succeeded.
type Orchestrator struct {
	registry      *Registry
	states        *StateCodec
	accounts      repository.ConnectedAccountRepository
	publicBaseURL string
}

// NewOrchestrator wires the connection flows.
func NewOrchestrator(registry *Registry, states *StateCodec, accounts repository.ConnectedAccountRepository, publicBaseURL string) *Orchestrator {
	return &Orchestrator{
		registry:      registry,
		states:        states,
		accounts:      accounts,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// ClientManagedRedirect reports whether the platform's callback is relayed by
// the client application (and therefore answers with a client-chosen
// redirect URI instead of this service's fixed callback).
func (o *Orchestrator) ClientManagedRedirect(slug string) (bool, error) {
	p, err := o.registry.Get(slug)
	if err != nil {
		return false, err
	}
	return p.StateBinding() == BindSession, nil
}

// Initiate builds the provider consent URL for the authenticated user. No
// network or storage I/O happens here; calling it twice yields two
// independent valid URLs.
func (o *Orchestrator) Initiate(ctx context.Context, userID, slug, redirectURI string) (string, error) {
	if userID == "" {
		return "", ErrUnauthorized
	}
	p, err := o.registry.Get(slug)
	if err != nil {
		return "", err
	}

	state := ""
	switch p.StateBinding() {
	case BindState:
		redirectURI = o.callbackURL(slug)
		state, err = o.states.Issue(userID, slug)
		if err != nil {
			return "", err
		}
	case BindSession:
		if redirectURI == "" {
			return "", &ValidationError{Message: "redirectUri is required"}
		}
	}

	return p.AuthorizationURL(state, redirectURI)
}

// Callback completes a connection attempt: code exchange, optional token
// extension, account resolution, then one upsert. Any failure aborts the
// whole operation with nothing persisted.
func (o *Orchestrator) Callback(ctx context.Context, sessionUserID, slug, code, state, redirectURI string) (string, error) {
	p, err := o.registry.Get(slug)
	if err != nil {
		return "", err
	}
	if code == "" {
		return "", &ValidationError{Message: "missing authorization code"}
	}

	// The persisted owner comes from the verified state for providers whose
	// redirect lands here unauthenticated, and from the caller's session for
	// providers relayed by the client app. Intentionally asymmetric.
	var userID string
	switch p.StateBinding() {
	case BindState:
		redirectURI = o.callbackURL(slug)
		userID, err = o.states.Redeem(ctx, state, slug)
		if err != nil {
			return "", err
		}
	case BindSession:
		if sessionUserID == "" {
			return "", ErrUnauthorized
		}
		if redirectURI == "" {
			return "", &ValidationError{Message: "redirectUri is required"}
		}
		userID = sessionUserID
	}

	token, err := p.ExchangeCode(ctx, code, redirectURI)
	if err != nil {
		return "", err
	}

	if extender, ok := p.(TokenExtender); ok {
		token, err = extender.ExtendToken(ctx, token)
		if err != nil {
			return "", err
		}
	}

	account, err := p.ResolveAccount(ctx, token)
	if err != nil {
		return "", err
	}

	material := token
	if account.Token != nil {
		material = account.Token
	}
	var expiresAt *time.Time
	if !material.Expiry.IsZero() {
		t := material.Expiry
		expiresAt = &t
	}

	record := &models.ConnectedAccount{
		UserID:         userID,
		Platform:       p.Platform(),
		AccessToken:    material.AccessToken,
		RefreshToken:   material.RefreshToken,
		TokenExpiresAt: expiresAt,
		AccountName:    account.Name,
		IsActive:       true,
	}
	if err := o.accounts.Upsert(record); err != nil {
		return "", fmt.Errorf("failed to save connection: %w", err)
	}

	fiberlog.Infof("[OAuth] linked %s account %q for user %s", p.Platform(), account.Name, userID)
	return account.Name, nil
}

// callbackURL is the fixed redirect target registered with state-bound
// providers.
func (o *Orchestrator) callbackURL(slug string) string {
	return o.publicBaseURL + "/api/v1/oauth-" + slug
}
