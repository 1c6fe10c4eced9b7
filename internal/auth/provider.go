package auth

import (
	"context"
	"sync"

	"expense_tracker/internal/domain"
)

// Provider is one client's view of the authentication service: it holds the
// signed-in identity and its token and reports auth-state changes to
// listeners, emitting the current state as soon as a listener registers.
type Provider struct {
	service *Service

	mu        sync.Mutex
	identity  *domain.Identity
	token     string
	listeners map[int]func(*domain.Identity)
	nextID    int
}

// NewProvider returns a signed-out provider.
func NewProvider(service *Service) *Provider {
	return &Provider{service: service, listeners: make(map[int]func(*domain.Identity))}
}

// SignIn authenticates and switches the provider to the identity.
func (p *Provider) SignIn(ctx context.Context, email, password string) (domain.Identity, error) {
	identity, err := p.service.SignIn(ctx, email, password)
	if err != nil {
		return domain.Identity{}, err
	}
	return identity, p.establish(identity)
}

// SignUp creates the identity and signs it in.
func (p *Provider) SignUp(ctx context.Context, email, password string) (domain.Identity, error) {
	identity, err := p.service.SignUp(ctx, email, password)
	if err != nil {
		return domain.Identity{}, err
	}
	return identity, p.establish(identity)
}

// Resume restores the identity carried by a bearer token.
func (p *Provider) Resume(ctx context.Context, token string) error {
	claims, err := p.service.Verify(ctx, token)
	if err != nil {
		return err
	}
	p.set(&domain.Identity{UID: claims.UserID, Email: claims.Email}, token)
	return nil
}

// SignOut revokes the current token and reports the signed-out state.
func (p *Provider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	token := p.token
	p.mu.Unlock()
	if token != "" {
		if err := p.service.Revoke(ctx, token); err != nil {
			return err
		}
	}
	p.set(nil, "")
	return nil
}

// Token returns the bearer token of the signed-in identity.
func (p *Provider) Token() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.token
}

// OnAuthStateChanged registers fn and calls it with the current identity.
func (p *Provider) OnAuthStateChanged(fn func(*domain.Identity)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	current := p.identity
	p.mu.Unlock()

	fn(current)
	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

func (p *Provider) establish(identity domain.Identity) error {
	token, err := p.service.IssueToken(identity)
	if err != nil {
		return domain.NewError(domain.ErrAuth, "auth.token", "Failed to generate token", err)
	}
	p.set(&identity, token)
	return nil
}

func (p *Provider) set(identity *domain.Identity, token string) {
	p.mu.Lock()
	p.identity = identity
	p.token = token
	listeners := make([]func(*domain.Identity), 0, len(p.listeners))
	for _, fn := range p.listeners {
		listeners = append(listeners, fn)
	}
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(identity)
	}
}
