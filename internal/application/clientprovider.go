package application

import (
	"sync"
)

// InteractorProvider enables runtime hot-swap of the signed-in account. It
// holds a mutex-protected reference to the current Interactors so that a
// sign-in or sign-out takes effect without restarting the application.
type InteractorProvider struct {
	mu          sync.RWMutex
	interactors *Interactors
}

// NewInteractorProvider creates a provider with the given initial
// interactors. interactors may be nil when no account is signed in.
func NewInteractorProvider(interactors *Interactors) *InteractorProvider {
	return &InteractorProvider{interactors: interactors}
}

// Get returns the current interactors, or nil when signed out.
func (p *InteractorProvider) Get() *Interactors {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.interactors
}

// Replace swaps the current interactors. Passing nil signs out.
func (p *InteractorProvider) Replace(interactors *Interactors) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.interactors = interactors
}

// HasAccount returns true if interactors for an account are currently held.
func (p *InteractorProvider) HasAccount() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.interactors != nil
}
