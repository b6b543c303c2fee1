package session

import "sync"

// Redirector receives the navigation request of an invalid session.
type Redirector interface {
	SetRedirectURL(url string)
	SetRedirect(redirect bool)
}

// RedirectState records the last redirect request so a surface can act on it.
type RedirectState struct {
	mu       sync.Mutex
	url      string
	redirect bool
}

func (r *RedirectState) SetRedirectURL(url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.url = url
}

func (r *RedirectState) SetRedirect(redirect bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.redirect = redirect
}

// Consume returns the pending redirect and clears it, so a surface acts on it once.
func (r *RedirectState) Consume() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	url, redirect := r.url, r.redirect
	r.url, r.redirect = "", false
	return url, redirect
}

// Pending returns the redirect target when a redirect was requested.
func (r *RedirectState) Pending() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.url, r.redirect
}
