package router

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/bobg/hub/driver"
)

var _ Dialer = &Local{}

// Local is a Dialer for routers in the same process.
type Local struct {
	mu      sync.Mutex
	routers map[string]*Router
}

// NewLocal produces a new, empty Local.
func NewLocal() *Local {
	return &Local{routers: make(map[string]*Router)}
}

// Add makes r reachable under its service name.
func (l *Local) Add(r *Router) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.routers[r.Name()] = r
}

// Dial implements Dialer.
func (l *Local) Dial(_ context.Context, service string) (Source, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.routers[service]
	if !ok {
		return nil, &driver.ServiceError{Err: errors.Errorf("no router for service %s", service)}
	}
	return r, nil
}
