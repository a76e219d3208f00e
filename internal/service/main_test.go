package service

import (
	"sync"

	"github.com/RoyceAzure/lab/storefront/internal/authz"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
)

var (
	alice = authz.Identity{Username: "alice", Role: model.RoleUser}
	bob   = authz.Identity{Username: "bob", Role: model.RoleUser}
	root  = authz.Identity{Username: "root", Role: model.RoleAdmin}
)

type fakeMetrics struct {
	mu        sync.Mutex
	conflicts int
	outcomes  map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{outcomes: map[string]int{}}
}

func (f *fakeMetrics) StockConflict() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.conflicts++
}

func (f *fakeMetrics) CheckoutOutcome(outcome string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes[outcome]++
}

func anonymous() authz.Identity {
	return authz.Identity{}
}
