package identity

import "fmt"

// Registry tracks which owner minted each id so duplicates are caught before
// they reach the database. The zero value is not usable; use NewRegistry.
type Registry struct {
	owners map[string]string
}

// NewRegistry returns an empty id registry.
func NewRegistry() *Registry {
	return &Registry{owners: make(map[string]string)}
}

// Register claims an id for an owner. If the id is already claimed by a
// different owner it returns an error naming both claimants and does not
// change the registration.
func (r *Registry) Register(id, owner string) error {
	if existing, ok := r.owners[id]; ok {
		if existing == owner {
			return nil
		}
		return fmt.Errorf("id %q already registered to %q, refused for %q", id, existing, owner)
	}
	r.owners[id] = owner
	return nil
}

// Owner returns the registered owner of an id, if any.
func (r *Registry) Owner(id string) (string, bool) {
	owner, ok := r.owners[id]
	return owner, ok
}

// Len returns the number of registered ids.
func (r *Registry) Len() int {
	return len(r.owners)
}
