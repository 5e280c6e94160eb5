// Package catalog holds the static branch/service catalog.  The catalog
// is read-only configuration: it validates token scopes and supplies the
// display names copied onto tokens when they are issued.
package catalog

import (
	"sort"
	"strings"
)

// Branch keys.
const (
	Hospital = "hospital"
	Bank     = "bank"
)

// Service is one entry of a branch's service list.
type Service struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Branch groups the services offered under one token prefix.
type Branch struct {
	Key      string    `json:"key"`
	Prefix   string    `json:"prefix"`
	Services []Service `json:"services"`
}

// Catalog maps branch keys to their services.  The zero value is empty.
type Catalog struct {
	branches map[string]Branch
}

// New builds a catalog from the given branches.  Later duplicates replace
// earlier ones.
func New(branches ...Branch) *Catalog {
	c := &Catalog{branches: make(map[string]Branch, len(branches))}
	for _, b := range branches {
		c.branches[b.Key] = b
	}
	return c
}

// Default returns the hospital and bank catalog the service ships with.
func Default() *Catalog {
	return New(
		Branch{Key: Hospital, Prefix: "H", Services: []Service{
			{ID: "opd", Name: "OPD (Out Patient Department)"},
			{ID: "emergency", Name: "Emergency"},
			{ID: "cardiology", Name: "Cardiology"},
			{ID: "orthopedic", Name: "Orthopedic"},
			{ID: "pediatric", Name: "Pediatric"},
		}},
		Branch{Key: Bank, Prefix: "B", Services: []Service{
			{ID: "cash-deposit", Name: "Cash Deposit"},
			{ID: "loan-inquiry", Name: "Loan Inquiry"},
			{ID: "account-opening", Name: "Account Opening"},
			{ID: "investment", Name: "Investment Services"},
			{ID: "customer-service", Name: "Customer Service"},
		}},
	)
}

// Branch returns the branch registered under key.
func (c *Catalog) Branch(key string) (Branch, bool) {
	b, ok := c.branches[key]
	return b, ok
}

// Lookup resolves a (branch, service) pair.  ok is false when either
// part is unknown.
func (c *Catalog) Lookup(branch, serviceID string) (Branch, Service, bool) {
	b, ok := c.branches[branch]
	if !ok {
		return Branch{}, Service{}, false
	}
	for _, s := range b.Services {
		if s.ID == serviceID {
			return b, s, true
		}
	}
	return Branch{}, Service{}, false
}

// Branches lists every branch sorted by key.
func (c *Catalog) Branches() []Branch {
	out := make([]Branch, 0, len(c.branches))
	for _, b := range c.branches {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// ShortCode returns the first three ASCII letters of serviceID in upper
// case.  Fewer letters are returned when serviceID has fewer.
func ShortCode(serviceID string) string {
	var b strings.Builder
	for _, r := range serviceID {
		if b.Len() == 3 {
			break
		}
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 32)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		}
	}
	return b.String()
}
