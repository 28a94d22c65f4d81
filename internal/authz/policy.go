// Package authz decides administrative rights. The policy is injected so the
// allow-list can be swapped for a role-based check without touching call
// sites.
package authz

import (
	"strings"

	"github.com/google/uuid"
)

// Actor is the authenticated caller as seen by the transactional core.
type Actor struct {
	UserID uuid.UUID
	Email  string
}

// Policy grants or denies admin rights over platform resources.
type Policy interface {
	IsAdmin(actor Actor) bool
}

// EmailAllowlist grants admin rights to a fixed set of emails.
type EmailAllowlist struct {
	emails map[string]bool
}

func NewEmailAllowlist(emails []string) *EmailAllowlist {
	m := make(map[string]bool, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			m[e] = true
		}
	}
	return &EmailAllowlist{emails: m}
}

func (p *EmailAllowlist) IsAdmin(actor Actor) bool {
	return p.emails[strings.ToLower(actor.Email)]
}
