// Package resource gates marketplace records (orders, proposals, reviews,
// chats, messages) behind the caller's role before handing off to a store.
package resource

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/heimu09/ApartXCleaning/internal/domain"
)

type Kind string

const (
	KindOrder    Kind = "order"
	KindProposal Kind = "proposal"
	KindReview   Kind = "review"
	KindChat     Kind = "chat"
	KindMessage  Kind = "message"
)

// Kinds lists every gated kind in display order.
var Kinds = []Kind{KindOrder, KindProposal, KindReview, KindChat, KindMessage}

type Action string

const (
	ActionRead  Action = "read"
	ActionWrite Action = "write"
)

// Record is an opaque marketplace entity. The store owns its payload shape.
type Record struct {
	ID        string          `json:"id"`
	Kind      Kind            `json:"kind"`
	OwnerID   string          `json:"owner_id"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created"`
}

// Store persists records on behalf of an explicit caller. No persistent
// store is bound yet; routes expose only PolicyFor.
type Store interface {
	Create(ctx context.Context, ident domain.Identity, r *Record) error
	Get(ctx context.Context, ident domain.Identity, kind Kind, id string) (*Record, error)
	List(ctx context.Context, ident domain.Identity, kind Kind) ([]Record, error)
}

type grant struct{ read, write bool }

var policy = map[string]map[Kind]grant{
	domain.RoleCustomer: {
		KindOrder:    {read: true, write: true},
		KindProposal: {read: true},
		KindReview:   {read: true, write: true},
		KindChat:     {read: true, write: true},
		KindMessage:  {read: true, write: true},
	},
	domain.RoleExecutor: {
		KindOrder:    {read: true},
		KindProposal: {read: true, write: true},
		KindReview:   {read: true},
		KindChat:     {read: true, write: true},
		KindMessage:  {read: true, write: true},
	},
}

// Permission is one row of a role's policy.
type Permission struct {
	Kind    Kind     `json:"kind"`
	Actions []Action `json:"actions"`
}

// PolicyFor returns what role may do, one entry per kind it can touch.
// An unknown or empty role gets nothing.
func PolicyFor(role string) []Permission {
	grants, ok := policy[role]
	if !ok {
		return []Permission{}
	}
	out := make([]Permission, 0, len(Kinds))
	for _, k := range Kinds {
		g := grants[k]
		var actions []Action
		if g.read {
			actions = append(actions, ActionRead)
		}
		if g.write {
			actions = append(actions, ActionWrite)
		}
		if len(actions) > 0 {
			out = append(out, Permission{Kind: k, Actions: actions})
		}
	}
	return out
}

// Authorize reports whether ident may perform action on kind.
func Authorize(ident domain.Identity, kind Kind, action Action) error {
	if ident.UserID == "" {
		return domain.ErrUnauthorized
	}
	if !ident.HasRole() {
		return fmt.Errorf("select a role first: %w", domain.ErrForbidden)
	}
	g, ok := policy[ident.Role][kind]
	if !ok {
		return fmt.Errorf("%s cannot access %s: %w", ident.Role, kind, domain.ErrForbidden)
	}
	allowed := (action == ActionRead && g.read) || (action == ActionWrite && g.write)
	if !allowed {
		return fmt.Errorf("%s cannot %s %s: %w", ident.Role, action, kind, domain.ErrForbidden)
	}
	return nil
}

// Guard is a Store that authorizes every call before delegating to next.
// Nothing in the router constructs one until a marketplace store lands.
type Guard struct {
	next Store
}

func NewGuard(next Store) *Guard {
	return &Guard{next: next}
}

func (g *Guard) Create(ctx context.Context, ident domain.Identity, r *Record) error {
	if err := Authorize(ident, r.Kind, ActionWrite); err != nil {
		return err
	}
	r.OwnerID = ident.UserID
	return g.next.Create(ctx, ident, r)
}

func (g *Guard) Get(ctx context.Context, ident domain.Identity, kind Kind, id string) (*Record, error) {
	if err := Authorize(ident, kind, ActionRead); err != nil {
		return nil, err
	}
	return g.next.Get(ctx, ident, kind, id)
}

func (g *Guard) List(ctx context.Context, ident domain.Identity, kind Kind) ([]Record, error) {
	if err := Authorize(ident, kind, ActionRead); err != nil {
		return nil, err
	}
	return g.next.List(ctx, ident, kind)
}
