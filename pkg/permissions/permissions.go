// Package permissions decides whether an actor may perform an action on a
// resource. Policies are plain functions and never touch the database.
package permissions

import "errors"

var (
	ErrNotAuthenticated = errors.New("authentication credentials were not provided")
	ErrPermissionDenied = errors.New("you do not have permission to perform this action")
)

type Action string

const (
	List     Action = "list"
	Retrieve Action = "retrieve"
	Create   Action = "create"
	Update   Action = "update"
	Delete   Action = "delete"
)

// Safe reports whether the action only reads.
func (a Action) Safe() bool {
	return a == List || a == Retrieve
}

// Actor is the caller of a request. The zero value is an anonymous caller.
type Actor struct {
	ID            string
	Email         string
	Authenticated bool
	IsSuperuser   bool
	IsStaff       bool
	IsAdmin       bool
}

// Resource describes the object being acted upon. OwnerID is empty for
// collection level actions.
type Resource struct {
	Kind    string
	OwnerID string
}

// Policy returns nil when the actor may perform the action.
type Policy func(actor Actor, action Action, resource Resource) error

func deny(actor Actor) error {
	if !actor.Authenticated {
		return ErrNotAuthenticated
	}
	return ErrPermissionDenied
}

// AllowAny lets every caller through.
func AllowAny(Actor, Action, Resource) error {
	return nil
}

// Authenticated requires a logged in caller.
func Authenticated(actor Actor, _ Action, _ Resource) error {
	if !actor.Authenticated {
		return ErrNotAuthenticated
	}
	return nil
}

// AdminOrReadOnly lets anyone read and only superusers write.
func AdminOrReadOnly(actor Actor, action Action, _ Resource) error {
	if action.Safe() {
		return nil
	}
	if actor.Authenticated && actor.IsSuperuser {
		return nil
	}
	return deny(actor)
}

// AdminOrSeller lets anyone read, any authenticated caller create, and only
// the owner of the resource or a superuser change it.
func AdminOrSeller(actor Actor, action Action, resource Resource) error {
	if action.Safe() {
		return nil
	}
	if !actor.Authenticated {
		return ErrNotAuthenticated
	}
	if actor.IsSuperuser || action == Create {
		return nil
	}
	if resource.OwnerID != "" && resource.OwnerID == actor.ID {
		return nil
	}
	return ErrPermissionDenied
}

// UserOrAdmin grants access to the user the resource belongs to or to a
// superuser.
func UserOrAdmin(actor Actor, _ Action, resource Resource) error {
	if !actor.Authenticated {
		return ErrNotAuthenticated
	}
	if actor.IsSuperuser || (resource.OwnerID != "" && resource.OwnerID == actor.ID) {
		return nil
	}
	return ErrPermissionDenied
}

// AdminUser grants access to staff members only.
func AdminUser(actor Actor, _ Action, _ Resource) error {
	if actor.Authenticated && actor.IsStaff {
		return nil
	}
	return deny(actor)
}

// Check runs policy and returns its verdict.
func Check(policy Policy, actor Actor, action Action, resource Resource) error {
	if policy == nil {
		return nil
	}
	return policy(actor, action, resource)
}
