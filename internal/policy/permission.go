// Package policy decides what an authenticated account may do.
//
// Authorization is two-step: the role profile must grant "resource:action",
// then the resource policy (ownership) must accept the loaded resource.
package policy

import (
	"errors"
	"strings"
)

// Action describes the kind of operation a user wants to perform.
type Action string

const (
	ActionView           Action = "view"
	ActionUpdate         Action = "update"
	ActionSwitchAutonome Action = "switch_autonome"
)

// Resource types.
const (
	ResourceCandidacy   = "candidacy"
	ResourceFeasibility = "feasibility"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Permission is "resource:action", e.g. "candidacy:view".
type Permission string

const (
	wildcard             = "*"
	PermissionSuperAdmin = Permission("*:*")
)

func NewPermission(resource string, action Action) Permission {
	return Permission(resource + ":" + string(action))
}

func (p Permission) Parse() (resource string, action Action) {
	res, act, ok := strings.Cut(string(p), ":")
	if !ok {
		return "", ""
	}
	return res, Action(act)
}

// Matches supports "*:*" and "resource:*".
func (p Permission) Matches(requested Permission) bool {
	if p == PermissionSuperAdmin || p == requested {
		return true
	}
	res, act := p.Parse()
	reqRes, _ := requested.Parse()
	return res != "" && res == reqRes && string(act) == wildcard
}
