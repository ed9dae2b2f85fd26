package sambatool

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidAction is returned when an action is not one of the
// subcommands supported by "samba-tool dns".
var ErrInvalidAction = errors.New("action is not supported by samba-tool dns")

// Action is a "samba-tool dns" subcommand.
type Action string

const (
	// ActionAdd adds a record to a zone.
	ActionAdd Action = "add"
	// ActionDelete removes a record from a zone.
	ActionDelete Action = "delete"
	// ActionZoneCreate creates a zone.
	ActionZoneCreate Action = "zonecreate"
	// ActionZoneDelete deletes a zone.
	ActionZoneDelete Action = "zonedelete"
	// ActionServerInfo queries server information. Used as a connectivity probe.
	ActionServerInfo Action = "serverinfo"
)

// Actions lists every supported action.
var Actions = []Action{ActionAdd, ActionDelete, ActionZoneCreate, ActionZoneDelete, ActionServerInfo}

// ParseAction parses an action name. Matching is case-insensitive.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	if !a.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, s)
	}
	return a, nil
}

// IsValid reports whether a is a supported action.
func (a Action) IsValid() bool {
	switch a {
	case ActionAdd, ActionDelete, ActionZoneCreate, ActionZoneDelete, ActionServerInfo:
		return true
	default:
		return false
	}
}

// IsMutating reports whether the action changes backend state.
func (a Action) IsMutating() bool {
	return a.IsValid() && a != ActionServerInfo
}

func (a Action) String() string {
	return string(a)
}
