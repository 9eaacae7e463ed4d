// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package acl

import (
	"fmt"
	"strings"
)

// PrincipalKind distinguishes users, groups, and the catch-all
// "everyone" principal.
type PrincipalKind int

const (
	// User is a single account.
	User PrincipalKind = iota

	// Group is a group of accounts.
	Group

	// Everyone matches any account not covered by a more specific
	// entry. On Linux it maps to the "other" permission class.
	Everyone
)

// String returns "user", "group", or "everyone".
func (k PrincipalKind) String() string {
	switch k {
	case User:
		return "user"
	case Group:
		return "group"
	case Everyone:
		return "everyone"
	default:
		return fmt.Sprintf("PrincipalKind(%d)", int(k))
	}
}

// Principal identifies who a rule applies to.
type Principal struct {
	Kind PrincipalKind
	Name string
}

// Administrators is the principal that owns a protected vault and
// always keeps access to it. On Linux this is the root account.
var Administrators = Principal{Kind: User, Name: "root"}

// EveryonePrincipal is the catch-all principal.
var EveryonePrincipal = Principal{Kind: Everyone, Name: "everyone"}

// UserPrincipal returns the principal for a user account.
func UserPrincipal(name string) Principal {
	return Principal{Kind: User, Name: name}
}

// GroupPrincipal returns the principal for a group.
func GroupPrincipal(name string) Principal {
	return Principal{Kind: Group, Name: name}
}

// IsZero reports whether p is the zero Principal (no owner or group set).
func (p Principal) IsZero() bool {
	return p == Principal{}
}

// String renders the principal as "kind:name", the form accepted by
// ParsePrincipal.
func (p Principal) String() string {
	if p.Kind == Everyone {
		return "everyone"
	}
	return p.Kind.String() + ":" + p.Name
}

// ParsePrincipal parses "user:NAME", "group:NAME", or "everyone". A bare
// name without a kind prefix is taken as a user.
func ParsePrincipal(text string) (Principal, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Principal{}, fmt.Errorf("empty principal")
	}
	if text == "everyone" {
		return EveryonePrincipal, nil
	}
	kind, name, found := strings.Cut(text, ":")
	if !found {
		return UserPrincipal(text), nil
	}
	if name == "" {
		return Principal{}, fmt.Errorf("principal %q has no name", text)
	}
	switch kind {
	case "user":
		return UserPrincipal(name), nil
	case "group":
		return GroupPrincipal(name), nil
	default:
		return Principal{}, fmt.Errorf("principal %q: unknown kind %q (want user, group, or everyone)", text, kind)
	}
}

// Rights is a set of access rights.
type Rights uint8

const (
	// Read allows reading the file contents.
	Read Rights = 1 << iota

	// Write allows modifying the file contents.
	Write

	// Execute allows executing the file (or traversing a directory).
	Execute

	// FullControl is every right.
	FullControl = Read | Write | Execute
)

// Has reports whether r includes every right in other.
func (r Rights) Has(other Rights) bool {
	return r&other == other
}

// String renders rights in "rwx" form, with '-' for missing rights.
func (r Rights) String() string {
	var builder strings.Builder
	for _, entry := range []struct {
		right  Rights
		letter byte
	}{{Read, 'r'}, {Write, 'w'}, {Execute, 'x'}} {
		if r.Has(entry.right) {
			builder.WriteByte(entry.letter)
		} else {
			builder.WriteByte('-')
		}
	}
	return builder.String()
}

// ParseRights parses either a compact letter form ("rw", "r-x") or a
// comma-separated word list ("read,write", "full").
func ParseRights(text string) (Rights, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fmt.Errorf("empty rights")
	}
	if strings.ContainsAny(text, ",") || len(text) > 3 {
		var rights Rights
		for _, word := range strings.Split(text, ",") {
			right, err := parseRightWord(strings.TrimSpace(word))
			if err != nil {
				return 0, err
			}
			rights |= right
		}
		return rights, nil
	}
	if right, err := parseRightWord(text); err == nil {
		return right, nil
	}
	var rights Rights
	for _, letter := range text {
		switch letter {
		case 'r':
			rights |= Read
		case 'w':
			rights |= Write
		case 'x':
			rights |= Execute
		case '-':
		default:
			return 0, fmt.Errorf("rights %q: unknown letter %q", text, letter)
		}
	}
	return rights, nil
}

// ParseRightsList combines a list of right words (as found in the
// configuration file) into one set.
func ParseRightsList(words []string) (Rights, error) {
	if len(words) == 0 {
		return 0, fmt.Errorf("empty rights")
	}
	var rights Rights
	for _, word := range words {
		right, err := ParseRights(word)
		if err != nil {
			return 0, err
		}
		rights |= right
	}
	return rights, nil
}

func parseRightWord(word string) (Rights, error) {
	switch word {
	case "read":
		return Read, nil
	case "write":
		return Write, nil
	case "execute":
		return Execute, nil
	case "full", "full-control", "all":
		return FullControl, nil
	default:
		return 0, fmt.Errorf("unknown right %q", word)
	}
}

// ControlType says whether a rule grants or withholds its rights.
type ControlType int

const (
	// Allow grants the rule's rights.
	Allow ControlType = iota

	// Deny withholds the rule's rights, overriding any allow.
	Deny
)

// String returns "allow" or "deny".
func (c ControlType) String() string {
	if c == Deny {
		return "deny"
	}
	return "allow"
}

// ParseControlType parses "allow" or "deny".
func ParseControlType(text string) (ControlType, error) {
	switch strings.TrimSpace(text) {
	case "allow", "":
		return Allow, nil
	case "deny":
		return Deny, nil
	default:
		return Allow, fmt.Errorf("unknown control type %q (want allow or deny)", text)
	}
}

// Rule grants or withholds rights for one principal.
type Rule struct {
	Principal Principal
	Rights    Rights
	Type      ControlType

	// Inherited marks rules that come from the enclosing directory
	// rather than from the file itself.
	Inherited bool
}

// AllowRule returns an explicit allow rule.
func AllowRule(principal Principal, rights Rights) Rule {
	return Rule{Principal: principal, Rights: rights, Type: Allow}
}

// DenyRule returns an explicit deny rule.
func DenyRule(principal Principal, rights Rights) Rule {
	return Rule{Principal: principal, Rights: rights, Type: Deny}
}

// String renders the rule as "allow user:alice rw-".
func (r Rule) String() string {
	text := r.Type.String() + " " + r.Principal.String() + " " + r.Rights.String()
	if r.Inherited {
		text += " (inherited)"
	}
	return text
}

// ParseRule parses "PRINCIPAL=RIGHTS" with the given control type, for
// example "user:alice=rw" or "group:backup=read".
func ParseRule(text string, controlType ControlType) (Rule, error) {
	principalText, rightsText, found := strings.Cut(text, "=")
	if !found {
		return Rule{}, fmt.Errorf("rule %q: want PRINCIPAL=RIGHTS", text)
	}
	principal, err := ParsePrincipal(principalText)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %q: %w", text, err)
	}
	rights, err := ParseRights(rightsText)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %q: %w", text, err)
	}
	return Rule{Principal: principal, Rights: rights, Type: controlType}, nil
}

// AdministratorsOwnRule is the rule every protected vault carries. On a
// file the administrators get read and write; a directory also needs
// execute to be traversed.
func AdministratorsOwnRule(administrators Principal, isFile bool) Rule {
	if isFile {
		return AllowRule(administrators, Read|Write)
	}
	return AllowRule(administrators, FullControl)
}
