// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package acl

import "strings"

// Descriptor is the access-control state of one file.
type Descriptor struct {
	// Owner is the principal that owns the file. Zero means unchanged
	// when the descriptor is applied.
	Owner Principal

	// Group is the owning group. Zero means unchanged.
	Group Principal

	// Protected disables inheritance of rules from the enclosing
	// directory.
	Protected bool

	rules []Rule
}

// NewDescriptor returns a descriptor holding a copy of rules.
func NewDescriptor(owner, group Principal, rules ...Rule) *Descriptor {
	return &Descriptor{
		Owner: owner,
		Group: group,
		rules: append([]Rule(nil), rules...),
	}
}

// Rules returns a copy of the rules in evaluation order.
func (d *Descriptor) Rules() []Rule {
	return append([]Rule(nil), d.rules...)
}

// Clone returns an independent copy of d.
func (d *Descriptor) Clone() *Descriptor {
	clone := *d
	clone.rules = d.Rules()
	return &clone
}

// SetProtection sets whether the descriptor is protected from
// inheritance. When protecting, preserveInherited decides whether
// inherited rules are converted to explicit rules (true) or removed
// (false). Unprotecting leaves the rule list untouched.
func (d *Descriptor) SetProtection(protected, preserveInherited bool) {
	d.Protected = protected
	if !protected {
		return
	}
	kept := d.rules[:0]
	for _, rule := range d.rules {
		if rule.Inherited {
			if !preserveInherited {
				continue
			}
			rule.Inherited = false
		}
		kept = append(kept, rule)
	}
	d.rules = kept
}

// AddRule merges rule into the descriptor. If an explicit rule for the
// same principal and control type exists, its rights are widened to
// include rule's rights. Otherwise rule is appended.
func (d *Descriptor) AddRule(rule Rule) {
	rule.Inherited = false
	for index := range d.rules {
		existing := &d.rules[index]
		if !existing.Inherited && existing.Principal == rule.Principal && existing.Type == rule.Type {
			existing.Rights |= rule.Rights
			return
		}
	}
	d.rules = append(d.rules, rule)
}

// SetRule replaces every explicit rule for rule's principal and control
// type with rule. Rules of the other control type are kept, so a
// SetRule(allow) does not cancel an earlier deny for the same principal.
func (d *Descriptor) SetRule(rule Rule) {
	rule.Inherited = false
	kept := d.rules[:0]
	for _, existing := range d.rules {
		if !existing.Inherited && existing.Principal == rule.Principal && existing.Type == rule.Type {
			continue
		}
		kept = append(kept, existing)
	}
	d.rules = append(kept, rule)
}

// RemoveRules drops every explicit rule for principal, of either
// control type.
func (d *Descriptor) RemoveRules(principal Principal) {
	kept := d.rules[:0]
	for _, existing := range d.rules {
		if !existing.Inherited && existing.Principal == principal {
			continue
		}
		kept = append(kept, existing)
	}
	d.rules = kept
}

// SetOwner changes the owner.
func (d *Descriptor) SetOwner(owner Principal) {
	d.Owner = owner
}

// Effective returns the rights principal ends up with: the union of its
// allow rules minus the union of its deny rules. Only rules naming the
// principal directly are considered; group membership is not resolved.
func (d *Descriptor) Effective(principal Principal) Rights {
	var allowed, denied Rights
	for _, rule := range d.rules {
		if rule.Principal != principal {
			continue
		}
		if rule.Type == Deny {
			denied |= rule.Rights
		} else {
			allowed |= rule.Rights
		}
	}
	return allowed &^ denied
}

// Principals returns each distinct principal named by a rule, in first
// appearance order.
func (d *Descriptor) Principals() []Principal {
	var principals []Principal
	seen := make(map[Principal]bool)
	for _, rule := range d.rules {
		if seen[rule.Principal] {
			continue
		}
		seen[rule.Principal] = true
		principals = append(principals, rule.Principal)
	}
	return principals
}

// String renders the descriptor one rule per line, for display.
func (d *Descriptor) String() string {
	var builder strings.Builder
	builder.WriteString("owner " + d.Owner.String())
	if !d.Group.IsZero() {
		builder.WriteString(" group " + d.Group.String())
	}
	if d.Protected {
		builder.WriteString(" (protected)")
	}
	for _, rule := range d.rules {
		builder.WriteString("\n  " + rule.String())
	}
	return builder.String()
}
