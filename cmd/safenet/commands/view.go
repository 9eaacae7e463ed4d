// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/bureau-foundation/safenet/lib/acl"
	"github.com/bureau-foundation/safenet/lib/vault"
)

// secretView is the JSON form of a secret. Password is only populated
// when the caller asked for it.
type secretView struct {
	Identifier  string         `json:"identifier"`
	Target      string         `json:"target"`
	Username    string         `json:"username"`
	HasPassword bool           `json:"has_password"`
	Password    *string        `json:"password,omitempty"`
	Meta        map[string]any `json:"meta,omitempty"`
}

func newSecretView(item *vault.Secret, reveal bool) (secretView, error) {
	view := secretView{
		Identifier:  item.Identifier.String(),
		Target:      item.Target,
		Username:    item.Username,
		HasPassword: item.HasPassword(),
		Meta:        item.Meta,
	}
	if reveal && item.HasPassword() {
		buffer, err := item.Password()
		if err != nil {
			return secretView{}, err
		}
		password := buffer.String()
		buffer.Close()
		view.Password = &password
	}
	return view, nil
}

func writeSecret(w io.Writer, view secretView) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "target:\t%s\n", view.Target)
	fmt.Fprintf(tw, "username:\t%s\n", view.Username)
	fmt.Fprintf(tw, "identifier:\t%s\n", view.Identifier)
	for _, key := range slices.Sorted(maps.Keys(view.Meta)) {
		fmt.Fprintf(tw, "meta.%s:\t%v\n", key, view.Meta[key])
	}
	switch {
	case view.Password != nil:
		fmt.Fprintf(tw, "password:\t%s\n", *view.Password)
	case view.HasPassword:
		fmt.Fprintf(tw, "password:\t(hidden, use --show-password)\n")
	default:
		fmt.Fprintf(tw, "password:\t(none)\n")
	}
	return tw.Flush()
}

// descriptorView is the JSON form of an access control descriptor.
type descriptorView struct {
	Owner     string     `json:"owner"`
	Group     string     `json:"group,omitempty"`
	Protected bool       `json:"protected"`
	Rules     []ruleView `json:"rules"`
}

type ruleView struct {
	Principal string `json:"principal"`
	Rights    string `json:"rights"`
	Type      string `json:"type"`
	Inherited bool   `json:"inherited,omitempty"`
}

func newDescriptorView(descriptor *acl.Descriptor) descriptorView {
	view := descriptorView{
		Owner:     descriptor.Owner.String(),
		Protected: descriptor.Protected,
		Rules:     []ruleView{},
	}
	if !descriptor.Group.IsZero() {
		view.Group = descriptor.Group.String()
	}
	for _, rule := range descriptor.Rules() {
		view.Rules = append(view.Rules, ruleView{
			Principal: rule.Principal.String(),
			Rights:    rule.Rights.String(),
			Type:      rule.Type.String(),
			Inherited: rule.Inherited,
		})
	}
	return view
}

func writeDescriptor(w io.Writer, view descriptorView) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "owner:\t%s\n", view.Owner)
	if view.Group != "" {
		fmt.Fprintf(tw, "group:\t%s\n", view.Group)
	}
	fmt.Fprintf(tw, "protected:\t%t\n", view.Protected)
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(view.Rules) == 0 {
		fmt.Fprintln(w, "rules: (none)")
		return nil
	}
	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "PRINCIPAL\tRIGHTS\tTYPE\tINHERITED\n")
	for _, rule := range view.Rules {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", rule.Principal, rule.Rights, rule.Type, rule.Inherited)
	}
	return tw.Flush()
}
