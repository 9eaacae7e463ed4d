// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package environment

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"strconv"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/safenet/lib/acl"
)

const (
	// posixACLAttribute holds the POSIX access ACL of a file.
	posixACLAttribute = "system.posix_acl_access"

	// protectedAttribute marks a file whose descriptor was applied
	// with inheritance disabled.
	protectedAttribute = "user.safenet.protected"

	directoryMode = 0o700
	fileMode      = 0o600
)

// OS binds Environment to the local filesystem.
type OS struct{}

// NewOS returns the local filesystem environment.
func NewOS() *OS {
	return &OS{}
}

// CreateDirectory creates path and its parents with mode 0700.
func (*OS) CreateDirectory(path string) error {
	return os.MkdirAll(path, directoryMode)
}

// FileExists reports whether path is an existing regular file.
func (*OS) FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// DirectoryExists reports whether path is an existing directory.
func (*OS) DirectoryExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// ReadAllText reads path. A missing file reads as "".
func (*OS) ReadAllText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteAllText truncates and rewrites path in place. New files are
// created with mode 0600. The file is rewritten rather than replaced
// by rename so that ownership and ACLs applied to it survive.
func (*OS) WriteAllText(path, contents string) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fileMode)
	if err != nil {
		return err
	}
	if _, err := file.WriteString(contents); err != nil {
		file.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("syncing %s: %w", path, err)
	}
	return file.Close()
}

// GetAccessControl reads ownership, permission bits, the POSIX access
// ACL, and the protection marker of path. Rules on an unprotected file
// are reported as inherited, since nothing has pinned them to the file.
func (*OS) GetAccessControl(path string) (*acl.Descriptor, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return nil, fmt.Errorf("%s: no ownership information available", path)
	}

	owner := acl.UserPrincipal(userName(stat.Uid))
	group := acl.GroupPrincipal(groupName(stat.Gid))
	protected := readProtected(path)

	mode := uint16(info.Mode().Perm())
	var rules []acl.Rule
	addRule := func(principal acl.Principal, perm uint16) {
		rights := acl.RightsFromPOSIX(perm)
		if rights == 0 {
			return
		}
		rules = append(rules, acl.Rule{
			Principal: principal,
			Rights:    rights,
			Type:      acl.Allow,
			Inherited: !protected,
		})
	}

	addRule(owner, mode>>6&7)
	entries, err := readPOSIXACL(path)
	if err != nil {
		return nil, err
	}
	groupPerm := mode >> 3 & 7
	for _, entry := range entries {
		switch entry.Tag {
		case acl.TagUser:
			addRule(acl.UserPrincipal(userName(entry.ID)), entry.Perm)
		case acl.TagGroup:
			addRule(acl.GroupPrincipal(groupName(entry.ID)), entry.Perm)
		case acl.TagGroupObj:
			// With an ACL present the mode group bits hold the mask.
			groupPerm = entry.Perm
		}
	}
	addRule(group, groupPerm)
	addRule(acl.EveryonePrincipal, mode&7)

	descriptor := acl.NewDescriptor(owner, group, rules...)
	descriptor.Protected = protected
	return descriptor, nil
}

// SetAccessControl applies descriptor to path: chown to the owner and
// group (when set), permission bits from the effective rights of the
// owner, the group, and everyone, and a POSIX access ACL for every
// other principal. Deny rules subtract from the principal they name;
// POSIX ACLs have no deny entries.
func (*OS) SetAccessControl(path string, descriptor *acl.Descriptor) error {
	uid, gid := -1, -1
	if !descriptor.Owner.IsZero() {
		if descriptor.Owner.Kind != acl.User {
			return fmt.Errorf("%s: owner must be a user, got %s", path, descriptor.Owner)
		}
		id, err := lookupUser(descriptor.Owner.Name)
		if err != nil {
			return err
		}
		uid = int(id)
	}
	if !descriptor.Group.IsZero() {
		if descriptor.Group.Kind != acl.Group {
			return fmt.Errorf("%s: owning group must be a group, got %s", path, descriptor.Group)
		}
		id, err := lookupGroup(descriptor.Group.Name)
		if err != nil {
			return err
		}
		gid = int(id)
	}
	if uid != -1 || gid != -1 {
		if err := os.Chown(path, uid, gid); err != nil {
			return err
		}
	}

	ownerPerm := acl.POSIXPerm(descriptor.Effective(descriptor.Owner))
	groupPerm := acl.POSIXPerm(descriptor.Effective(descriptor.Group))
	otherPerm := acl.POSIXPerm(descriptor.Effective(acl.EveryonePrincipal))

	var named []acl.POSIXEntry
	mask := groupPerm
	for _, principal := range descriptor.Principals() {
		if principal == descriptor.Owner || principal == descriptor.Group || principal.Kind == acl.Everyone {
			continue
		}
		perm := acl.POSIXPerm(descriptor.Effective(principal))
		var entry acl.POSIXEntry
		switch principal.Kind {
		case acl.User:
			id, err := lookupUser(principal.Name)
			if err != nil {
				return err
			}
			entry = acl.POSIXEntry{Tag: acl.TagUser, Perm: perm, ID: id}
		case acl.Group:
			id, err := lookupGroup(principal.Name)
			if err != nil {
				return err
			}
			entry = acl.POSIXEntry{Tag: acl.TagGroup, Perm: perm, ID: id}
		}
		named = append(named, entry)
		mask |= perm
	}

	mode := os.FileMode(ownerPerm)<<6 | os.FileMode(groupPerm)<<3 | os.FileMode(otherPerm)
	if err := os.Chmod(path, mode); err != nil {
		return err
	}

	if len(named) == 0 {
		if err := unix.Removexattr(path, posixACLAttribute); err != nil && !ignorableXattrError(err) {
			return fmt.Errorf("%s: removing ACL: %w", path, err)
		}
	} else {
		entries := append([]acl.POSIXEntry{
			{Tag: acl.TagUserObj, Perm: ownerPerm, ID: acl.POSIXUndefinedID},
			{Tag: acl.TagGroupObj, Perm: groupPerm, ID: acl.POSIXUndefinedID},
			{Tag: acl.TagMask, Perm: mask, ID: acl.POSIXUndefinedID},
			{Tag: acl.TagOther, Perm: otherPerm, ID: acl.POSIXUndefinedID},
		}, named...)
		if err := unix.Setxattr(path, posixACLAttribute, acl.EncodePOSIX(entries), 0); err != nil {
			return fmt.Errorf("%s: writing ACL: %w", path, err)
		}
	}

	return writeProtected(path, descriptor.Protected)
}

func readPOSIXACL(path string) ([]acl.POSIXEntry, error) {
	data, err := getxattr(path, posixACLAttribute)
	if err != nil {
		if ignorableXattrError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: reading ACL: %w", path, err)
	}
	entries, err := acl.DecodePOSIX(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

func readProtected(path string) bool {
	data, err := getxattr(path, protectedAttribute)
	return err == nil && string(data) == "1"
}

// writeProtected records the protection flag. Filesystems without user
// extended attributes silently lose it; the file then reads back as
// unprotected.
func writeProtected(path string, protected bool) error {
	var err error
	if protected {
		err = unix.Setxattr(path, protectedAttribute, []byte("1"), 0)
	} else {
		err = unix.Removexattr(path, protectedAttribute)
	}
	if err != nil && !ignorableXattrError(err) {
		return fmt.Errorf("%s: recording protection: %w", path, err)
	}
	return nil
}

func getxattr(path, name string) ([]byte, error) {
	size, err := unix.Getxattr(path, name, nil)
	if err != nil {
		return nil, err
	}
	data := make([]byte, size)
	size, err = unix.Getxattr(path, name, data)
	if err != nil {
		return nil, err
	}
	return data[:size], nil
}

func ignorableXattrError(err error) bool {
	return errors.Is(err, unix.ENODATA) || errors.Is(err, unix.ENOTSUP) || errors.Is(err, unix.EOPNOTSUPP)
}

// userName resolves uid to an account name, falling back to the
// numeric id when the account is unknown.
func userName(uid uint32) string {
	id := strconv.FormatUint(uint64(uid), 10)
	if account, err := user.LookupId(id); err == nil {
		return account.Username
	}
	return id
}

func groupName(gid uint32) string {
	id := strconv.FormatUint(uint64(gid), 10)
	if group, err := user.LookupGroupId(id); err == nil {
		return group.Name
	}
	return id
}

func lookupUser(name string) (uint32, error) {
	if account, err := user.Lookup(name); err == nil {
		return parseID(account.Uid)
	}
	if id, err := parseID(name); err == nil {
		return id, nil
	}
	return 0, fmt.Errorf("unknown user %q", name)
}

func lookupGroup(name string) (uint32, error) {
	if group, err := user.LookupGroup(name); err == nil {
		return parseID(group.Gid)
	}
	if id, err := parseID(name); err == nil {
		return id, nil
	}
	return 0, fmt.Errorf("unknown group %q", name)
}

func parseID(text string) (uint32, error) {
	id, err := strconv.ParseUint(text, 10, 32)
	return uint32(id), err
}
