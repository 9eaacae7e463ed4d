// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package environment

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/bureau-foundation/safenet/lib/acl"
)

func TestMemory_WriteRequiresParent(t *testing.T) {
	memory := NewMemory()
	err := memory.WriteAllText("/vault/secrets.json", "")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("WriteAllText without parent: err = %v, want ErrNotExist", err)
	}

	if err := memory.CreateDirectory("/vault"); err != nil {
		t.Fatalf("CreateDirectory: %v", err)
	}
	if err := memory.WriteAllText("/vault/secrets.json", "[]"); err != nil {
		t.Fatalf("WriteAllText: %v", err)
	}
	if !memory.FileExists("/vault/secrets.json") {
		t.Error("file should exist after write")
	}
	if got := memory.Writes("/vault/secrets.json"); got != 1 {
		t.Errorf("Writes = %d, want 1", got)
	}
}

func TestMemory_CreateDirectoryMarksParents(t *testing.T) {
	memory := NewMemory()
	if err := memory.CreateDirectory("/a/b/c"); err != nil {
		t.Fatalf("CreateDirectory: %v", err)
	}
	for _, directory := range []string{"/a", "/a/b", "/a/b/c"} {
		if !memory.DirectoryExists(directory) {
			t.Errorf("%s should exist", directory)
		}
	}
	if created := memory.CreatedDirectories(); len(created) != 1 || created[0] != "/a/b/c" {
		t.Errorf("CreatedDirectories = %v, want [/a/b/c]", created)
	}
}

func TestMemory_ReadMissingIsEmpty(t *testing.T) {
	memory := NewMemory()
	text, err := memory.ReadAllText("/nothing")
	if err != nil || text != "" {
		t.Fatalf("ReadAllText(missing) = %q, %v; want empty, nil", text, err)
	}
}

func TestMemory_SetFileIsNotAWrite(t *testing.T) {
	memory := NewMemory()
	memory.SetFile("/vault/secrets.json", "[]")
	if !memory.DirectoryExists("/vault") {
		t.Error("SetFile should create the parent directory")
	}
	if memory.Writes("/vault/secrets.json") != 0 {
		t.Error("SetFile should not count as a write")
	}
	if text, _ := memory.ReadAllText("/vault/secrets.json"); text != "[]" {
		t.Errorf("contents = %q, want []", text)
	}
}

func TestMemory_DefaultDescriptorIsInherited(t *testing.T) {
	memory := NewMemory()
	memory.DefaultOwner = acl.UserPrincipal("alice")
	memory.SetFile("/vault/secrets.json", "")

	descriptor, err := memory.GetAccessControl("/vault/secrets.json")
	if err != nil {
		t.Fatalf("GetAccessControl: %v", err)
	}
	if descriptor.Protected {
		t.Error("default descriptor should be unprotected")
	}
	if descriptor.Owner != acl.UserPrincipal("alice") {
		t.Errorf("owner = %v, want alice", descriptor.Owner)
	}
	for _, rule := range descriptor.Rules() {
		if !rule.Inherited {
			t.Errorf("rule %v should be inherited", rule)
		}
	}
}

func TestMemory_SetAccessControlStoresCopy(t *testing.T) {
	memory := NewMemory()
	memory.SetFile("/vault/secrets.json", "")

	descriptor := acl.NewDescriptor(acl.Administrators, acl.Principal{}, acl.AllowRule(acl.Administrators, acl.FullControl))
	if err := memory.SetAccessControl("/vault/secrets.json", descriptor); err != nil {
		t.Fatalf("SetAccessControl: %v", err)
	}
	descriptor.AddRule(acl.AllowRule(acl.EveryonePrincipal, acl.Read))

	stored, err := memory.GetAccessControl("/vault/secrets.json")
	if err != nil {
		t.Fatalf("GetAccessControl: %v", err)
	}
	if stored.Effective(acl.EveryonePrincipal) != 0 {
		t.Error("mutation after SetAccessControl leaked into stored descriptor")
	}
	if applied := memory.Applied("/vault/secrets.json"); len(applied) != 1 {
		t.Errorf("Applied = %d descriptors, want 1", len(applied))
	}
}

func TestMemory_AccessControlMissingFile(t *testing.T) {
	memory := NewMemory()
	if _, err := memory.GetAccessControl("/missing"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("GetAccessControl(missing) err = %v, want ErrNotExist", err)
	}
	if err := memory.SetAccessControl("/missing", acl.NewDescriptor(acl.Administrators, acl.Principal{})); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("SetAccessControl(missing) err = %v, want ErrNotExist", err)
	}
}

func TestMemory_FailWrites(t *testing.T) {
	memory := NewMemory()
	memory.SetFile("/vault/secrets.json", "before")
	failure := errors.New("disk full")
	memory.FailWrites(failure)

	if err := memory.WriteAllText("/vault/secrets.json", "after"); !errors.Is(err, failure) {
		t.Fatalf("err = %v, want injected failure", err)
	}
	if text, _ := memory.ReadAllText("/vault/secrets.json"); text != "before" {
		t.Errorf("contents = %q, failed write should not change them", text)
	}

	memory.FailWrites(nil)
	if err := memory.WriteAllText("/vault/secrets.json", "after"); err != nil {
		t.Fatalf("WriteAllText after reset: %v", err)
	}
}
