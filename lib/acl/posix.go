// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package acl

import (
	"encoding/binary"
	"fmt"
	"sort"
)

// POSIX ACL extended attribute layout, as read and written through
// system.posix_acl_access: a little-endian uint32 version header
// followed by 8-byte entries of {uint16 tag, uint16 perm, uint32 id}.
const (
	posixVersion    = 2
	posixHeaderSize = 4
	posixEntrySize  = 8

	// POSIXUndefinedID is the id stored in entries that do not name a
	// specific user or group.
	POSIXUndefinedID = 0xFFFFFFFF
)

// POSIXTag is the kind of a POSIX ACL entry.
type POSIXTag uint16

const (
	TagUserObj  POSIXTag = 0x01
	TagUser     POSIXTag = 0x02
	TagGroupObj POSIXTag = 0x04
	TagGroup    POSIXTag = 0x08
	TagMask     POSIXTag = 0x10
	TagOther    POSIXTag = 0x20
)

// POSIXEntry is one entry of a POSIX access ACL.
type POSIXEntry struct {
	Tag  POSIXTag
	Perm uint16
	ID   uint32
}

// POSIXPerm converts rights to the r=4 w=2 x=1 permission encoding.
func POSIXPerm(rights Rights) uint16 {
	var perm uint16
	if rights.Has(Read) {
		perm |= 4
	}
	if rights.Has(Write) {
		perm |= 2
	}
	if rights.Has(Execute) {
		perm |= 1
	}
	return perm
}

// RightsFromPOSIX converts an r=4 w=2 x=1 permission value to rights.
func RightsFromPOSIX(perm uint16) Rights {
	var rights Rights
	if perm&4 != 0 {
		rights |= Read
	}
	if perm&2 != 0 {
		rights |= Write
	}
	if perm&1 != 0 {
		rights |= Execute
	}
	return rights
}

// EncodePOSIX serializes entries in the kernel's attribute format.
// Entries are sorted by tag and then id, which the kernel requires.
func EncodePOSIX(entries []POSIXEntry) []byte {
	sorted := append([]POSIXEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Tag != sorted[j].Tag {
			return sorted[i].Tag < sorted[j].Tag
		}
		return sorted[i].ID < sorted[j].ID
	})

	data := make([]byte, posixHeaderSize+posixEntrySize*len(sorted))
	binary.LittleEndian.PutUint32(data, posixVersion)
	for index, entry := range sorted {
		offset := posixHeaderSize + index*posixEntrySize
		binary.LittleEndian.PutUint16(data[offset:], uint16(entry.Tag))
		binary.LittleEndian.PutUint16(data[offset+2:], entry.Perm)
		binary.LittleEndian.PutUint32(data[offset+4:], entry.ID)
	}
	return data
}

// DecodePOSIX parses a system.posix_acl_access attribute value.
func DecodePOSIX(data []byte) ([]POSIXEntry, error) {
	if len(data) < posixHeaderSize {
		return nil, fmt.Errorf("posix acl: %d bytes is shorter than the header", len(data))
	}
	if version := binary.LittleEndian.Uint32(data); version != posixVersion {
		return nil, fmt.Errorf("posix acl: unsupported version %d", version)
	}
	body := data[posixHeaderSize:]
	if len(body)%posixEntrySize != 0 {
		return nil, fmt.Errorf("posix acl: body length %d is not a multiple of %d", len(body), posixEntrySize)
	}
	entries := make([]POSIXEntry, 0, len(body)/posixEntrySize)
	for offset := 0; offset < len(body); offset += posixEntrySize {
		tag := POSIXTag(binary.LittleEndian.Uint16(body[offset:]))
		switch tag {
		case TagUserObj, TagUser, TagGroupObj, TagGroup, TagMask, TagOther:
		default:
			return nil, fmt.Errorf("posix acl: unknown tag 0x%02x", uint16(tag))
		}
		entries = append(entries, POSIXEntry{
			Tag:  tag,
			Perm: binary.LittleEndian.Uint16(body[offset+2:]),
			ID:   binary.LittleEndian.Uint32(body[offset+4:]),
		})
	}
	return entries, nil
}
