// Package owner translates archived uid/gid pairs to the ids of the
// application sandbox user performing a restore.
package owner

const (
	// AppIDStart is the first uid assigned to application sandboxes. Ids
	// below it belong to system users and are never remapped.
	AppIDStart = 10000

	// GroupOffset is the stride between an app's uid and its related gids.
	GroupOffset = 10000
)

// Remap returns the uid/gid an entry archived as (uid, gid) should be owned
// by when restored for the requested owner. A requested owner of 0 disables
// remapping.
func Remap(uid, gid, requested uint32) (newUID, newGID uint32) {
	if requested == 0 || uid < AppIDStart {
		return uid, gid
	}

	if uid == gid {
		return requested, requested
	}

	// Only gids above the uid carry an app group offset.
	if gid < uid {
		return requested, gid
	}
	diff := uint64(gid - uid)
	if diff%GroupOffset != 0 {
		return requested, gid
	}
	g := uint64(requested) + diff
	if g > uint64(^uint32(0)) {
		return requested, gid
	}
	return requested, uint32(g)
}
