package owner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bamsammich/tarrestore/internal/owner"
)

func TestRemap(t *testing.T) {
	tests := []struct {
		name             string
		uid, gid, req    uint32
		wantUID, wantGID uint32
	}{
		{"same uid and gid", 10005, 10005, 20000, 20000, 20000},
		{"group offset preserved", 10005, 20005, 30000, 30000, 40000},
		{"system uid untouched", 500, 1000, 20000, 500, 1000},
		{"no requested owner", 10005, 20005, 0, 10005, 20005},
		{"unrelated gid kept", 10005, 1023, 20000, 20000, 1023},
		{"gid below uid kept", 20005, 10005, 30000, 30000, 10005},
		{"offset would underflow", 30005, 10005, 10000, 10000, 10005},
		{"offset would overflow", 10000, 4294960000, 20000, 20000, 4294960000},
		{"boundary uid remapped", 10000, 10000, 20010, 20010, 20010},
		{"root uid", 0, 0, 20000, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uid, gid := owner.Remap(tt.uid, tt.gid, tt.req)
			assert.Equal(t, tt.wantUID, uid)
			assert.Equal(t, tt.wantGID, gid)
		})
	}
}
