package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanAccess(t *testing.T) {
	alice := User{ID: "alice"}
	bob := User{ID: "bob"}

	public := List{ID: "l1", OwnerID: "alice"}
	private := List{ID: "l2", OwnerID: "alice", Private: true}

	assert.True(t, alice.CanAccess(public))
	assert.True(t, alice.CanAccess(private))
	assert.True(t, bob.CanAccess(public))
	assert.False(t, bob.CanAccess(private))
}
