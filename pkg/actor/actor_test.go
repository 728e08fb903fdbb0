package actor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActorContext(t *testing.T) {
	ctx := WithActor(context.Background(), &Actor{ID: "admin-1", RoleName: "manager"})

	a := FromContext(ctx)
	assert.Equal(t, "admin-1", a.ID)
	assert.Equal(t, "admin-1 (manager)", a.String())
	assert.False(t, a.IsSystem())

	assert.Nil(t, FromContext(context.Background()))
}

func TestOrSystem(t *testing.T) {
	assert.True(t, OrSystem("").IsSystem())
	assert.Equal(t, "system", OrSystem("").String())
	assert.Equal(t, "admin-1", OrSystem("admin-1").String())

	var missing *Actor
	assert.True(t, missing.IsSystem())
	assert.Equal(t, "system", missing.String())
}
