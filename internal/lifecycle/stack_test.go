package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStack_UnwindsInReverseOrder(t *testing.T) {
	stack := NewStack()
	var order []string
	for _, name := range []string{"key", "group", "instance"} {
		name := name
		stack.Push(func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	require.NoError(t, stack.Unwind(context.Background()))
	assert.Equal(t, []string{"instance", "group", "key"}, order)
	assert.Equal(t, 0, stack.Len())
}

func TestStack_FailureDoesNotStopTheRest(t *testing.T) {
	stack := NewStack()
	var released []string

	stack.Push(func(context.Context) error {
		released = append(released, "key")
		return nil
	})
	stack.Push(func(context.Context) error {
		return errors.New("group still referenced")
	})
	stack.Push(func(context.Context) error {
		released = append(released, "instance")
		return nil
	})

	err := stack.Unwind(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "group still referenced")
	assert.Equal(t, []string{"instance", "key"}, released)
}

func TestStack_UnwindEmpty(t *testing.T) {
	assert.NoError(t, NewStack().Unwind(context.Background()))
}
