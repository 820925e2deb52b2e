package tags

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForSession(t *testing.T) {
	got := ForSession("vpngw-abc12", "vpngw-abc12-sg")
	require.Len(t, got, 3)

	byKey := map[string]string{}
	for _, tag := range got {
		byKey[*tag.Key] = *tag.Value
	}
	assert.Equal(t, "vpngw-abc12-sg", byKey[KeyName])
	assert.Equal(t, "vpngw-abc12", byKey[KeySession])
	assert.Equal(t, ManagedBy, byKey[KeyManagedBy])
}

func TestSpec(t *testing.T) {
	spec := Spec(types.ResourceTypeInstance, ForSession("s", "n"))
	require.Len(t, spec, 1)
	assert.Equal(t, types.ResourceTypeInstance, spec[0].ResourceType)
	assert.Len(t, spec[0].Tags, 3)
}

func TestSessionFilter(t *testing.T) {
	filters := SessionFilter("vpngw-abc12")
	require.Len(t, filters, 2)
	assert.Equal(t, "tag:"+KeySession, *filters[0].Name)
	assert.Equal(t, []string{"vpngw-abc12"}, filters[0].Values)
}
