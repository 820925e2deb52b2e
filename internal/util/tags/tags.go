// Package tags provides consistent EC2 tagging for gateway resources.
//
// Every resource created for a session carries the session tag plus a
// managed-by marker, so teardown can find resources by tag filter even
// when local state is gone.
package tags

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// Standard tag keys, namespaced under vpngw/.
const (
	KeySession   = "vpngw/session"
	KeyManagedBy = "vpngw/managed-by"
	KeyName      = "Name"
)

// ManagedBy is the value identifying resources created by this tool.
const ManagedBy = "vpngw"

// ForSession returns the tag set applied to every resource of a session.
func ForSession(session, name string) []types.Tag {
	return []types.Tag{
		{Key: aws.String(KeyName), Value: aws.String(name)},
		{Key: aws.String(KeySession), Value: aws.String(session)},
		{Key: aws.String(KeyManagedBy), Value: aws.String(ManagedBy)},
	}
}

// Spec wraps a tag set in the TagSpecification shape RunInstances and
// friends expect.
func Spec(resourceType types.ResourceType, tags []types.Tag) []types.TagSpecification {
	return []types.TagSpecification{{
		ResourceType: resourceType,
		Tags:         tags,
	}}
}

// SessionFilter returns the DescribeX filter matching all resources of a
// session.
func SessionFilter(session string) []types.Filter {
	return []types.Filter{
		{Name: aws.String("tag:" + KeySession), Values: []string{session}},
		{Name: aws.String("tag:" + KeyManagedBy), Values: []string{ManagedBy}},
	}
}
