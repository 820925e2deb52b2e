package aws

import (
	"context"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/chainguard-dev/clog"

	"github.com/vpngw/vpngw/internal/errdefs"
	"github.com/vpngw/vpngw/internal/util/tags"
)

// LaunchOpts describes a single gateway instance to launch.
type LaunchOpts struct {
	Session         string
	Name            string
	ImageID         string
	InstanceType    string
	KeyName         string
	SecurityGroupID string
}

// LaunchInstance starts one instance and returns it in its initial
// (usually pending) state. Waiting for the instance to come up is the
// caller's job.
func (g *Gateway) LaunchInstance(ctx context.Context, opts LaunchOpts) (*Instance, error) {
	log := clog.FromContext(ctx)

	result, err := g.api.RunInstances(ctx, &ec2.RunInstancesInput{
		ImageId:           awssdk.String(opts.ImageID),
		InstanceType:      types.InstanceType(opts.InstanceType),
		KeyName:           awssdk.String(opts.KeyName),
		SecurityGroupIds:  []string{opts.SecurityGroupID},
		MinCount:          awssdk.Int32(1),
		MaxCount:          awssdk.Int32(1),
		TagSpecifications: tags.Spec(types.ResourceTypeInstance, tags.ForSession(opts.Session, opts.Name)),
	})
	if err != nil {
		return nil, wrapErr("RunInstances", err)
	}
	if len(result.Instances) == 0 {
		return nil, &errdefs.CloudAPIError{Op: "RunInstances", Message: "empty launch response"}
	}

	instance := fromSDKInstance(result.Instances[0])
	log.Info("launched instance", "instance", instance.ID, "type", opts.InstanceType, "image", opts.ImageID)
	return instance, nil
}

// DescribeInstance returns the current view of a single instance.
func (g *Gateway) DescribeInstance(ctx context.Context, id string) (*Instance, error) {
	result, err := g.api.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []string{id},
	})
	if err != nil {
		if IsNotFoundCode(err) {
			return nil, errdefs.NotFound("instance %s does not exist", id)
		}
		return nil, wrapErr("DescribeInstances", err)
	}
	for _, reservation := range result.Reservations {
		for _, inst := range reservation.Instances {
			return fromSDKInstance(inst), nil
		}
	}
	return nil, errdefs.NotFound("instance %s does not exist", id)
}

// TerminateInstance requests termination of the instance. An instance
// that is already gone is reported as not found, not as a failure.
func (g *Gateway) TerminateInstance(ctx context.Context, id string) (bool, error) {
	log := clog.FromContext(ctx)

	_, err := g.api.TerminateInstances(ctx, &ec2.TerminateInstancesInput{
		InstanceIds: []string{id},
	})
	if err != nil {
		if IsNotFoundCode(err) {
			log.Info("instance already gone", "instance", id)
			return false, nil
		}
		return false, wrapErr("TerminateInstances", err)
	}
	log.Info("terminating instance", "instance", id)
	return true, nil
}

// FindInstance locates a live instance tagged with the given session.
// Terminated instances are excluded so a recreated session does not pick
// up leftovers from a previous run.
func (g *Gateway) FindInstance(ctx context.Context, session string) (*Instance, error) {
	filters := tags.SessionFilter(session)
	filters = append(filters, types.Filter{
		Name:   awssdk.String("instance-state-name"),
		Values: []string{"pending", "running", "stopping", "stopped"},
	})

	result, err := g.api.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		Filters: filters,
	})
	if err != nil {
		return nil, wrapErr("DescribeInstances", err)
	}
	for _, reservation := range result.Reservations {
		for _, inst := range reservation.Instances {
			return fromSDKInstance(inst), nil
		}
	}
	return nil, errdefs.NotFound("no instance for session %q", session)
}

func fromSDKInstance(inst types.Instance) *Instance {
	instance := &Instance{
		ID:        awssdk.ToString(inst.InstanceId),
		PublicDNS: awssdk.ToString(inst.PublicDnsName),
		PublicIP:  awssdk.ToString(inst.PublicIpAddress),
	}
	if inst.State != nil {
		instance.State = string(inst.State.Name)
	}
	return instance
}
