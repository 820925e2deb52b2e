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

// CreateSecurityGroup creates a security group in the given VPC and
// authorizes exactly the supplied ingress rules. Creation and
// authorization form one logical operation: if authorization fails the
// just-created group is deleted so no half-configured group survives.
func (g *Gateway) CreateSecurityGroup(ctx context.Context, session, name, vpcID string, rules []Rule) (*SecurityGroupInfo, error) {
	log := clog.FromContext(ctx)

	created, err := g.api.CreateSecurityGroup(ctx, &ec2.CreateSecurityGroupInput{
		GroupName:         awssdk.String(name),
		Description:       awssdk.String("vpn gateway ingress"),
		VpcId:             awssdk.String(vpcID),
		TagSpecifications: tags.Spec(types.ResourceTypeSecurityGroup, tags.ForSession(session, name)),
	})
	if err != nil {
		return nil, wrapErr("CreateSecurityGroup", err)
	}
	groupID := awssdk.ToString(created.GroupId)

	permissions := make([]types.IpPermission, 0, len(rules))
	for _, r := range rules {
		permissions = append(permissions, types.IpPermission{
			IpProtocol: awssdk.String(r.Protocol),
			FromPort:   awssdk.Int32(r.Port),
			ToPort:     awssdk.Int32(r.Port),
			IpRanges: []types.IpRange{
				{CidrIp: awssdk.String(r.CIDR)},
			},
		})
	}

	if _, err := g.api.AuthorizeSecurityGroupIngress(ctx, &ec2.AuthorizeSecurityGroupIngressInput{
		GroupId:       awssdk.String(groupID),
		IpPermissions: permissions,
	}); err != nil {
		log.Error("authorizing ingress failed, removing group", "group", groupID, "error", err)
		if _, derr := g.api.DeleteSecurityGroup(ctx, &ec2.DeleteSecurityGroupInput{
			GroupId: awssdk.String(groupID),
		}); derr != nil {
			log.Error("could not remove orphaned security group", "group", groupID, "error", derr)
		}
		return nil, wrapErr("AuthorizeSecurityGroupIngress", err)
	}

	info := &SecurityGroupInfo{ID: groupID, Name: name}
	log.Info("created security group", "group", info.ID, "name", info.Name, "rules", len(rules))
	return info, nil
}

// DeleteSecurityGroup removes the group by ID, treating an already
// deleted group as not found rather than a failure.
func (g *Gateway) DeleteSecurityGroup(ctx context.Context, id string) (bool, error) {
	log := clog.FromContext(ctx)

	_, err := g.api.DeleteSecurityGroup(ctx, &ec2.DeleteSecurityGroupInput{
		GroupId: awssdk.String(id),
	})
	if err != nil {
		if IsNotFoundCode(err) {
			log.Info("security group already gone", "group", id)
			return false, nil
		}
		return false, wrapErr("DeleteSecurityGroup", err)
	}
	log.Info("deleted security group", "group", id)
	return true, nil
}

// FindSecurityGroup looks up a group by name within the region.
func (g *Gateway) FindSecurityGroup(ctx context.Context, name string) (*SecurityGroupInfo, error) {
	result, err := g.api.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
		Filters: []types.Filter{
			{Name: awssdk.String("group-name"), Values: []string{name}},
		},
	})
	if err != nil {
		return nil, wrapErr("DescribeSecurityGroups", err)
	}
	if len(result.SecurityGroups) == 0 {
		return nil, errdefs.NotFound("no security group named %q", name)
	}
	sg := result.SecurityGroups[0]
	return &SecurityGroupInfo{
		ID:   awssdk.ToString(sg.GroupId),
		Name: awssdk.ToString(sg.GroupName),
	}, nil
}
