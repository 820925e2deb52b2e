package aws

import (
	"context"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/chainguard-dev/clog"

	"github.com/vpngw/vpngw/internal/errdefs"
)

// ResolveNetwork resolves the target VPC. With an empty name it returns
// the region's default VPC, otherwise the VPC whose Name tag matches.
func (g *Gateway) ResolveNetwork(ctx context.Context, name string) (*Network, error) {
	log := clog.FromContext(ctx)

	input := &ec2.DescribeVpcsInput{}
	if name == "" {
		input.Filters = []types.Filter{
			{Name: awssdk.String("isDefault"), Values: []string{"true"}},
		}
	} else {
		input.Filters = []types.Filter{
			{Name: awssdk.String("tag:Name"), Values: []string{name}},
		}
	}

	result, err := g.api.DescribeVpcs(ctx, input)
	if err != nil {
		return nil, wrapErr("DescribeVpcs", err)
	}
	if len(result.Vpcs) == 0 {
		if name == "" {
			return nil, errdefs.NotFound("no default VPC in region %s", g.region)
		}
		return nil, errdefs.NotFound("no VPC named %q in region %s", name, g.region)
	}

	vpc := result.Vpcs[0]
	network := &Network{
		ID:        awssdk.ToString(vpc.VpcId),
		Name:      name,
		IsDefault: awssdk.ToBool(vpc.IsDefault),
	}
	log.Info("resolved network", "vpc", network.ID, "default", network.IsDefault)
	return network, nil
}
