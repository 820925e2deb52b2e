package aws

import (
	"context"
	"sort"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/chainguard-dev/clog"

	"github.com/vpngw/vpngw/internal/errdefs"
)

// ResolveLatestImage finds the newest available machine image whose name
// matches the given filter pattern. Candidates are ordered by creation
// date so that a freshly published image wins over older builds.
func (g *Gateway) ResolveLatestImage(ctx context.Context, nameFilter string, owners []string) (*Image, error) {
	log := clog.FromContext(ctx)

	input := &ec2.DescribeImagesInput{
		Filters: []types.Filter{
			{Name: awssdk.String("name"), Values: []string{nameFilter}},
			{Name: awssdk.String("state"), Values: []string{"available"}},
		},
	}
	if len(owners) > 0 {
		input.Owners = owners
	}

	result, err := g.api.DescribeImages(ctx, input)
	if err != nil {
		return nil, wrapErr("DescribeImages", err)
	}
	if len(result.Images) == 0 {
		return nil, errdefs.NotFound("no available image matching %q in region %s", nameFilter, g.region)
	}

	images := result.Images
	sort.Slice(images, func(i, j int) bool {
		return awssdk.ToString(images[i].CreationDate) > awssdk.ToString(images[j].CreationDate)
	})

	newest := images[0]
	image := &Image{
		ID:           awssdk.ToString(newest.ImageId),
		Name:         awssdk.ToString(newest.Name),
		CreationDate: awssdk.ToString(newest.CreationDate),
	}
	log.Info("resolved image", "image", image.ID, "name", image.Name, "created", image.CreationDate)
	return image, nil
}
