package aws

import (
	"context"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/chainguard-dev/clog"

	"github.com/vpngw/vpngw/internal/util/tags"
)

// ImportKeyPair registers a locally generated public key under the given
// name and tags it with the owning session.
func (g *Gateway) ImportKeyPair(ctx context.Context, session, name string, publicKey []byte) (*KeyPairInfo, error) {
	log := clog.FromContext(ctx)

	result, err := g.api.ImportKeyPair(ctx, &ec2.ImportKeyPairInput{
		KeyName:           awssdk.String(name),
		PublicKeyMaterial: publicKey,
		TagSpecifications: tags.Spec(types.ResourceTypeKeyPair, tags.ForSession(session, name)),
	})
	if err != nil {
		return nil, wrapErr("ImportKeyPair", err)
	}

	info := &KeyPairInfo{
		ID:   awssdk.ToString(result.KeyPairId),
		Name: awssdk.ToString(result.KeyName),
	}
	log.Info("imported key pair", "key", info.Name, "id", info.ID)
	return info, nil
}

// DeleteKeyPair removes the named key pair. A key that no longer exists
// is reported as not found rather than an error so that deletion stays
// idempotent.
func (g *Gateway) DeleteKeyPair(ctx context.Context, name string) (bool, error) {
	log := clog.FromContext(ctx)

	_, err := g.api.DeleteKeyPair(ctx, &ec2.DeleteKeyPairInput{
		KeyName: awssdk.String(name),
	})
	if err != nil {
		if IsNotFoundCode(err) {
			log.Info("key pair already gone", "key", name)
			return false, nil
		}
		return false, wrapErr("DeleteKeyPair", err)
	}
	log.Info("deleted key pair", "key", name)
	return true, nil
}
