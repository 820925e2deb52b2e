// Package aws is the cloud resource gateway: thin wrappers over the EC2
// and Route 53 APIs for the network, image, key-pair, security-group,
// instance and address-record operations the lifecycle controller
// sequences.
//
// The gateway never retries. Only the controller knows which failures
// are transient and which indicate a genuine conflict, so retry policy
// lives there.
package aws

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/route53"
)

// Gateway wraps the EC2 and Route 53 APIs for one region.
type Gateway struct {
	api    API
	dns    DNSAPI
	region string
}

// New builds a Gateway using the ambient AWS credential chain
// (environment, shared config, instance role).
func New(ctx context.Context, region string) (*Gateway, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return &Gateway{
		api:    ec2.NewFromConfig(cfg),
		dns:    route53.NewFromConfig(cfg),
		region: region,
	}, nil
}

// NewWithAPI builds a Gateway around existing API implementations.
// Used by tests to substitute mocks.
func NewWithAPI(api API, dns DNSAPI, region string) *Gateway {
	return &Gateway{api: api, dns: dns, region: region}
}

// Region returns the region this gateway operates in.
func (g *Gateway) Region() string { return g.region }

// Network identifies a resolved VPC.
type Network struct {
	ID        string
	Name      string
	IsDefault bool
}

// Image identifies a resolved machine image.
type Image struct {
	ID           string
	Name         string
	CreationDate string
}

// KeyPairInfo identifies an imported key pair.
type KeyPairInfo struct {
	ID   string
	Name string
}

// SecurityGroupInfo identifies a security group.
type SecurityGroupInfo struct {
	ID   string
	Name string
}

// Rule is one ingress rule: protocol, port and source CIDR.
type Rule struct {
	Protocol string // "tcp" or "udp"
	Port     int32
	CIDR     string
}

func (r Rule) String() string {
	return fmt.Sprintf("%s/%d from %s", r.Protocol, r.Port, r.CIDR)
}

// Instance holds the describe-instance fields the controller needs.
type Instance struct {
	ID        string
	State     string
	PublicDNS string
	PublicIP  string
}
