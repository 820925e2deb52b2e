package aws

import (
	"context"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	r53types "github.com/aws/aws-sdk-go-v2/service/route53/types"
	"github.com/chainguard-dev/clog"
)

// recordTTL keeps gateway address records short-lived so a recreated
// gateway propagates quickly.
const recordTTL = 300

// DNSAPI is the subset of the Route 53 client the gateway calls.
// Declared as an interface to allow mocking.
type DNSAPI interface {
	ChangeResourceRecordSets(ctx context.Context, params *route53.ChangeResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error)
}

// UpsertRecord points hostname at ip with an A record in the hosted
// zone, replacing any previous value.
func (g *Gateway) UpsertRecord(ctx context.Context, zoneID, hostname, ip string) error {
	_, err := g.dns.ChangeResourceRecordSets(ctx, changeInput(zoneID, r53types.ChangeActionUpsert, hostname, ip))
	if err != nil {
		return wrapErr("ChangeResourceRecordSets", err)
	}
	clog.FromContext(ctx).Info("address record upserted", "zone", zoneID, "hostname", hostname, "ip", ip)
	return nil
}

// DeleteRecord removes the A record pointing hostname at ip. A record
// that does not exist, or that no longer matches ip, reports found as
// false rather than an error.
func (g *Gateway) DeleteRecord(ctx context.Context, zoneID, hostname, ip string) (bool, error) {
	_, err := g.dns.ChangeResourceRecordSets(ctx, changeInput(zoneID, r53types.ChangeActionDelete, hostname, ip))
	if err != nil {
		if errCode(err) == "InvalidChangeBatch" {
			return false, nil
		}
		return false, wrapErr("ChangeResourceRecordSets", err)
	}
	clog.FromContext(ctx).Info("address record deleted", "zone", zoneID, "hostname", hostname)
	return true, nil
}

func changeInput(zoneID string, action r53types.ChangeAction, hostname, ip string) *route53.ChangeResourceRecordSetsInput {
	return &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: awssdk.String(zoneID),
		ChangeBatch: &r53types.ChangeBatch{
			Changes: []r53types.Change{{
				Action: action,
				ResourceRecordSet: &r53types.ResourceRecordSet{
					Name: awssdk.String(hostname),
					Type: r53types.RRTypeA,
					TTL:  awssdk.Int64(recordTTL),
					ResourceRecords: []r53types.ResourceRecord{
						{Value: awssdk.String(ip)},
					},
				},
			}},
		},
	}
}
