package aws

import (
	"context"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	r53types "github.com/aws/aws-sdk-go-v2/service/route53/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vpngw/vpngw/internal/errdefs"
	"github.com/vpngw/vpngw/internal/platform/aws/mocks"
)

func TestUpsertRecord(t *testing.T) {
	dns := &mocks.MockDNSAPI{
		ChangeResourceRecordSetsFunc: func(_ context.Context, params *route53.ChangeResourceRecordSetsInput, _ ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error) {
			assert.Equal(t, "Z0123", awssdk.ToString(params.HostedZoneId))
			require.Len(t, params.ChangeBatch.Changes, 1)
			change := params.ChangeBatch.Changes[0]
			assert.Equal(t, r53types.ChangeActionUpsert, change.Action)
			assert.Equal(t, "vpn.example.org", awssdk.ToString(change.ResourceRecordSet.Name))
			assert.Equal(t, r53types.RRTypeA, change.ResourceRecordSet.Type)
			require.Len(t, change.ResourceRecordSet.ResourceRecords, 1)
			assert.Equal(t, "198.51.100.7", awssdk.ToString(change.ResourceRecordSet.ResourceRecords[0].Value))
			return &route53.ChangeResourceRecordSetsOutput{}, nil
		},
	}

	gw := NewWithAPI(nil, dns, "us-west-2")
	require.NoError(t, gw.UpsertRecord(context.Background(), "Z0123", "vpn.example.org", "198.51.100.7"))
}

func TestDeleteRecord(t *testing.T) {
	dns := &mocks.MockDNSAPI{
		ChangeResourceRecordSetsFunc: func(_ context.Context, params *route53.ChangeResourceRecordSetsInput, _ ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error) {
			assert.Equal(t, r53types.ChangeActionDelete, params.ChangeBatch.Changes[0].Action)
			return &route53.ChangeResourceRecordSetsOutput{}, nil
		},
	}

	gw := NewWithAPI(nil, dns, "us-west-2")
	found, err := gw.DeleteRecord(context.Background(), "Z0123", "vpn.example.org", "198.51.100.7")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestDeleteRecord_MissingRecordIsNotAnError(t *testing.T) {
	dns := &mocks.MockDNSAPI{
		ChangeResourceRecordSetsFunc: func(_ context.Context, _ *route53.ChangeResourceRecordSetsInput, _ ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error) {
			return nil, apiError("InvalidChangeBatch", "the record set does not exist")
		},
	}

	gw := NewWithAPI(nil, dns, "us-west-2")
	found, err := gw.DeleteRecord(context.Background(), "Z0123", "vpn.example.org", "198.51.100.7")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUpsertRecord_WrapsProviderError(t *testing.T) {
	dns := &mocks.MockDNSAPI{
		ChangeResourceRecordSetsFunc: func(_ context.Context, _ *route53.ChangeResourceRecordSetsInput, _ ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error) {
			return nil, apiError("NoSuchHostedZone", "zone Z0123 does not exist")
		},
	}

	gw := NewWithAPI(nil, dns, "us-west-2")
	err := gw.UpsertRecord(context.Background(), "Z0123", "vpn.example.org", "198.51.100.7")
	require.Error(t, err)
	apiErr, ok := errdefs.AsCloudAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "NoSuchHostedZone", apiErr.Code)
}
