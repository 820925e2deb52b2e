// Package mocks provides function-field mocks of the EC2 and Route 53
// API subsets used by the cloud gateway. Tests set only the fields they
// need; an unexpected call panics with a clear message.
package mocks

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/route53"
)

type MockAPI struct {
	DescribeVpcsFunc                  func(ctx context.Context, params *ec2.DescribeVpcsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error)
	DescribeImagesFunc                func(ctx context.Context, params *ec2.DescribeImagesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeImagesOutput, error)
	ImportKeyPairFunc                 func(ctx context.Context, params *ec2.ImportKeyPairInput, optFns ...func(*ec2.Options)) (*ec2.ImportKeyPairOutput, error)
	DeleteKeyPairFunc                 func(ctx context.Context, params *ec2.DeleteKeyPairInput, optFns ...func(*ec2.Options)) (*ec2.DeleteKeyPairOutput, error)
	CreateSecurityGroupFunc           func(ctx context.Context, params *ec2.CreateSecurityGroupInput, optFns ...func(*ec2.Options)) (*ec2.CreateSecurityGroupOutput, error)
	AuthorizeSecurityGroupIngressFunc func(ctx context.Context, params *ec2.AuthorizeSecurityGroupIngressInput, optFns ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupIngressOutput, error)
	DeleteSecurityGroupFunc           func(ctx context.Context, params *ec2.DeleteSecurityGroupInput, optFns ...func(*ec2.Options)) (*ec2.DeleteSecurityGroupOutput, error)
	DescribeSecurityGroupsFunc        func(ctx context.Context, params *ec2.DescribeSecurityGroupsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error)
	RunInstancesFunc                  func(ctx context.Context, params *ec2.RunInstancesInput, optFns ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error)
	TerminateInstancesFunc            func(ctx context.Context, params *ec2.TerminateInstancesInput, optFns ...func(*ec2.Options)) (*ec2.TerminateInstancesOutput, error)
	DescribeInstancesFunc             func(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
}

func (m *MockAPI) DescribeVpcs(ctx context.Context, params *ec2.DescribeVpcsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error) {
	if m.DescribeVpcsFunc == nil {
		panic(unexpected("DescribeVpcs"))
	}
	return m.DescribeVpcsFunc(ctx, params, optFns...)
}

func (m *MockAPI) DescribeImages(ctx context.Context, params *ec2.DescribeImagesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeImagesOutput, error) {
	if m.DescribeImagesFunc == nil {
		panic(unexpected("DescribeImages"))
	}
	return m.DescribeImagesFunc(ctx, params, optFns...)
}

func (m *MockAPI) ImportKeyPair(ctx context.Context, params *ec2.ImportKeyPairInput, optFns ...func(*ec2.Options)) (*ec2.ImportKeyPairOutput, error) {
	if m.ImportKeyPairFunc == nil {
		panic(unexpected("ImportKeyPair"))
	}
	return m.ImportKeyPairFunc(ctx, params, optFns...)
}

func (m *MockAPI) DeleteKeyPair(ctx context.Context, params *ec2.DeleteKeyPairInput, optFns ...func(*ec2.Options)) (*ec2.DeleteKeyPairOutput, error) {
	if m.DeleteKeyPairFunc == nil {
		panic(unexpected("DeleteKeyPair"))
	}
	return m.DeleteKeyPairFunc(ctx, params, optFns...)
}

func (m *MockAPI) CreateSecurityGroup(ctx context.Context, params *ec2.CreateSecurityGroupInput, optFns ...func(*ec2.Options)) (*ec2.CreateSecurityGroupOutput, error) {
	if m.CreateSecurityGroupFunc == nil {
		panic(unexpected("CreateSecurityGroup"))
	}
	return m.CreateSecurityGroupFunc(ctx, params, optFns...)
}

func (m *MockAPI) AuthorizeSecurityGroupIngress(ctx context.Context, params *ec2.AuthorizeSecurityGroupIngressInput, optFns ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupIngressOutput, error) {
	if m.AuthorizeSecurityGroupIngressFunc == nil {
		panic(unexpected("AuthorizeSecurityGroupIngress"))
	}
	return m.AuthorizeSecurityGroupIngressFunc(ctx, params, optFns...)
}

func (m *MockAPI) DeleteSecurityGroup(ctx context.Context, params *ec2.DeleteSecurityGroupInput, optFns ...func(*ec2.Options)) (*ec2.DeleteSecurityGroupOutput, error) {
	if m.DeleteSecurityGroupFunc == nil {
		panic(unexpected("DeleteSecurityGroup"))
	}
	return m.DeleteSecurityGroupFunc(ctx, params, optFns...)
}

func (m *MockAPI) DescribeSecurityGroups(ctx context.Context, params *ec2.DescribeSecurityGroupsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error) {
	if m.DescribeSecurityGroupsFunc == nil {
		panic(unexpected("DescribeSecurityGroups"))
	}
	return m.DescribeSecurityGroupsFunc(ctx, params, optFns...)
}

func (m *MockAPI) RunInstances(ctx context.Context, params *ec2.RunInstancesInput, optFns ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error) {
	if m.RunInstancesFunc == nil {
		panic(unexpected("RunInstances"))
	}
	return m.RunInstancesFunc(ctx, params, optFns...)
}

func (m *MockAPI) TerminateInstances(ctx context.Context, params *ec2.TerminateInstancesInput, optFns ...func(*ec2.Options)) (*ec2.TerminateInstancesOutput, error) {
	if m.TerminateInstancesFunc == nil {
		panic(unexpected("TerminateInstances"))
	}
	return m.TerminateInstancesFunc(ctx, params, optFns...)
}

func (m *MockAPI) DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	if m.DescribeInstancesFunc == nil {
		panic(unexpected("DescribeInstances"))
	}
	return m.DescribeInstancesFunc(ctx, params, optFns...)
}

// MockDNSAPI is the function-field mock of the Route 53 API subset.
type MockDNSAPI struct {
	ChangeResourceRecordSetsFunc func(ctx context.Context, params *route53.ChangeResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error)
}

func (m *MockDNSAPI) ChangeResourceRecordSets(ctx context.Context, params *route53.ChangeResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error) {
	if m.ChangeResourceRecordSetsFunc == nil {
		panic(unexpected("ChangeResourceRecordSets"))
	}
	return m.ChangeResourceRecordSetsFunc(ctx, params, optFns...)
}

func unexpected(method string) string {
	return fmt.Sprintf("mocks: unexpected call to %s", method)
}
