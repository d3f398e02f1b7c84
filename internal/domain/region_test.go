package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegion(t *testing.T) {
	tests := []struct {
		service  string
		expected string
	}{
		{"ec2-us-east-1", "us-east-1"},
		{"s3-us-west-2", "us-west-2"},
		{"s3-us-standard", "us-standard"},
		{"elasticache-eu-central-1", "eu-central-1"},
		{"ec2-ap-southeast-2", "ap-southeast-2"},
		{"dynamodb-us-gov-west-1", "us-gov-west-1"},
		{"cloudfront", "global"},
		{"route53", "global"},
		{"management-console", "global"},
	}

	for _, tc := range tests {
		t.Run(tc.service, func(t *testing.T) {
			assert.Equal(t, tc.expected, Region(tc.service))
		})
	}
}

func TestRegionWithGlobals(t *testing.T) {
	globals := map[string]struct{}{
		"cloudfront": {},
		"route53":    {},
	}

	assert.Equal(t, "us-east-1", RegionWithGlobals("ec2-us-east-1", globals))
	assert.Equal(t, "global", RegionWithGlobals("cloudfront", globals))
	// Unknown region-less services keep their own token.
	assert.Equal(t, "somenewservice", RegionWithGlobals("somenewservice", globals))
}

func TestServiceShortName(t *testing.T) {
	tests := []struct {
		service  string
		expected string
	}{
		{"ec2-us-east-1", "ec2"},
		{"s3-us-standard", "s3"},
		{"aws-glue-us-east-1", "aws-glue"},
		{"elasticache-eu-central-1", "elasticache"},
		{"cloudfront", "cloudfront"},
		{"management-console", "management-console"},
	}

	for _, tc := range tests {
		t.Run(tc.service, func(t *testing.T) {
			assert.Equal(t, tc.expected, ServiceShortName(tc.service))
		})
	}
}
