package common

import "strings"

// Partition names as they appear in ARNs.
const (
	PartitionAWS      = "aws"
	PartitionGovCloud = "aws-us-gov"
	PartitionChina    = "aws-cn"
	PartitionISO      = "aws-iso"
	PartitionISOB     = "aws-iso-b"
	PartitionISOE     = "aws-iso-e"
	PartitionISOF     = "aws-iso-f"
)

// regionPrefixes maps region name prefixes to partitions. Longer prefixes
// come first so "us-isob-" is not matched by "us-iso-".
var regionPrefixes = []struct {
	prefix    string
	partition string
}{
	{"us-gov-", PartitionGovCloud},
	{"cn-", PartitionChina},
	{"us-isob-", PartitionISOB},
	{"us-iso-", PartitionISO},
	{"eu-isoe-", PartitionISOE},
	{"us-isof-", PartitionISOF},
}

// PartitionForRegion returns the ARN partition a region belongs to. Unknown
// and empty regions fall back to the commercial partition.
func PartitionForRegion(region string) string {
	for _, p := range regionPrefixes {
		if strings.HasPrefix(region, p.prefix) {
			return p.partition
		}
	}
	return PartitionAWS
}
