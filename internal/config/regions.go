package config

import "sort"

var knownRegions = map[string]struct{}{
	"us-east-1":      {},
	"us-east-2":      {},
	"us-west-1":      {},
	"us-west-2":      {},
	"af-south-1":     {},
	"ap-east-1":      {},
	"ap-south-1":     {},
	"ap-south-2":     {},
	"ap-northeast-1": {},
	"ap-northeast-2": {},
	"ap-northeast-3": {},
	"ap-southeast-1": {},
	"ap-southeast-2": {},
	"ap-southeast-3": {},
	"ap-southeast-4": {},
	"ca-central-1":   {},
	"ca-west-1":      {},
	"eu-central-1":   {},
	"eu-central-2":   {},
	"eu-west-1":      {},
	"eu-west-2":      {},
	"eu-west-3":      {},
	"eu-south-1":     {},
	"eu-south-2":     {},
	"eu-north-1":     {},
	"il-central-1":   {},
	"me-south-1":     {},
	"me-central-1":   {},
	"sa-east-1":      {},
	"cn-north-1":     {},
	"cn-northwest-1": {},
	"us-gov-east-1":  {},
	"us-gov-west-1":  {},
}

// IsKnownRegion reports whether region is an AWS region identifier the publisher accepts.
func IsKnownRegion(region string) bool {
	_, ok := knownRegions[region]
	return ok
}

// Regions returns the accepted region identifiers, sorted.
func Regions() []string {
	out := make([]string, 0, len(knownRegions))
	for r := range knownRegions {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}
