package domain

import "regexp"

// regionPattern matches the region element embedded in a composite service
// token like ec2-us-east-1 or s3-us-standard, including gov and iso
// partitions.
var regionPattern = regexp.MustCompile(`((?:us|eu|cn|ap|ca|me|sa|af)(?:-gov|-isob?)?-(?:(?:(?:central|(?:north|south)?(?:east|west)?)-\d)|standard))`)

// RegionGlobal is the region reported for services whose token carries no
// region element.
const RegionGlobal = "global"

// Region extracts the region from a composite service token. Tokens without
// a region element report RegionGlobal.
func Region(service string) string {
	if m := regionPattern.FindString(service); m != "" {
		return m
	}
	return RegionGlobal
}

// RegionWithGlobals extracts the region from a composite service token,
// consulting a set of known region-less services. A token with no region
// element reports RegionGlobal when the service is a known global one, and
// falls back to the token itself otherwise so unexpected feed entries stay
// distinguishable.
func RegionWithGlobals(service string, globals map[string]struct{}) string {
	if m := regionPattern.FindString(service); m != "" {
		return m
	}
	if _, ok := globals[service]; ok {
		return RegionGlobal
	}
	return service
}

// ServiceShortName strips the region element from a composite service token,
// returning the bare service name (ec2, s3, aws-glue). Tokens without a
// region element are returned unchanged.
func ServiceShortName(service string) string {
	loc := regionPattern.FindStringIndex(service)
	if loc == nil {
		return service
	}
	// Drop the hyphen joining the name to the region.
	if loc[0] > 0 {
		return service[:loc[0]-1]
	}
	return service
}
