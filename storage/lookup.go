package storage

// Views bundles the four memory views backing one container, the shape the
// mapping cache hands to GetBooleanFlag (§4.7/§4.8).
type Views struct {
	PackageMap View
	FlagMap    View
	FlagValue  View
	FlagInfo   View
}

// FlagResult is the outcome of a successful end-to-end flag lookup.
type FlagResult struct {
	Value     bool
	Type      FlagType
	Attribute uint8
	HasInfo   bool
}

// GetBooleanFlag runs the composite lookup pipeline described in §4.7:
// find the package, find the flag within it, then read its boolean value
// and (if an info view is supplied) its attribute byte. A missing package
// or flag at any step is reported as (zero value, false, nil) — a definite
// absence, not an error.
func GetBooleanFlag(v Views, pkg, flag string) (FlagResult, bool, error) {
	p, found, err := FindPackage(v.PackageMap, pkg)
	if err != nil || !found {
		return FlagResult{}, false, err
	}
	f, found, err := FindFlag(v.FlagMap, p.PackageID, flag)
	if err != nil || !found {
		return FlagResult{}, false, err
	}
	globalIndex := p.BooleanStartIndex + uint32(f.FlagIndex)

	value, err := GetBoolean(v.FlagValue, globalIndex)
	if err != nil {
		return FlagResult{}, false, err
	}
	result := FlagResult{Value: value, Type: f.Type}
	if v.FlagInfo != nil {
		attr, err := GetAttribute(v.FlagInfo, globalIndex)
		if err != nil {
			return FlagResult{}, false, err
		}
		result.Attribute = attr
		result.HasInfo = true
	}
	return result, true, nil
}
