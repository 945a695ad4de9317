package entities

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

const maxVersionParts = 4

// PackageVersion is a package version in the Major.Minor.Patch[.Revision]
// form with optional release label and build metadata.
type PackageVersion struct {
	Major    int
	Minor    int
	Patch    int
	Revision int
	Release  string
	Metadata string
}

// ParsePackageVersion parses versions such as "1.0", "1.0.0-beta-24",
// "4.3.0.1" or "2.0.0-preview1+build.5".
func ParsePackageVersion(raw string) (*PackageVersion, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, fmt.Errorf("empty version")
	}

	version := &PackageVersion{}

	if before, after, found := strings.Cut(value, "+"); found {
		value = before
		version.Metadata = after
	}
	if before, after, found := strings.Cut(value, "-"); found {
		value = before
		version.Release = after
		if version.Release == "" {
			return nil, fmt.Errorf("invalid version %q: empty release label", raw)
		}
	}

	parts := strings.Split(value, ".")
	if len(parts) < 2 || len(parts) > maxVersionParts {
		return nil, fmt.Errorf("invalid version %q: expected 2 to 4 numeric parts", raw)
	}

	numbers := make([]int, maxVersionParts)
	for i, part := range parts {
		number, err := strconv.Atoi(part)
		if err != nil || number < 0 {
			return nil, fmt.Errorf("invalid version %q: part %q is not a number", raw, part)
		}
		numbers[i] = number
	}
	version.Major, version.Minor, version.Patch, version.Revision = numbers[0], numbers[1], numbers[2], numbers[3]

	if !semver.IsValid(version.canonical()) {
		return nil, fmt.Errorf("invalid version %q", raw)
	}

	return version, nil
}

// MustParsePackageVersion is ParsePackageVersion for literals known to be valid.
func MustParsePackageVersion(raw string) *PackageVersion {
	version, err := ParsePackageVersion(raw)
	if err != nil {
		panic(err)
	}
	return version
}

// IsPrerelease reports whether the version carries a release label.
func (v *PackageVersion) IsPrerelease() bool {
	return v.Release != ""
}

// Normalized renders the version without metadata, omitting a zero revision.
func (v *PackageVersion) Normalized() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Revision > 0 {
		fmt.Fprintf(&builder, ".%d", v.Revision)
	}
	if v.Release != "" {
		builder.WriteString("-" + v.Release)
	}
	return builder.String()
}

func (v *PackageVersion) String() string {
	if v.Metadata == "" {
		return v.Normalized()
	}
	return v.Normalized() + "+" + v.Metadata
}

// Compare orders two versions; metadata is ignored and release labels
// compare case-insensitively.
func (v *PackageVersion) Compare(other *PackageVersion) int {
	if cmp := semver.Compare(v.canonical(), other.canonical()); cmp != 0 {
		return cmp
	}
	switch {
	case v.Revision < other.Revision:
		return -1
	case v.Revision > other.Revision:
		return 1
	default:
		return 0
	}
}

// Equal reports whether both versions denote the same release.
func (v *PackageVersion) Equal(other *PackageVersion) bool {
	if other == nil {
		return false
	}
	return v.Compare(other) == 0
}

// canonical is the semver form used for validation and ordering.
func (v *PackageVersion) canonical() string {
	canonical := fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Release != "" {
		canonical += "-" + strings.ToLower(v.Release)
	}
	return canonical
}

// VersionRange is the part of a dependency version constraint needed to
// decide whether a pinned version may be replaced.
type VersionRange struct {
	MinVersion   *PackageVersion
	MinInclusive bool
	MaxVersion   *PackageVersion
	MaxInclusive bool
	Floating     bool
}

// ParseVersionRange accepts a plain version ("1.0.0", minimum inclusive),
// interval notation ("[1.0,2.0)", "(,2.0]", "[1.0.0]") and floating versions
// ("1.0.*", "1.0.0-*").
func ParseVersionRange(raw string) (*VersionRange, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, fmt.Errorf("empty version range")
	}

	if strings.HasPrefix(value, "[") || strings.HasPrefix(value, "(") {
		return parseIntervalRange(value)
	}

	if strings.HasSuffix(value, "*") {
		return parseFloatingRange(value)
	}

	version, err := ParsePackageVersion(value)
	if err != nil {
		return nil, err
	}
	return &VersionRange{MinVersion: version, MinInclusive: true}, nil
}

func parseIntervalRange(value string) (*VersionRange, error) {
	if len(value) < 3 { //nolint:mnd // brackets plus at least one character
		return nil, fmt.Errorf("invalid version range %q", value)
	}

	last := value[len(value)-1]
	if last != ']' && last != ')' {
		return nil, fmt.Errorf("invalid version range %q: missing closing bracket", value)
	}

	versionRange := &VersionRange{
		MinInclusive: value[0] == '[',
		MaxInclusive: last == ']',
	}
	inner := strings.TrimSpace(value[1 : len(value)-1])

	lower, upper, hasComma := strings.Cut(inner, ",")
	if !hasComma {
		// "[1.0.0]" pins exactly one version.
		if !versionRange.MinInclusive || !versionRange.MaxInclusive {
			return nil, fmt.Errorf("invalid version range %q", value)
		}
		version, err := ParsePackageVersion(inner)
		if err != nil {
			return nil, err
		}
		versionRange.MinVersion = version
		versionRange.MaxVersion = version
		return versionRange, nil
	}

	if lower = strings.TrimSpace(lower); lower != "" {
		version, err := ParsePackageVersion(lower)
		if err != nil {
			return nil, err
		}
		versionRange.MinVersion = version
	}
	if upper = strings.TrimSpace(upper); upper != "" {
		version, err := ParsePackageVersion(upper)
		if err != nil {
			return nil, err
		}
		versionRange.MaxVersion = version
	}

	if versionRange.MinVersion == nil && versionRange.MaxVersion == nil {
		return nil, fmt.Errorf("invalid version range %q: no bounds", value)
	}
	return versionRange, nil
}

func parseFloatingRange(value string) (*VersionRange, error) {
	prefix := strings.TrimSuffix(value, "*")

	var version *PackageVersion
	var err error
	switch {
	case strings.HasSuffix(prefix, "-"):
		// "1.0.0-*" floats over every prerelease of 1.0.0.
		version, err = ParsePackageVersion(prefix + "0")
		if err == nil {
			version.Release = "0"
		}
	case strings.HasSuffix(prefix, "."):
		version, err = ParsePackageVersion(padVersion(prefix + "0"))
	default:
		version, err = ParsePackageVersion(prefix)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid floating version %q: %w", value, err)
	}

	return &VersionRange{MinVersion: version, MinInclusive: true, Floating: true}, nil
}

// padVersion turns "1.*" style prefixes ("1.0") into parsable versions.
func padVersion(value string) string {
	if strings.Count(value, ".") == 0 {
		return value + ".0"
	}
	return value
}
