package jvm

import "fmt"

// Major versions at which class-file features appear.
const (
	MinMajor uint16 = 45
	MaxMajor uint16 = 69

	Java5  uint16 = 49
	Java6  uint16 = 50
	Java7  uint16 = 51
	Java8  uint16 = 52
	Java9  uint16 = 53
	Java11 uint16 = 55
	Java12 uint16 = 56
	Java16 uint16 = 60
	Java17 uint16 = 61
)

const previewMinor uint16 = 0xFFFF

type Version struct {
	Major uint16
	Minor uint16
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

func (v Version) AtLeast(major uint16) bool {
	return v.Major >= major
}

// Release names the Java release that introduced the major version.
func (v Version) Release() string {
	switch {
	case v.Major < 49:
		return fmt.Sprintf("Java 1.%d", v.Major-44)
	default:
		return fmt.Sprintf("Java %d", v.Major-44)
	}
}

// Problem describes why v cannot be decoded, or returns "" when it can.
func (v Version) Problem() string {
	if v.Major < MinMajor || v.Major > MaxMajor {
		return fmt.Sprintf("major version %d is not in [%d,%d]", v.Major, MinMajor, MaxMajor)
	}
	if v.Major >= Java12 && v.Minor != 0 && v.Minor != previewMinor {
		return fmt.Sprintf("minor version %#x is invalid for major version %d", v.Minor, v.Major)
	}
	return ""
}

func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}
