package enums

import "unicode/utf8"

// TrimCommonPrefix strips the prefix shared by every member name, in place,
// and returns the number of bytes removed from each name.
//
// The shared length is measured against the first member's name: it starts
// at that name's length and shrinks to the first mismatching index of each
// later member. If stripping would leave any name empty, nothing is
// stripped. The cut never falls inside a multi-byte character. A stripped
// name that starts with a digit gets a leading underscore so it stays a
// valid identifier.
func TrimCommonPrefix(members []Member) int {
	if len(members) == 0 {
		return 0
	}

	n := commonPrefixLen(members)
	for _, m := range members {
		if len(m.Name) == n {
			n = 0
			break
		}
	}

	for i := range members {
		name := members[i].Name[n:]
		if name != "" && isDigit(name[0]) {
			name = "_" + name
		}
		members[i].Name = name
	}
	return n
}

func commonPrefixLen(members []Member) int {
	baseline := members[0].Name
	n := len(baseline)
	for _, m := range members {
		for i := 0; i < n; i++ {
			if i >= len(m.Name) || m.Name[i] != baseline[i] {
				n = i
				break
			}
		}
		if n == 0 {
			break
		}
	}
	for n > 0 && n < len(baseline) && !utf8.RuneStart(baseline[n]) {
		n--
	}
	return n
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
