package pipeline

import "strings"

// NoRamal is displayed when a member carries no usable interface string.
const NoRamal = "—"

// ParsedMember is the result of splitting a composite member name.
type ParsedMember struct {
	Login       string
	DisplayName string
}

// ParseMember splits a "login:Display Name" member name on the first colon.
// A bare login with no separator is not a genuine panel agent and returns
// ok=false.
func ParseMember(memberName string) (ParsedMember, bool) {
	idx := strings.Index(memberName, ":")
	if idx < 0 {
		return ParsedMember{}, false
	}
	return ParsedMember{
		Login:       strings.TrimSpace(memberName[:idx]),
		DisplayName: strings.TrimSpace(memberName[idx+1:]),
	}, true
}

// ParseInterface extracts the ramal from a PBX interface string.
// "SIP/1001" yields "1001"; any other non-empty value is used as-is;
// an empty value falls back to NoRamal.
func ParseInterface(iface string) string {
	if iface == "" {
		return NoRamal
	}
	if rest, ok := strings.CutPrefix(iface, "SIP/"); ok {
		return rest
	}
	return iface
}

// Initials derives up to two uppercase initials from a display name.
func Initials(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	first := firstRune(fields[0])
	if len(fields) == 1 {
		return first
	}
	return first + firstRune(fields[len(fields)-1])
}

func firstRune(s string) string {
	for _, r := range s {
		return strings.ToUpper(string(r))
	}
	return ""
}
