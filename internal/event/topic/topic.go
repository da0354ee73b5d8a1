package topic

import "strings"

// Topic names an event with dot-separated segments, such as
// "tabs.tab.added". Used as a subscription pattern, a segment may also be
// one of the wildcards below.
type Topic string

const (
	Separator = "."

	// WildcardSingle stands for exactly one segment.
	WildcardSingle = "*"

	// WildcardMulti stands for any run of segments, including none.
	WildcardMulti = "**"
)

func (t Topic) String() string { return string(t) }

// Segments splits t on Separator. The empty topic has no segments.
func (t Topic) Segments() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), Separator)
}

// IsValid reports whether t is non-empty and every segment is non-empty.
func (t Topic) IsValid() bool {
	return t != "" && !strings.Contains(Separator+string(t)+Separator, Separator+Separator)
}

// IsPattern reports whether any segment of t is a wildcard.
func (t Topic) IsPattern() bool {
	for _, seg := range t.Segments() {
		if seg == WildcardSingle || seg == WildcardMulti {
			return true
		}
	}
	return false
}

// Matches reports whether t is selected by pattern. A pattern without
// wildcards only matches the identical topic.
func (t Topic) Matches(pattern Topic) bool {
	if !pattern.IsPattern() {
		return t == pattern
	}
	return match(t.Segments(), pattern.Segments())
}

func match(name, pat []string) bool {
	for i, seg := range pat {
		switch seg {
		case WildcardMulti:
			rest := pat[i+1:]
			for skip := 0; skip <= len(name); skip++ {
				if match(name[skip:], rest) {
					return true
				}
			}
			return false
		case WildcardSingle:
		default:
			if len(name) == 0 || name[0] != seg {
				return false
			}
		}
		if len(name) == 0 {
			return false
		}
		name = name[1:]
	}
	return len(name) == 0
}
