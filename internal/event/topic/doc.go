// Package topic provides hierarchical topic names and wildcard matching for
// the event bus.
//
// Topics use dot-notation:
//
//	doc.changed
//	tabs.tab.added
//	tabs.registry.repopulated
//
// Subscription patterns may use two wildcards:
//
//   - "*" matches exactly one segment
//   - "**" matches zero or more segments
//
// Examples:
//
//	tabs.*          matches nothing above (tabs.tab.added has three segments)
//	tabs.**         matches every tabs topic
//	*.changed       matches doc.changed
//	**              matches everything
package topic
