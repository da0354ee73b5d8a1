// Package tabs implements tabbed containers inside a document.
//
// A container holds two parallel lists, a header list and a content list.
// Headers and panels are paired by their slotIndex attribute, never by
// position, so the lists may be reordered independently. Exactly one pair per
// container is active, and every header, panel and append control carries
// its container's id.
//
// Commands (Create, Add, Delete, Move, SetActive) each run in one document
// transaction. The Reconciler runs after every document change and repairs
// what generic edits can break: it restores the active pair, re-stamps
// container ids, gives pasted copies fresh ids and keeps the Registry in step
// with the containers actually present in the tree.
package tabs
