package tabs

import (
	"strconv"
	"strings"

	"github.com/dshills/tabstorm/internal/doc/node"
)

// Default placeholder templates.
const (
	DefaultTitleTemplate      = "Tab %d"
	DefaultContentPlaceholder = "Tab content"
)

// Templates holds the placeholder text of newly built tabs. Every "%d" in
// Title is replaced by the one-based tab number; the rest is kept literally.
type Templates struct {
	Title   string
	Content string
}

// DefaultTemplates returns the built-in placeholders.
func DefaultTemplates() Templates {
	return Templates{Title: DefaultTitleTemplate, Content: DefaultContentPlaceholder}
}

// TitleFor returns the placeholder title of the tab at slot.
func (t Templates) TitleFor(slot int) string {
	return strings.ReplaceAll(t.Title, "%d", strconv.Itoa(slot+1))
}

// BuildTabPair builds one header and its panel for slot, both active.
func BuildTabPair(slot int, containerID string, t Templates) (header, panel *node.Node) {
	attrs := func() map[string]any {
		return map[string]any{
			AttrContainerID: containerID,
			AttrSlotIndex:   slot,
			AttrIsActive:    true,
		}
	}
	header = node.New(KindTabHeader, attrs(),
		node.New(KindTabTitle, nil, node.NewText(t.TitleFor(slot))),
		node.New(KindTabControls, nil,
			node.New(KindMoveLeftButton, nil),
			node.New(KindMoveRightButton, nil),
			node.New(KindDeleteButton, nil),
		),
	)
	panel = node.New(KindTabPanel, attrs(), node.NewParagraph(t.Content))
	return header, panel
}

// BuildAppendControl builds the trailing "add tab" control.
func BuildAppendControl(containerID string) *node.Node {
	return node.New(KindAppendControl, map[string]any{AttrContainerID: containerID},
		node.New(KindAppendButton, map[string]any{AttrContainerID: containerID}),
	)
}

// BuildContainer builds a container with tabCount tabs in slots
// 0..tabCount-1. Only slot 0 is active.
func BuildContainer(containerID string, tabCount int, t Templates) *node.Node {
	headers := node.New(KindHeaderList, nil)
	contents := node.New(KindContentList, nil)
	for slot := 0; slot < tabCount; slot++ {
		h, p := BuildTabPair(slot, containerID, t)
		if slot > 0 {
			h.SetAttr(AttrIsActive, false)
			p.SetAttr(AttrIsActive, false)
		}
		_ = headers.AppendChild(h)
		_ = contents.AppendChild(p)
	}
	_ = headers.AppendChild(BuildAppendControl(containerID))
	return node.New(KindContainer, map[string]any{AttrContainerID: containerID}, headers, contents)
}
