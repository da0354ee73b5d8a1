package tabs

import (
	"github.com/dshills/tabstorm/internal/doc"
	"github.com/dshills/tabstorm/internal/doc/node"
)

// RegisterSchema adds the container structure to s. Tab bodies accept
// paragraphs but not containers, so an edit position inside a tab falls back
// to the position after the enclosing container.
func RegisterSchema(s *doc.Schema) {
	s.Allow(node.KindRoot, KindContainer)
	s.Allow(KindContainer, KindHeaderList, KindContentList)
	s.Allow(KindHeaderList, KindTabHeader, KindAppendControl)
	s.Allow(KindTabHeader, KindTabTitle, KindTabControls)
	s.Allow(KindTabTitle, node.KindText)
	s.Allow(KindTabControls, KindMoveLeftButton, KindMoveRightButton, KindDeleteButton)
	s.Allow(KindContentList, KindTabPanel)
	s.Allow(KindTabPanel, node.KindParagraph)
	s.Allow(KindAppendControl, KindAppendButton)
	s.Disallow(KindTabPanel, KindContainer)
}
