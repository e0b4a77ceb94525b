package adoc

import "strings"

// listKey identifies one list "level" for the purpose of nesting
// resolution. Two list item lines belong to the same list exactly when
// their keys are equal; a key already on the ancestor stack closes the
// current list, and any other key opens a nested one.
//
// Unordered markers are keyed by symbol and run length, dot-ordered
// markers by run length, explicit enumerators by their style letter
// alone, callout items all share a single key, and description list
// items are keyed by their literal separator.
type listKey struct {
	dlist bool
	kind  ListKind
	sym   byte
	depth int
	enum  byte
	sep   string
}

func keyOf(t *Token) listKey {
	if t.Type == DListItemToken {
		return listKey{dlist: true, sep: t.Separator}
	}
	switch t.List {
	case CalloutList:
		return listKey{kind: CalloutList}
	case OrderedList:
		if t.EnumStyle != 0 {
			return listKey{kind: OrderedList, enum: t.EnumStyle}
		}
		return listKey{kind: OrderedList, depth: t.MarkerDepth}
	default:
		return listKey{kind: UnorderedList, sym: t.Marker[0], depth: t.MarkerDepth}
	}
}

func onStack(stack []listKey, key listKey) bool {
	for _, k := range stack {
		if k == key {
			return true
		}
	}
	return false
}

// isListToken reports whether t can continue a list across blank lines.
func isListToken(t *Token) bool {
	return t != nil && (t.Type == ListItemToken || t.Type == DListItemToken)
}

// parseListLike dispatches on the item flavor; stack already contains
// the keys of every enclosing list.
func (p *Parser) parseListLike(t *Token, stack []listKey) *Node {
	if t.Type == DListItemToken {
		return p.parseDList(stack)
	}
	return p.parseList(stack)
}

// parseList parses a run of list items sharing one key into a ListNode.
// A marker whose key matches an ancestor is left unconsumed so the
// enclosing list can resume; a novel key nests a child list under the
// last item. No backtracking: every decision looks at one token.
func (p *Parser) parseList(ancestors []listKey) *Node {
	first := p.cur.Peek()
	key := keyOf(first)
	stack := append(ancestors, key)

	list := &Node{
		Type:     ListNode,
		ListKind: first.List,
		Marker:   first.Marker,
		Span:     first.Span,
	}

	for {
		t := p.cur.Peek()
		if t == nil {
			break
		}
		if t.Type == BlankToken {
			if !isListToken(p.cur.PeekNonBlank()) {
				break
			}
			p.skipBlanks()
			continue
		}
		if t.Type != ListItemToken && t.Type != DListItemToken {
			break
		}

		k := keyOf(t)
		if k == key {
			p.cur.Next()
			item := &Node{
				Type:     ListItemNode,
				Marker:   t.Marker,
				Checkbox: t.Checkbox,
				Content:  ParseInline(p.expand(strings.TrimSpace(t.Text[t.ContentStart:]))),
				Span:     t.Span,
			}
			list.AppendChild(item)
			p.parseItemExtras(item, stack)
			list.Span.End = item.Span.End
			continue
		}
		if onStack(ancestors, k) {
			break
		}

		// Novel marker: nest under the last item
		last := list.LastChild
		if last == nil {
			break
		}
		child := p.parseListLike(t, stack)
		last.AppendChild(child)
		last.Span.End = child.Span.End
		list.Span.End = child.Span.End
	}

	return list
}

// parseDList parses a description list. Consecutive term lines with no
// inline description and the same separator pile their terms onto one
// item; the description is either the inline remainder after the
// separator or the block content that follows.
func (p *Parser) parseDList(ancestors []listKey) *Node {
	first := p.cur.Peek()
	key := keyOf(first)
	stack := append(ancestors, key)

	list := &Node{
		Type:   DListNode,
		Marker: first.Separator,
		Span:   first.Span,
	}

	for {
		t := p.cur.Peek()
		if t == nil {
			break
		}
		if t.Type == BlankToken {
			if !isListToken(p.cur.PeekNonBlank()) {
				break
			}
			p.skipBlanks()
			continue
		}
		if t.Type != DListItemToken || keyOf(t) != key {
			break
		}

		item := &Node{Type: DListItemNode, Marker: t.Separator, Span: t.Span}

		// Term phase: accumulate term-only lines, stopping after the
		// first line that carries an inline description.
		for {
			tt := p.cur.Peek()
			if tt == nil || tt.Type != DListItemToken || keyOf(tt) != key {
				break
			}
			p.cur.Next()
			item.Terms = append(item.Terms, ParseInline(p.expand(strings.TrimSpace(tt.Term))))
			item.Span.End = tt.Span.End
			if tt.DescStart >= 0 {
				item.Content = ParseInline(p.expand(strings.TrimSpace(tt.Text[tt.DescStart:])))
				break
			}
		}

		// A plain text line directly below a term-only item is its
		// description paragraph.
		if item.Content == nil {
			if tok := p.cur.Peek(); tok != nil && tok.Type == TextToken {
				para := p.parseTextBlock(tok, newBlockMeta())
				item.AppendChild(para)
				item.Span.End = para.Span.End
			}
		}

		list.AppendChild(item)
		p.parseItemExtras(item, stack)
		list.Span.End = item.Span.End
	}

	return list
}

// parseItemExtras consumes what follows an item's principal text and
// still belongs to the item: nested lists with novel markers, and
// continuation blocks introduced by a '+' line.
func (p *Parser) parseItemExtras(item *Node, stack []listKey) {
	key := stack[len(stack)-1]
	for {
		t := p.cur.Peek()
		if t == nil {
			return
		}

		switch t.Type {
		case BlankToken:
			nb := p.cur.PeekNonBlank()
			if !isListToken(nb) {
				return
			}
			k := keyOf(nb)
			if k == key || onStack(stack, k) {
				return
			}
			p.skipBlanks()
			continue

		case ListItemToken, DListItemToken:
			k := keyOf(t)
			if k == key || onStack(stack, k) {
				return
			}
			child := p.parseListLike(t, stack)
			item.AppendChild(child)
			item.Span.End = child.Span.End
			continue

		case ContinuationToken:
			p.cur.Next()
			block := p.parseAttachedBlock(stack)
			if block == nil {
				return
			}
			item.AppendChild(block)
			item.Span.End = block.Span.End
			continue

		default:
			return
		}
	}
}

// parseAttachedBlock parses the single block attached to a list item by
// a continuation line. A list item token after the '+' starts a list
// resolved against the same ancestor stack, so markers of enclosing
// lists are not swallowed.
func (p *Parser) parseAttachedBlock(stack []listKey) *Node {
	p.skipBlanks()
	meta := p.collectMeta()

	t := p.cur.Peek()
	if t == nil {
		return nil
	}

	var node *Node
	if t.Type == ListItemToken || t.Type == DListItemToken {
		k := keyOf(t)
		if k == stack[len(stack)-1] || onStack(stack, k) {
			return nil
		}
		node = p.parseListLike(t, stack)
	} else {
		node = p.parseOne(t, meta, func(*Token) bool { return false })
	}
	if node == nil {
		return nil
	}
	node = p.wrapAdmonition(node, meta)
	p.mergeMeta(node, meta)
	return node
}
