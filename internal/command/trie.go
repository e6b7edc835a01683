package command

// aliasTrie resolves the longest registered command path from a raw token
// sequence. It is populated during registration and read-only afterwards,
// so concurrent resolution needs no locking.
type aliasTrie struct {
	root *trieNode
}

// trieNode is one word of a command path. A node may exist purely as a path
// segment; it becomes terminal when a command registers that exact path,
// keeping any children it already had.
type trieNode struct {
	children map[string]*trieNode
	terminal bool
	primary  string // primary alias of the bound descriptor, set when terminal
}

func newAliasTrie() *aliasTrie {
	return &aliasTrie{root: &trieNode{children: make(map[string]*trieNode)}}
}

// insert walks or creates nodes for each word of path and binds the final
// node to the descriptor's primary alias. Binding a terminal already owned
// by a different descriptor is an error; re-binding the same primary is a
// no-op so that a descriptor's own aliases can share path segments.
func (t *aliasTrie) insert(path []string, primary string) error {
	node := t.root
	for _, word := range path {
		child, ok := node.children[word]
		if !ok {
			child = &trieNode{children: make(map[string]*trieNode)}
			node.children[word] = child
		}
		node = child
	}
	if node.terminal && node.primary != primary {
		return &DuplicateRegistrationError{Alias: node.primary}
	}
	node.terminal = true
	node.primary = primary
	return nil
}

// resolve walks tokens from the root, remembering the deepest terminal node
// visited. The walk stops at the first token with no matching child. If a
// terminal was reached the tokens are rewritten: the terminal's primary
// alias becomes the single first token, followed by every token after the
// terminal's depth. With no terminal visited the tokens come back unchanged
// and the caller fails at lookup.
func (t *aliasTrie) resolve(tokens []string) []string {
	node := t.root
	deepest := -1
	primary := ""
	for i, word := range tokens {
		child, ok := node.children[word]
		if !ok {
			break
		}
		if child.terminal {
			deepest = i
			primary = child.primary
		}
		node = child
	}
	if deepest < 0 {
		return tokens
	}
	rewritten := make([]string, 0, len(tokens)-deepest)
	rewritten = append(rewritten, primary)
	rewritten = append(rewritten, tokens[deepest+1:]...)
	return rewritten
}
