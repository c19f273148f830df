// Package view holds the rendered post list.
package view

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Block is one rendered post. Delete is the control bound to the post id.
type Block struct {
	ID      int64
	Title   string
	Content string
	Delete  func(ctx context.Context) error
}

// List is the container the post blocks are rendered into. Its contents are
// only ever replaced as a whole.
type List struct {
	mutex  sync.RWMutex
	blocks []Block
}

func NewList() *List {
	return &List{}
}

func (l *List) Replace(blocks []Block) {
	cp := make([]Block, len(blocks))
	copy(cp, blocks)

	l.mutex.Lock()
	l.blocks = cp
	l.mutex.Unlock()
}

func (l *List) Blocks() []Block {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	cp := make([]Block, len(l.blocks))
	copy(cp, l.blocks)

	return cp
}

func (l *List) Len() int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return len(l.blocks)
}

// Find returns the block rendered for the post id.
func (l *List) Find(id int64) (Block, bool) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	for _, b := range l.blocks {
		if b.ID == id {
			return b, true
		}
	}

	return Block{}, false
}

// Render writes every block as its title, its content and its delete
// control. Title and content are written verbatim.
func (l *List) Render(w io.Writer) error {
	for _, b := range l.Blocks() {
		if _, err := fmt.Fprintf(w, "## %s\n%s\n[delete %d]\n\n", b.Title, b.Content, b.ID); err != nil {
			return err
		}
	}

	return nil
}
