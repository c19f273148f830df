package post

import (
	"errors"
	"strings"
	"sync"

	"github.com/SergeyParamoshkin/postsclient/internal/model"
)

var ErrNotFound = errors.New("post not found")

// Fixtures are the posts a fresh mock backend starts with.
func Fixtures() []*model.Post {
	return []*model.Post{
		{ID: 1, Title: "First post", Content: "This is the first post."},
		{ID: 2, Title: "Second post", Content: "This is the second post."},
	}
}

// Store is an in-memory post table. New ids are one past the largest id
// present.
type Store struct {
	mutex sync.RWMutex
	posts []*model.Post
}

func NewStore(posts ...*model.Post) *Store {
	return &Store{posts: posts}
}

func clone(p *model.Post) *model.Post {
	cp := *p

	return &cp
}

func (s *Store) List() []*model.Post {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	list := make([]*model.Post, 0, len(s.posts))
	for _, p := range s.posts {
		list = append(list, clone(p))
	}

	return list
}

func (s *Store) New(title, content string) *model.Post {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var maxID int64
	for _, p := range s.posts {
		if p.ID > maxID {
			maxID = p.ID
		}
	}

	p := &model.Post{ID: maxID + 1, Title: title, Content: content}
	s.posts = append(s.posts, p)

	return clone(p)
}

func (s *Store) Get(id int64) (*model.Post, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, p := range s.posts {
		if p.ID == id {
			return clone(p), nil
		}
	}

	return nil, ErrNotFound
}

// Update overwrites the fields that are not nil.
func (s *Store) Update(id int64, title, content *string) (*model.Post, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, p := range s.posts {
		if p.ID == id {
			if title != nil {
				p.Title = *title
			}
			if content != nil {
				p.Content = *content
			}

			return clone(p), nil
		}
	}

	return nil, ErrNotFound
}

func (s *Store) Remove(id int64) (*model.Post, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i, p := range s.posts {
		if p.ID == id {
			s.posts = append(s.posts[:i:i], s.posts[i+1:]...)

			return p, nil
		}
	}

	return nil, ErrNotFound
}

// Search matches posts whose title contains the title term or whose content
// contains the content term, ignoring case. Empty terms are skipped; with no
// terms at all every post matches.
func (s *Store) Search(q model.SearchQuery) []*model.Post {
	title := strings.ToLower(q.Title)
	content := strings.ToLower(q.Content)

	var found []*model.Post
	for _, p := range s.List() {
		switch {
		case title == "" && content == "":
			found = append(found, p)
		case title != "" && strings.Contains(strings.ToLower(p.Title), title):
			found = append(found, p)
		case content != "" && strings.Contains(strings.ToLower(p.Content), content):
			found = append(found, p)
		}
	}

	return found
}
