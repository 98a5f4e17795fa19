package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pthm/hxview"
)

// Todo is a single task.
type Todo struct {
	ID      string
	Title   string
	Done    bool
	Created time.Time
}

// Store is an in-memory todo store. It is the application's Updater:
// every message from the page mutates the store and the page is rendered
// again from the new model.
type Store struct {
	mu       sync.Mutex
	todos    []*Todo
	draft    string
	showHelp bool
	nextID   int

	// render is called with the new model after every change.
	render func(model map[string]any)
}

// NewStore creates a new store with sample data.
func NewStore() *Store {
	s := &Store{nextID: 1}
	s.add("Buy groceries")
	s.add("Review PR #123")
	s.add("Write documentation")
	return s
}

func (s *Store) add(title string) {
	title = strings.TrimSpace(title)
	if title == "" {
		return
	}
	s.todos = append(s.todos, &Todo{
		ID:      fmt.Sprintf("todo-%d", s.nextID),
		Title:   title,
		Created: time.Now(),
	})
	s.nextID++
}

func (s *Store) find(id string) int {
	for i, t := range s.todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Update implements hxview.Updater.
func (s *Store) Update(msg hxview.Message) {
	s.mu.Lock()
	event := fmt.Sprint(msg.Event)
	value, _ := msg.Value.(string)

	action, id, _ := strings.Cut(event, ":")
	switch action {
	case "draft":
		s.draft = value
	case "add":
		if value == "" {
			value = s.draft
		}
		s.add(value)
		s.draft = ""
	case "toggle":
		if i := s.find(id); i >= 0 {
			s.todos[i].Done = !s.todos[i].Done
		}
	case "remove":
		if i := s.find(id); i >= 0 {
			s.todos = append(s.todos[:i], s.todos[i+1:]...)
		}
	case "help":
		s.showHelp = !s.showHelp
	default:
		s.mu.Unlock()
		return
	}
	model := s.model()
	s.mu.Unlock()

	if s.render != nil {
		s.render(model)
	}
}

// Model returns the current model.
func (s *Store) Model() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model()
}

func (s *Store) model() map[string]any {
	todos := make([]any, 0, len(s.todos))
	open := 0
	for _, t := range s.todos {
		if !t.Done {
			open++
		}
		todos = append(todos, map[string]any{
			"id":      t.ID,
			"title":   t.Title,
			"done":    t.Done,
			"created": t.Created.UnixMilli(),
		})
	}
	return map[string]any{
		"title":    "Todos",
		"todos":    todos,
		"open":     open,
		"draft":    s.draft,
		"showHelp": s.showHelp,
	}
}
