// Package memory provides in-memory implementations of the storage ports,
// used for tests and for running without a database.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"splitinvoice/internal/core"
	"splitinvoice/internal/storage"
)

type Store struct {
	mu        sync.RWMutex
	bills     map[string]core.Bill
	groups    map[string]core.Group
	templates map[string]core.Template
}

var (
	_ storage.BillStore     = (*Store)(nil)
	_ storage.GroupStore    = (*Store)(nil)
	_ storage.TemplateStore = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{
		bills:     make(map[string]core.Bill),
		groups:    make(map[string]core.Group),
		templates: make(map[string]core.Template),
	}
}

func (s *Store) SaveBill(_ context.Context, b core.Bill) error {
	if err := b.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bills[b.ID] = b
	return nil
}

func (s *Store) GetBill(_ context.Context, id string) (core.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bills[id]
	if !ok {
		return core.Bill{}, fmt.Errorf("bill %s: %w", id, storage.ErrNotFound)
	}
	return b, nil
}

func (s *Store) ListBills(_ context.Context) ([]core.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bills := make([]core.Bill, 0, len(s.bills))
	for _, b := range s.bills {
		bills = append(bills, b)
	}
	sort.Slice(bills, func(i, j int) bool {
		if !bills[i].Date.Equal(bills[j].Date) {
			return bills[i].Date.After(bills[j].Date)
		}
		return bills[i].ID > bills[j].ID
	})
	return bills, nil
}

func (s *Store) DeleteBill(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bills[id]; !ok {
		return fmt.Errorf("bill %s: %w", id, storage.ErrNotFound)
	}
	delete(s.bills, id)
	return nil
}

func (s *Store) SaveGroup(_ context.Context, g core.Group) error {
	if err := g.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[g.Name] = g
	return nil
}

func (s *Store) GetGroup(_ context.Context, name string) (core.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[name]
	if !ok {
		return core.Group{}, fmt.Errorf("group %s: %w", name, storage.ErrNotFound)
	}
	return g, nil
}

func (s *Store) ListGroups(_ context.Context) ([]core.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	groups := make([]core.Group, 0, len(s.groups))
	for _, g := range s.groups {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups, nil
}

func (s *Store) DeleteGroup(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[name]; !ok {
		return fmt.Errorf("group %s: %w", name, storage.ErrNotFound)
	}
	delete(s.groups, name)
	return nil
}

func (s *Store) SaveTemplate(_ context.Context, t core.Template) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[t.Name] = t
	return nil
}

func (s *Store) GetTemplate(_ context.Context, name string) (core.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.templates[name]
	if !ok {
		return core.Template{}, fmt.Errorf("template %s: %w", name, storage.ErrNotFound)
	}
	return t, nil
}

func (s *Store) ListTemplates(_ context.Context) ([]core.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	templates := make([]core.Template, 0, len(s.templates))
	for _, t := range s.templates {
		templates = append(templates, t)
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].Name < templates[j].Name })
	return templates, nil
}

func (s *Store) DeleteTemplate(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[name]; !ok {
		return fmt.Errorf("template %s: %w", name, storage.ErrNotFound)
	}
	delete(s.templates, name)
	return nil
}
