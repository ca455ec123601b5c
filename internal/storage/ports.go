// Package storage provides persistence for bill snapshots, groups, and
// templates. Callers depend on the ports below; SQLite and in-memory
// adapters implement them.
package storage

import (
	"context"
	"errors"

	"splitinvoice/internal/core"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

type (
	// BillStore persists finished bill snapshots (the history feature).
	BillStore interface {
		SaveBill(ctx context.Context, b core.Bill) error
		GetBill(ctx context.Context, id string) (core.Bill, error)
		// ListBills returns saved bills, newest first.
		ListBills(ctx context.Context) ([]core.Bill, error)
		DeleteBill(ctx context.Context, id string) error
	}

	// GroupStore persists reusable participant lists, keyed by name.
	GroupStore interface {
		SaveGroup(ctx context.Context, g core.Group) error
		GetGroup(ctx context.Context, name string) (core.Group, error)
		ListGroups(ctx context.Context) ([]core.Group, error)
		DeleteGroup(ctx context.Context, name string) error
	}

	// TemplateStore persists bill templates, keyed by name.
	TemplateStore interface {
		SaveTemplate(ctx context.Context, t core.Template) error
		GetTemplate(ctx context.Context, name string) (core.Template, error)
		ListTemplates(ctx context.Context) ([]core.Template, error)
		DeleteTemplate(ctx context.Context, name string) error
	}
)
