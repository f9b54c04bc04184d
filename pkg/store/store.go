// Package store persists diagnostic procedures.
//
// A procedure is identity plus tree: the id the console routes by, a display
// name, and the step tree the editor produces. Three backends implement the
// same [Store] interface:
//   - memory: in-process map for development and tests
//   - file: one JSON document per procedure in a directory, for single-node
//     deployments and the CLI
//   - mongo: a MongoDB collection for the shared console deployment
//
// # Usage
//
// Create a store and move procedures through it:
//
//	st, err := store.NewFileStore("")
//	if err != nil {
//		return err
//	}
//	defer st.Close()
//
//	err = st.Put(ctx, &store.Procedure{
//		ID:   "payment-timeouts",
//		Name: "Payment gateway timeouts",
//		Tree: tree,
//	})
//
//	proc, err := st.Get(ctx, "payment-timeouts")
//	if errors.Is(err, store.ErrNotFound) {
//		// no such procedure
//	}
//
// Whole trees are written atomically on every Put; there is no partial or
// per-step update. Two concurrent editors of the same procedure are not
// coordinated - last write wins.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/opsdeck/sopgraph/pkg/step"
)

// ErrNotFound is returned when a procedure does not exist.
var ErrNotFound = errors.New("procedure not found")

// Procedure is a stored diagnostic procedure.
type Procedure struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Tree      step.Step `json:"tree" bson:"tree"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Clone returns a deep copy of the procedure.
func (p *Procedure) Clone() *Procedure {
	out := *p
	out.Tree = p.Tree.Clone()
	return &out
}

// Store is the interface for procedure storage backends.
// All implementations are safe for concurrent use.
type Store interface {
	// Get retrieves a procedure by id.
	// Returns ErrNotFound if no procedure has that id.
	Get(ctx context.Context, id string) (*Procedure, error)

	// Put inserts or replaces the procedure under its id. UpdatedAt is set
	// to the current time; a zero CreatedAt is set as well, so callers that
	// replace an existing procedure pass the original CreatedAt through.
	Put(ctx context.Context, p *Procedure) error

	// List returns all procedures sorted by id.
	List(ctx context.Context) ([]*Procedure, error)

	// Delete removes a procedure.
	// Returns ErrNotFound if no procedure has that id.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

// stamp normalizes the procedure's timestamps for a write.
func stamp(p *Procedure) {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}
