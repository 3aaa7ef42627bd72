package feature

import (
	"context"

	"github.com/reglet-dev/reglet-config-sdk/configstore"
)

// Codec converts between raw collection entries and typed items.
// Implementations must be pure and satisfy FromEntry(ToEntry(x)) == x.
type Codec[T any] interface {
	FromEntry(entry configstore.Entry) (T, error)
	ToEntry(item T) configstore.Entry

	// Key returns the item's identity within the collection.
	Key(item T) string
}

// CreateRequest carries the defaults a Creator starts from.
type CreateRequest struct {
	Allowed bool
}

// Creator collects the values of a new entry, typically through a dialog.
type Creator[T any] interface {
	// Create returns ok=false when the user cancelled.
	Create(ctx context.Context, req CreateRequest) (item T, ok bool, err error)
}

// Response is the answer to a confirmation prompt.
type Response int

const (
	ResponseCancel Response = iota
	ResponseYes
	ResponseNo
)

func (r Response) String() string {
	switch r {
	case ResponseYes:
		return "yes"
	case ResponseNo:
		return "no"
	default:
		return "cancel"
	}
}

// Confirmer asks the user a yes/no/cancel question.
type Confirmer interface {
	Confirm(ctx context.Context, title, message string) (Response, error)
}

// HelpLauncher opens a help resource. Open returns once the request is
// dispatched; it does not wait for the resource to be shown.
type HelpLauncher interface {
	Open(ctx context.Context, url string) error
}
