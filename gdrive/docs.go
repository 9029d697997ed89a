package gdrive

import (
	"context"

	"github.com/pkg/errors"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/option"
)

// Docs appends content to existing Google Docs.
type Docs struct {
	documents *docs.DocumentsService
}

func NewDocs(ctx context.Context, opts ...option.ClientOption) (*Docs, error) {
	svc, err := docs.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "create docs service")
	}
	return &Docs{documents: svc.Documents}, nil
}

// EndIndex is the index just before the body's final newline, where appended
// text goes. An empty body yields 1.
func (d *Docs) EndIndex(ctx context.Context, documentID string) (int, error) {
	doc, err := d.documents.Get(documentID).Fields("body(content(endIndex))").Context(ctx).Do()
	if err != nil {
		return 0, errors.Wrapf(err, "get document %s", documentID)
	}
	if doc.Body == nil || len(doc.Body.Content) == 0 {
		return 1, nil
	}
	last := doc.Body.Content[len(doc.Body.Content)-1]
	if last.EndIndex == 0 {
		return 1, nil
	}
	return int(last.EndIndex) - 1, nil
}

// BatchUpdate applies requests in one call.
func (d *Docs) BatchUpdate(ctx context.Context, documentID string, requests []*docs.Request) error {
	_, err := d.documents.BatchUpdate(documentID, &docs.BatchUpdateDocumentRequest{Requests: requests}).
		Context(ctx).
		Do()
	return errors.Wrapf(err, "batch update %s", documentID)
}
