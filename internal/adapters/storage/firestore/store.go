package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloGalante/farum-router/internal/domain"
)

const utterancesCollection = "utterances"

type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore-backed utterance log.
// Uses the project passed (FARUM_GCP_PROJECT).
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) utterancesCol() *firestore.CollectionRef {
	return s.client.Collection(utterancesCollection)
}

func (s *Store) utteranceDoc(id domain.EntryID) *firestore.DocumentRef {
	return s.utterancesCol().Doc(string(id))
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type utteranceDoc struct {
	RequestID  string    `firestore:"request_id"`
	Text       string    `firestore:"text"`
	ReceivedAt time.Time `firestore:"received_at"`
}

func toDoc(e *domain.UtteranceEntry) utteranceDoc {
	return utteranceDoc{
		RequestID:  string(e.RequestID),
		Text:       e.Text,
		ReceivedAt: e.ReceivedAt.UTC(),
	}
}

func fromDoc(id string, doc utteranceDoc) *domain.UtteranceEntry {
	return &domain.UtteranceEntry{
		ID:         domain.EntryID(id),
		RequestID:  domain.RequestID(doc.RequestID),
		Text:       doc.Text,
		ReceivedAt: doc.ReceivedAt,
	}
}

// ─────────────────────────────────────────
// UtteranceLog implementation
// ─────────────────────────────────────────

func (s *Store) Append(ctx context.Context, entry *domain.UtteranceEntry) error {
	if entry == nil {
		return nil
	}
	if entry.ID == "" {
		return fmt.Errorf("firestore Append: entry id is required")
	}

	_, err := s.utteranceDoc(entry.ID).Create(ctx, toDoc(entry))
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("utterance %s already recorded", entry.ID)
		}
		return fmt.Errorf("firestore Append: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, oldest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*domain.UtteranceEntry, error) {
	q := s.utterancesCol().OrderBy("received_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var newestFirst []*domain.UtteranceEntry
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore Recent: %w", err)
		}

		var doc utteranceDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode utteranceDoc: %w", err)
		}
		newestFirst = append(newestFirst, fromDoc(snap.Ref.ID, doc))
	}

	out := make([]*domain.UtteranceEntry, 0, len(newestFirst))
	for i := len(newestFirst) - 1; i >= 0; i-- {
		out = append(out, newestFirst[i])
	}
	return out, nil
}
