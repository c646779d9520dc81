package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloGalante/studybuddy/internal/domain"
)

// Store keeps one client's state under clients/{clientID}/state/{key}.
type Store struct {
	client   *firestore.Client
	clientID string
	now      func() time.Time
}

// NewStore creates a Firestore store.
// Uses the project passed (STUDYBUDDY_GCP_PROJECT).
func NewStore(ctx context.Context, projectID, clientID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}
	if clientID == "" {
		return nil, fmt.Errorf("clientID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client, clientID: clientID, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) stateCol() *firestore.CollectionRef {
	return s.client.Collection("clients").Doc(s.clientID).Collection("state")
}

func (s *Store) stateDoc(key string) *firestore.DocumentRef {
	return s.stateCol().Doc(key)
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type stateDoc struct {
	Value     string    `firestore:"value"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

// ─────────────────────────────────────────
// StateStore implementation
// ─────────────────────────────────────────

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	snap, err := s.stateDoc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", domain.ErrKeyNotFound
		}
		return "", fmt.Errorf("firestore Get %s: %w", key, err)
	}

	var doc stateDoc
	if err := snap.DataTo(&doc); err != nil {
		return "", fmt.Errorf("firestore Get %s decode: %w", key, err)
	}
	return doc.Value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	doc := stateDoc{
		Value:     value,
		UpdatedAt: s.now(),
	}

	if _, err := s.stateDoc(key).Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore Set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	// deleting a missing document is not an error in Firestore
	if _, err := s.stateDoc(key).Delete(ctx); err != nil {
		return fmt.Errorf("firestore Delete %s: %w", key, err)
	}
	return nil
}

// Keys lists the stored keys in document id order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	iter := s.stateCol().Documents(ctx)
	defer iter.Stop()

	var out []string
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore Keys: %w", err)
		}
		out = append(out, snap.Ref.ID)
	}
	return out, nil
}
