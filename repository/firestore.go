package repository

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// NewFirestoreStore backs every collection with a Firestore collection.
func NewFirestoreStore(client *firestore.Client) *Store {
	return &Store{
		Principals:    &FirestorePrincipalStore{Client: client},
		Beneficiaries: &FirestoreBeneficiaryStore{Client: client},
		Centers:       &FirestoreCenterStore{Client: client},
		Schedules:     &FirestoreScheduleStore{Client: client},
	}
}

func firestoreErr(err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return ErrNotFound
	case codes.AlreadyExists:
		return ErrAlreadyExists
	case codes.FailedPrecondition, codes.Aborted:
		return ErrConflict
	}
	return err
}

func getDoc(ctx context.Context, ref *firestore.DocumentRef, v interface{}) (*firestore.DocumentSnapshot, error) {
	snap, err := ref.Get(ctx)
	if err != nil {
		return nil, firestoreErr(err)
	}
	if err := snap.DataTo(v); err != nil {
		return nil, err
	}
	return snap, nil
}

// firstDoc decodes the first result of q into v.
func firstDoc(ctx context.Context, q firestore.Query, v interface{}) error {
	iter := q.Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return ErrNotFound
	}
	if err != nil {
		return firestoreErr(err)
	}
	return snap.DataTo(v)
}

// decodeAll passes every document of q to decode.
func decodeAll(ctx context.Context, q firestore.Query, decode func(*firestore.DocumentSnapshot) error) error {
	iter := q.Documents(ctx)
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return firestoreErr(err)
		}
		if err := decode(snap); err != nil {
			return err
		}
	}
}

func stamp(t *time.Time) {
	if t.IsZero() {
		*t = time.Now().UTC()
	}
}
