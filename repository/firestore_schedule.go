package repository

import (
	"context"
	"errors"
	"time"

	"food-distribution-backend/models"

	"cloud.google.com/go/firestore"
)

type FirestoreScheduleStore struct {
	Client *firestore.Client
}

func (s *FirestoreScheduleStore) collection() *firestore.CollectionRef {
	return s.Client.Collection(CollectionSchedules)
}

// Create writes the schedule under its id inside a transaction that first
// checks the CNIC has no schedule. Firestore has no unique index on token;
// the service checks each candidate token before calling Create.
func (s *FirestoreScheduleStore) Create(ctx context.Context, fs *models.FoodSchedule) error {
	stamp(&fs.CreatedAt)
	err := s.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := tx.Documents(s.collection().Where("cnic", "==", fs.CNIC).Limit(1)).GetAll()
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return ErrAlreadyExists
		}
		return tx.Create(s.collection().Doc(fs.ID), fs)
	})
	if errors.Is(err, ErrAlreadyExists) {
		return ErrAlreadyExists
	}
	if err != nil {
		return firestoreErr(err)
	}
	return nil
}

func (s *FirestoreScheduleStore) Get(ctx context.Context, id string) (*models.FoodSchedule, error) {
	var fs models.FoodSchedule
	if _, err := getDoc(ctx, s.collection().Doc(id), &fs); err != nil {
		return nil, err
	}
	fs.ID = id
	return &fs, nil
}

func (s *FirestoreScheduleStore) FindByToken(ctx context.Context, token string) (*models.FoodSchedule, error) {
	return s.first(ctx, "token", token)
}

func (s *FirestoreScheduleStore) FindByCNIC(ctx context.Context, cnic string) (*models.FoodSchedule, error) {
	return s.first(ctx, "cnic", cnic)
}

func (s *FirestoreScheduleStore) first(ctx context.Context, field, value string) (*models.FoodSchedule, error) {
	var fs models.FoodSchedule
	if err := firstDoc(ctx, s.collection().Where(field, "==", value), &fs); err != nil {
		return nil, err
	}
	return &fs, nil
}

func (s *FirestoreScheduleStore) TokenExists(ctx context.Context, token string) (bool, error) {
	_, err := s.FindByToken(ctx, token)
	if err == nil {
		return true, nil
	}
	if IsNotFound(err) {
		return false, nil
	}
	return false, err
}

func (s *FirestoreScheduleStore) List(ctx context.Context, f ScheduleFilter) ([]models.FoodSchedule, error) {
	q := s.collection().Query
	if f.Distributed != nil {
		q = q.Where("distributedStatus", "==", *f.Distributed)
	}
	if f.Center != "" {
		q = q.Where("distributionCenter", "==", f.Center)
	}
	if f.Distributed == nil && f.Center == "" {
		q = q.OrderBy("pickupDate", firestore.Desc)
	}

	var schedules []models.FoodSchedule
	err := decodeAll(ctx, q, func(snap *firestore.DocumentSnapshot) error {
		var fs models.FoodSchedule
		if err := snap.DataTo(&fs); err != nil {
			return err
		}
		fs.ID = snap.Ref.ID
		schedules = append(schedules, fs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortSchedules(schedules)
	return schedules, nil
}

func (s *FirestoreScheduleStore) CountByCenter(ctx context.Context, center string) (int64, error) {
	var count int64
	err := decodeAll(ctx, s.collection().Where("distributionCenter", "==", center).Select(), func(*firestore.DocumentSnapshot) error {
		count++
		return nil
	})
	return count, err
}

func (s *FirestoreScheduleStore) MarkDistributed(ctx context.Context, id string, at time.Time, by, byName string) (*models.FoodSchedule, error) {
	var current models.FoodSchedule
	snap, err := getDoc(ctx, s.collection().Doc(id), &current)
	if err != nil {
		return nil, err
	}
	if current.DistributedStatus {
		return nil, ErrConflict
	}

	_, err = s.collection().Doc(id).Update(ctx, []firestore.Update{
		{Path: "distributedStatus", Value: true},
		{Path: "distributedAt", Value: at},
		{Path: "distributedBy", Value: by},
		{Path: "distributedByName", Value: byName},
	}, firestore.LastUpdateTime(snap.UpdateTime))
	if err != nil {
		return nil, firestoreErr(err)
	}
	return s.Get(ctx, id)
}
