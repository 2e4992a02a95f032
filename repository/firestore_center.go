package repository

import (
	"context"

	"food-distribution-backend/models"

	"cloud.google.com/go/firestore"
)

type FirestoreCenterStore struct {
	Client *firestore.Client
}

func (s *FirestoreCenterStore) doc(id string) *firestore.DocumentRef {
	return s.Client.Collection(CollectionCenters).Doc(id)
}

func (s *FirestoreCenterStore) Create(ctx context.Context, c *models.DistributionCenter) error {
	stamp(&c.CreatedAt)
	stamp(&c.UpdatedAt)
	if _, err := s.doc(c.ID).Create(ctx, c); err != nil {
		return firestoreErr(err)
	}
	return nil
}

func (s *FirestoreCenterStore) Get(ctx context.Context, id string) (*models.DistributionCenter, error) {
	var c models.DistributionCenter
	if _, err := getDoc(ctx, s.doc(id), &c); err != nil {
		return nil, err
	}
	c.ID = id
	return &c, nil
}

func (s *FirestoreCenterStore) FindByName(ctx context.Context, name string) (*models.DistributionCenter, error) {
	var c models.DistributionCenter
	if err := firstDoc(ctx, s.Client.Collection(CollectionCenters).Where("name", "==", name), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *FirestoreCenterStore) List(ctx context.Context) ([]models.DistributionCenter, error) {
	var centers []models.DistributionCenter
	q := s.Client.Collection(CollectionCenters).OrderBy("name", firestore.Asc)
	err := decodeAll(ctx, q, func(snap *firestore.DocumentSnapshot) error {
		var c models.DistributionCenter
		if err := snap.DataTo(&c); err != nil {
			return err
		}
		c.ID = snap.Ref.ID
		centers = append(centers, c)
		return nil
	})
	return centers, err
}

func (s *FirestoreCenterStore) Save(ctx context.Context, c *models.DistributionCenter) error {
	_, err := s.doc(c.ID).Update(ctx, []firestore.Update{
		{Path: "name", Value: c.Name},
		{Path: "address", Value: c.Address},
		{Path: "active", Value: c.Active},
		{Path: "updatedAt", Value: c.UpdatedAt},
	})
	if err != nil {
		return firestoreErr(err)
	}
	return nil
}

func (s *FirestoreCenterStore) Delete(ctx context.Context, id string) error {
	if _, err := s.doc(id).Delete(ctx, firestore.Exists); err != nil {
		return firestoreErr(err)
	}
	return nil
}
