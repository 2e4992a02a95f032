package repository

import (
	"context"
	"strings"
	"time"

	"food-distribution-backend/models"

	"cloud.google.com/go/firestore"
)

type FirestorePrincipalStore struct {
	Client *firestore.Client
}

func (s *FirestorePrincipalStore) doc(id string) *firestore.DocumentRef {
	return s.Client.Collection(CollectionPrincipals).Doc(id)
}

func (s *FirestorePrincipalStore) Create(ctx context.Context, p *models.Principal) error {
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	stamp(&p.CreatedAt)
	stamp(&p.UpdatedAt)
	if _, err := s.doc(p.ID).Create(ctx, p); err != nil {
		return firestoreErr(err)
	}
	return nil
}

func (s *FirestorePrincipalStore) Get(ctx context.Context, id string) (*models.Principal, error) {
	var p models.Principal
	if _, err := getDoc(ctx, s.doc(id), &p); err != nil {
		return nil, err
	}
	p.ID = id
	return &p, nil
}

func (s *FirestorePrincipalStore) FindByEmail(ctx context.Context, email string) (*models.Principal, error) {
	var p models.Principal
	q := s.Client.Collection(CollectionPrincipals).Where("email", "==", strings.ToLower(strings.TrimSpace(email)))
	if err := firstDoc(ctx, q, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *FirestorePrincipalStore) List(ctx context.Context) ([]models.Principal, error) {
	var principals []models.Principal
	q := s.Client.Collection(CollectionPrincipals).OrderBy("createdAt", firestore.Desc)
	err := decodeAll(ctx, q, func(snap *firestore.DocumentSnapshot) error {
		var p models.Principal
		if err := snap.DataTo(&p); err != nil {
			return err
		}
		p.ID = snap.Ref.ID
		principals = append(principals, p)
		return nil
	})
	return principals, err
}

func (s *FirestorePrincipalStore) Update(ctx context.Context, id string, u PrincipalUpdate) (*models.Principal, error) {
	updates := []firestore.Update{{Path: "updatedAt", Value: time.Now().UTC()}}
	if u.Name != nil {
		updates = append(updates, firestore.Update{Path: "name", Value: *u.Name})
	}
	if u.Role != nil {
		updates = append(updates, firestore.Update{Path: "role", Value: string(*u.Role)})
	}
	if u.Status != nil {
		updates = append(updates, firestore.Update{Path: "status", Value: string(*u.Status)})
	}
	if u.CanCreateBeneficiaries != nil {
		updates = append(updates, firestore.Update{Path: "canCreateBeneficiaries", Value: *u.CanCreateBeneficiaries})
	}

	if _, err := s.doc(id).Update(ctx, updates); err != nil {
		return nil, firestoreErr(err)
	}
	return s.Get(ctx, id)
}

func (s *FirestorePrincipalStore) Delete(ctx context.Context, id string) error {
	if _, err := s.doc(id).Delete(ctx, firestore.Exists); err != nil {
		return firestoreErr(err)
	}
	return nil
}
