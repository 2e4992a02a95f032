package repository

import (
	"context"
	"sort"
	"time"

	"food-distribution-backend/models"

	"cloud.google.com/go/firestore"
)

type FirestoreBeneficiaryStore struct {
	Client *firestore.Client
}

func (s *FirestoreBeneficiaryStore) doc(cnic string) *firestore.DocumentRef {
	return s.Client.Collection(CollectionBeneficiaries).Doc(cnic)
}

func (s *FirestoreBeneficiaryStore) Create(ctx context.Context, b *models.Beneficiary) error {
	stamp(&b.CreatedAt)
	stamp(&b.UpdatedAt)
	if _, err := s.doc(b.CNIC).Create(ctx, b); err != nil {
		return firestoreErr(err)
	}
	return nil
}

func (s *FirestoreBeneficiaryStore) Get(ctx context.Context, cnic string) (*models.Beneficiary, error) {
	var b models.Beneficiary
	if _, err := getDoc(ctx, s.doc(cnic), &b); err != nil {
		return nil, err
	}
	b.CNIC = cnic
	return &b, nil
}

func (s *FirestoreBeneficiaryStore) List(ctx context.Context, st models.BeneficiaryStatus) ([]models.Beneficiary, error) {
	q := s.Client.Collection(CollectionBeneficiaries).Query
	if st != "" {
		q = q.Where("status", "==", string(st))
	}

	var beneficiaries []models.Beneficiary
	err := decodeAll(ctx, q, func(snap *firestore.DocumentSnapshot) error {
		var b models.Beneficiary
		if err := snap.DataTo(&b); err != nil {
			return err
		}
		b.CNIC = snap.Ref.ID
		beneficiaries = append(beneficiaries, b)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Sorted here so the status filter needs no composite index.
	sort.SliceStable(beneficiaries, func(i, j int) bool {
		return beneficiaries[i].CreatedAt.After(beneficiaries[j].CreatedAt)
	})
	return beneficiaries, nil
}

func (s *FirestoreBeneficiaryStore) Update(ctx context.Context, cnic string, patch BeneficiaryPatch) (*models.Beneficiary, error) {
	updates := []firestore.Update{{Path: "updatedAt", Value: time.Now().UTC()}}
	if patch.Name != nil {
		updates = append(updates, firestore.Update{Path: "name", Value: *patch.Name})
	}
	if patch.Phone != nil {
		updates = append(updates, firestore.Update{Path: "phone", Value: *patch.Phone})
	}
	if patch.Address != nil {
		updates = append(updates, firestore.Update{Path: "address", Value: *patch.Address})
	}
	if patch.FamilyMembers != nil {
		updates = append(updates, firestore.Update{Path: "familyMembers", Value: *patch.FamilyMembers})
	}
	if patch.IncomeLevel != nil {
		updates = append(updates, firestore.Update{Path: "incomeLevel", Value: string(*patch.IncomeLevel)})
	}

	if _, err := s.doc(cnic).Update(ctx, updates); err != nil {
		return nil, firestoreErr(err)
	}
	return s.Get(ctx, cnic)
}

// Finalize reads the record and writes the transition with a last-update-time
// precondition, so a concurrent finalize makes this one fail with ErrConflict.
func (s *FirestoreBeneficiaryStore) Finalize(ctx context.Context, cnic string, st models.BeneficiaryStatus, at time.Time, by string) (*models.Beneficiary, error) {
	var current models.Beneficiary
	snap, err := getDoc(ctx, s.doc(cnic), &current)
	if err != nil {
		return nil, err
	}
	if current.IsFinalized() {
		return nil, ErrConflict
	}

	_, err = s.doc(cnic).Update(ctx, []firestore.Update{
		{Path: "status", Value: string(st)},
		{Path: "statusFinalized", Value: true},
		{Path: "statusUpdatedAt", Value: at},
		{Path: "statusUpdatedBy", Value: by},
		{Path: "updatedAt", Value: at},
	}, firestore.LastUpdateTime(snap.UpdateTime))
	if err != nil {
		return nil, firestoreErr(err)
	}
	return s.Get(ctx, cnic)
}
