package dtos

type CreateBeneficiaryRequest struct {
	CNIC          string `json:"cnic" validate:"cnic"`
	Name          string `json:"name" validate:"notblank"`
	Phone         string `json:"phone" validate:"notblank"`
	Address       string `json:"address" validate:"notblank"`
	FamilyMembers int    `json:"familyMembers" validate:"min=1"`
	IncomeLevel   string `json:"incomeLevel" validate:"income_level"`
}

// UpdateBeneficiaryRequest is a partial patch. CNIC and Status are decoded
// only so that attempts to change them can be rejected.
type UpdateBeneficiaryRequest struct {
	CNIC          *string `json:"cnic,omitempty"`
	Status        *string `json:"status,omitempty"`
	Name          *string `json:"name,omitempty" validate:"omitempty,notblank"`
	Phone         *string `json:"phone,omitempty" validate:"omitempty,notblank"`
	Address       *string `json:"address,omitempty" validate:"omitempty,notblank"`
	FamilyMembers *int    `json:"familyMembers,omitempty" validate:"omitempty,min=1"`
	IncomeLevel   *string `json:"incomeLevel,omitempty" validate:"omitempty,income_level"`
}

func (r UpdateBeneficiaryRequest) Empty() bool {
	return r.Name == nil && r.Phone == nil && r.Address == nil && r.FamilyMembers == nil && r.IncomeLevel == nil
}
