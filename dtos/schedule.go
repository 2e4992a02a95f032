package dtos

type CreateScheduleRequest struct {
	CNIC               string `json:"cnic" validate:"cnic"`
	PickupDate         string `json:"pickupDate" validate:"pickup_date"`
	PickupTime         string `json:"pickupTime" validate:"pickup_time"`
	DistributionCenter string `json:"distributionCenter" validate:"notblank"`
}
