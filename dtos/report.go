package dtos

import "time"

const (
	RangeAll    = "all"
	RangeToday  = "today"
	RangeWeek   = "week"
	RangeCustom = "custom"
)

// ReportFilter selects distributed schedules. Start and End are inclusive
// YYYY-MM-DD dates and only apply to the custom range.
type ReportFilter struct {
	Range  string `form:"range" json:"range"`
	Center string `form:"center" json:"center"`
	Start  string `form:"start" json:"start"`
	End    string `form:"end" json:"end"`
}

type DistributedReportRow struct {
	Token              string     `json:"token"`
	CNIC               string     `json:"cnic"`
	BeneficiaryName    string     `json:"beneficiaryName"`
	DistributionCenter string     `json:"distributionCenter"`
	PickupDate         string     `json:"pickupDate"`
	PickupTime         string     `json:"pickupTime"`
	DistributedAt      *time.Time `json:"distributedAt"`
	DistributedByName  string     `json:"distributedByName"`
}

type DashboardStats struct {
	TotalBeneficiaries int64 `json:"totalBeneficiaries"`
	Pending            int64 `json:"pending"`
	Approved           int64 `json:"approved"`
	Rejected           int64 `json:"rejected"`
	TotalSchedules     int64 `json:"totalSchedules"`
	DistributedToday   int64 `json:"distributedToday"`
	TotalDistributed   int64 `json:"totalDistributed"`
	ActiveCenters      int64 `json:"activeCenters"`
}
