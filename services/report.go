package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"food-distribution-backend/apperror"
	"food-distribution-backend/dtos"
	"food-distribution-backend/models"
	"food-distribution-backend/policy"
	"food-distribution-backend/repository"
	"food-distribution-backend/session"
	"food-distribution-backend/utils"
)

type ReportService struct {
	store *repository.Store
	now   func() time.Time
}

func (s *ReportService) DashboardStats(ctx context.Context, sess *session.Context) (*dtos.DashboardStats, error) {
	if err := authorize(sess, policy.ActionView, policy.On(policy.KindDashboard)); err != nil {
		return nil, err
	}

	beneficiaries, err := s.store.Beneficiaries.List(ctx, "")
	if err != nil {
		return nil, err
	}
	schedules, err := s.store.Schedules.List(ctx, repository.ScheduleFilter{})
	if err != nil {
		return nil, err
	}
	centers, err := s.store.Centers.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := &dtos.DashboardStats{
		TotalBeneficiaries: int64(len(beneficiaries)),
		TotalSchedules:     int64(len(schedules)),
	}
	for _, b := range beneficiaries {
		switch b.Status {
		case models.BeneficiaryPending:
			stats.Pending++
		case models.BeneficiaryApproved:
			stats.Approved++
		case models.BeneficiaryRejected:
			stats.Rejected++
		}
	}

	today := s.now().Format(utils.DateLayout)
	for _, fs := range schedules {
		if !fs.DistributedStatus {
			continue
		}
		stats.TotalDistributed++
		if fs.PickupDate == today {
			stats.DistributedToday++
		}
	}
	for _, c := range centers {
		if c.Active {
			stats.ActiveCenters++
		}
	}
	return stats, nil
}

// dateBounds resolves a report range to inclusive YYYY-MM-DD bounds. Empty
// bounds are open.
func (s *ReportService) dateBounds(f dtos.ReportFilter) (string, string, error) {
	today := s.now()
	switch strings.ToLower(strings.TrimSpace(f.Range)) {
	case "", dtos.RangeAll:
		return "", "", nil
	case dtos.RangeToday:
		d := today.Format(utils.DateLayout)
		return d, d, nil
	case dtos.RangeWeek:
		return today.AddDate(0, 0, -6).Format(utils.DateLayout), today.Format(utils.DateLayout), nil
	case dtos.RangeCustom:
		for _, b := range []struct{ field, value string }{{"start", f.Start}, {"end", f.End}} {
			if b.value == "" {
				continue
			}
			if _, err := time.Parse(utils.DateLayout, b.value); err != nil {
				return "", "", apperror.Invalid(b.field, "must be a date in YYYY-MM-DD format")
			}
		}
		if f.Start != "" && f.End != "" && f.Start > f.End {
			return "", "", apperror.Invalid("end", "must not be before start")
		}
		return f.Start, f.End, nil
	}
	return "", "", apperror.Invalid("range", "must be one of: all, today, week, custom")
}

// DistributedReport lists handed-out packages, latest pickup date first.
func (s *ReportService) DistributedReport(ctx context.Context, sess *session.Context, f dtos.ReportFilter) ([]dtos.DistributedReportRow, error) {
	if err := authorize(sess, policy.ActionView, policy.On(policy.KindReport)); err != nil {
		return nil, err
	}
	start, end, err := s.dateBounds(f)
	if err != nil {
		return nil, err
	}

	distributed := true
	schedules, err := s.store.Schedules.List(ctx, repository.ScheduleFilter{
		Distributed: &distributed,
		Center:      strings.TrimSpace(f.Center),
	})
	if err != nil {
		return nil, err
	}
	beneficiaries, err := s.store.Beneficiaries.List(ctx, "")
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(beneficiaries))
	for _, b := range beneficiaries {
		names[b.CNIC] = b.Name
	}

	rows := make([]dtos.DistributedReportRow, 0, len(schedules))
	for _, fs := range schedules {
		if (start != "" && fs.PickupDate < start) || (end != "" && fs.PickupDate > end) {
			continue
		}
		rows = append(rows, dtos.DistributedReportRow{
			Token:              fs.Token,
			CNIC:               fs.CNIC,
			BeneficiaryName:    names[fs.CNIC],
			DistributionCenter: fs.DistributionCenter,
			PickupDate:         fs.PickupDate,
			PickupTime:         fs.PickupTime,
			DistributedAt:      fs.DistributedAt,
			DistributedByName:  fs.DistributedByName,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].PickupDate > rows[j].PickupDate
	})
	return rows, nil
}

func (s *ReportService) ExportDistributedReport(ctx context.Context, sess *session.Context, f dtos.ReportFilter) ([]byte, error) {
	rows, err := s.DistributedReport(ctx, sess, f)
	if err != nil {
		return nil, err
	}
	return utils.GenerateDistributedReport(rows)
}
