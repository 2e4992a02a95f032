package repository

import (
	"sort"

	"food-distribution-backend/models"
)

// sortSchedules orders by pickup date descending, then pickup time ascending.
func sortSchedules(schedules []models.FoodSchedule) {
	sort.SliceStable(schedules, func(i, j int) bool {
		if schedules[i].PickupDate != schedules[j].PickupDate {
			return schedules[i].PickupDate > schedules[j].PickupDate
		}
		return schedules[i].PickupTime < schedules[j].PickupTime
	})
}
