package services

import (
	"math"
	"time"

	"github.com/enna-dta/incidentdb/internal/models"
	"gorm.io/gorm"
)

// IncidentStats is the dashboard aggregate. Software incidents have no
// downtime column, so every downtime figure is hardware-only.
type IncidentStats struct {
	TotalIncidents                int64  `json:"total_incidents"`
	HardwareIncidents             int64  `json:"hardware_incidents"`
	SoftwareIncidents             int64  `json:"software_incidents"`
	HardwareDowntimeMinutes       int64  `json:"hardware_downtime_minutes"`
	HardwareAvgDowntimeMinutes    *int64 `json:"hardware_avg_downtime_minutes"`
	AverageDowntimeMinutes        int64  `json:"average_downtime_minutes"`
	HardwareIncidentsWithDowntime int64  `json:"hardware_incidents_with_downtime"`
	HardwareDowntimePercentage    int64  `json:"hardware_downtime_percentage"`
	HardwareLast7Days             int64  `json:"hardware_last_7_days"`
	HardwareLast30Days            int64  `json:"hardware_last_30_days"`
	SoftwareLast7Days             int64  `json:"software_last_7_days"`
	SoftwareLast30Days            int64  `json:"software_last_30_days"`
}

// ComputeStats aggregates incident counters at request time. The 7/30-day
// windows are calendar-day windows anchored to now; nothing here is cached.
func ComputeStats(db *gorm.DB, now time.Time) (*IncidentStats, error) {
	stats := &IncidentStats{}

	if err := db.Model(&models.HardwareIncident{}).Count(&stats.HardwareIncidents).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.SoftwareIncident{}).Count(&stats.SoftwareIncidents).Error; err != nil {
		return nil, err
	}
	stats.TotalIncidents = stats.HardwareIncidents + stats.SoftwareIncidents

	var totalDowntime struct {
		Total int64
	}
	if err := db.Model(&models.HardwareIncident{}).
		Select("COALESCE(SUM(duree_arret), 0) AS total").
		Where("duree_arret > 0").
		Scan(&totalDowntime).Error; err != nil {
		return nil, err
	}
	stats.HardwareDowntimeMinutes = totalDowntime.Total

	if err := db.Model(&models.HardwareIncident{}).
		Where("duree_arret > 0").
		Count(&stats.HardwareIncidentsWithDowntime).Error; err != nil {
		return nil, err
	}

	// Average over incidents that actually recorded downtime; null when none.
	if stats.HardwareIncidentsWithDowntime > 0 {
		avg := int64(math.Round(float64(stats.HardwareDowntimeMinutes) / float64(stats.HardwareIncidentsWithDowntime)))
		stats.HardwareAvgDowntimeMinutes = &avg
	}

	// Average spread over every incident, hardware and software alike.
	if stats.TotalIncidents > 0 {
		stats.AverageDowntimeMinutes = int64(math.Round(float64(stats.HardwareDowntimeMinutes) / float64(stats.TotalIncidents)))
	}

	if stats.HardwareIncidents > 0 {
		stats.HardwareDowntimePercentage = int64(math.Round(float64(stats.HardwareIncidentsWithDowntime) / float64(stats.HardwareIncidents) * 100))
	}

	now = now.UTC()
	sevenDaysAgo := now.AddDate(0, 0, -7).Format("2006-01-02")
	thirtyDaysAgo := now.AddDate(0, 0, -30).Format("2006-01-02")

	if err := db.Model(&models.HardwareIncident{}).
		Where("date >= ?", sevenDaysAgo).
		Count(&stats.HardwareLast7Days).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.HardwareIncident{}).
		Where("date >= ?", thirtyDaysAgo).
		Count(&stats.HardwareLast30Days).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.SoftwareIncident{}).
		Where("date >= ?", sevenDaysAgo).
		Count(&stats.SoftwareLast7Days).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.SoftwareIncident{}).
		Where("date >= ?", thirtyDaysAgo).
		Count(&stats.SoftwareLast30Days).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
