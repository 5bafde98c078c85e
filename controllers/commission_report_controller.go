package controllers

import (
	"time"

	"github.com/gabrielmaialva33/giftcard-platform-api/config"
	"github.com/gabrielmaialva33/giftcard-platform-api/middleware"
	"github.com/gabrielmaialva33/giftcard-platform-api/models"
	"github.com/gabrielmaialva33/giftcard-platform-api/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// reportWindow resolves the period query into a concrete date range
func reportWindow(c *gin.Context) (time.Time, time.Time, bool) {
	period := c.DefaultQuery("period", "day")
	now := time.Now()
	var startDate, endDate time.Time

	switch period {
	case "day":
		startDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		endDate = time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999999999, now.Location())
	case "week":
		endDate = time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999999999, now.Location())
		startDate = endDate.AddDate(0, 0, -6)
		startDate = time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, startDate.Location())
	case "month":
		startDate = now.AddDate(0, 0, -30).Truncate(24 * time.Hour)
		endDate = now.Add(24 * time.Hour)
	case "custom":
		startDateStr := c.Query("start_date")
		endDateStr := c.Query("end_date")
		if startDateStr == "" || endDateStr == "" {
			utils.BadRequest(c, "Missing date range", "Both start_date and end_date are required for custom period")
			return startDate, endDate, false
		}

		var err error
		startDate, err = time.Parse("2006-01-02", startDateStr)
		if err != nil {
			utils.BadRequest(c, "Invalid start date", "Start date must be in YYYY-MM-DD format")
			return startDate, endDate, false
		}
		endDate, err = time.Parse("2006-01-02", endDateStr)
		if err != nil {
			utils.BadRequest(c, "Invalid end date", "End date must be in YYYY-MM-DD format")
			return startDate, endDate, false
		}

		// Include the entire end date.
		endDate = endDate.Add(24 * time.Hour)
		if endDate.Before(startDate) {
			utils.BadRequest(c, "Invalid date range", "End date must be after start date")
			return startDate, endDate, false
		}
		if endDate.Sub(startDate) > 90*24*time.Hour {
			utils.BadRequest(c, "Invalid date range", "Date range cannot exceed 90 days")
			return startDate, endDate, false
		}
	default:
		utils.BadRequest(c, "Invalid period", "Period must be day, week, month, or custom")
		return startDate, endDate, false
	}

	return startDate, endDate, true
}

// loadCommissionsForReport fetches the commissions in the window, scoped to
// the caller's franchise when the caller is a franchise user
func loadCommissionsForReport(c *gin.Context, startDate, endDate time.Time) ([]models.Commission, bool) {
	query := config.DB.Where("created_at >= ? AND created_at <= ?", startDate, endDate).
		Order("created_at DESC")

	user, _ := middleware.CurrentUser(c)
	if user.Role == models.RoleFranchise {
		if user.FranchiseID == nil {
			utils.Forbidden(c, utils.ErrForbidden)
			return nil, false
		}
		query = query.Where("franchise_id = ?", *user.FranchiseID)
	} else if franchiseID := parseIDQuery(c, "franchise_id"); franchiseID != 0 {
		query = query.Where("franchise_id = ?", franchiseID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var commissions []models.Commission
	if err := query.Find(&commissions).Error; err != nil {
		utils.LogError("Failed to fetch commissions: %v", err)
		utils.InternalServerError(c, "Failed to fetch commissions", nil)
		return nil, false
	}
	return commissions, true
}

// commissionSummary aggregates a commission set by settlement status
type commissionSummary struct {
	TotalCommissions int             `json:"total_commissions"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	PendingAmount    decimal.Decimal `json:"pending_amount"`
	ChargedAmount    decimal.Decimal `json:"charged_amount"`
	PaidAmount       decimal.Decimal `json:"paid_amount"`
	FailedAmount     decimal.Decimal `json:"failed_amount"`
	Establishments   int             `json:"establishments"`
	AverageAmount    decimal.Decimal `json:"average_amount"`
}

func summarizeCommissions(commissions []models.Commission) commissionSummary {
	summary := commissionSummary{}
	establishmentSet := make(map[uint]bool)
	for _, commission := range commissions {
		summary.TotalCommissions++
		summary.TotalAmount = summary.TotalAmount.Add(commission.Amount)
		establishmentSet[commission.EstablishmentID] = true
		switch commission.Status {
		case models.CommissionStatusPending:
			summary.PendingAmount = summary.PendingAmount.Add(commission.Amount)
		case models.CommissionStatusCharged:
			summary.ChargedAmount = summary.ChargedAmount.Add(commission.Amount)
		case models.CommissionStatusPaid:
			summary.PaidAmount = summary.PaidAmount.Add(commission.Amount)
		case models.CommissionStatusFailed:
			summary.FailedAmount = summary.FailedAmount.Add(commission.Amount)
		}
	}
	summary.Establishments = len(establishmentSet)
	if summary.TotalCommissions > 0 {
		summary.AverageAmount = summary.TotalAmount.
			Div(decimal.NewFromInt(int64(summary.TotalCommissions))).Round(2)
	}
	return summary
}

// establishmentNames resolves establishment ids to display names
func establishmentNames(commissions []models.Commission) map[uint]string {
	ids := make([]uint, 0, len(commissions))
	seen := make(map[uint]bool)
	for _, commission := range commissions {
		if !seen[commission.EstablishmentID] {
			seen[commission.EstablishmentID] = true
			ids = append(ids, commission.EstablishmentID)
		}
	}

	names := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return names
	}
	var establishments []models.Establishment
	if err := config.DB.Where("id IN ?", ids).Find(&establishments).Error; err != nil {
		utils.LogError("Failed to resolve establishment names: %v", err)
		return names
	}
	for _, establishment := range establishments {
		names[establishment.ID] = establishment.Name
	}
	return names
}

// GenerateCommissionReport returns a commission summary for a period
func GenerateCommissionReport(c *gin.Context) {
	utils.LogInfo("GenerateCommissionReport called")

	startDate, endDate, ok := reportWindow(c)
	if !ok {
		return
	}
	commissions, ok := loadCommissionsForReport(c, startDate, endDate)
	if !ok {
		return
	}

	summary := summarizeCommissions(commissions)
	utils.LogInfo("Commission report generated: %d commissions between %s and %s",
		summary.TotalCommissions, startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))

	utils.Success(c, "Report generated", gin.H{
		"period": gin.H{
			"start": startDate.Format("2006-01-02"),
			"end":   endDate.Format("2006-01-02"),
		},
		"summary":     summary,
		"commissions": commissions,
	})
}
