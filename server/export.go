package server

import (
	"encoding/csv"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/onetoseven/marketplace/internal/common"
)

// exportApplications streams a campaign's application/order rows as CSV
// for the admin review sheet.
func exportApplications(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		apps := common.GetApplicationsByCampaign(s.db, s.Cfg, c.Param("campaignId"))

		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", `attachment; filename="applications.csv"`)

		w := csv.NewWriter(c.Writer)
		defer w.Flush()

		w.Write([]string{
			"applicationId", "influencerId", "status", "followersAtApply",
			"orderId", "orderAmount", "formName", "rejectionReason",
		})
		for _, app := range apps {
			var orderId, amount, formName string
			if app.Order != nil {
				orderId = app.Order.OrderId
				if app.Order.Amount > 0 {
					amount = strconv.FormatFloat(app.Order.Amount, 'f', 2, 64)
				}
				formName = app.Order.FormName
			}
			w.Write([]string{
				app.Id, app.InfluencerId, app.Status,
				strconv.FormatInt(app.FollowersAtApply, 10),
				orderId, amount, formName, app.RejectionReason,
			})
		}
	}
}
