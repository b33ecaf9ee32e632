package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dimasprayoga/warung-pos/services"
	"github.com/dimasprayoga/warung-pos/utils"
)

type ReconciliationController struct {
	DB      *gorm.DB
	service *services.ReconciliationService
}

func NewReconciliationController(db *gorm.DB) *ReconciliationController {
	return &ReconciliationController{
		DB:      db,
		service: services.NewReconciliationService(db),
	}
}

// GetReconciliation -> GET /reconciliation?store_id&date&summary=true
// Laporan harian per channel pembayaran; read-only, gagal utuh (500)
// kalau query bermasalah.
func (rc *ReconciliationController) GetReconciliation(c *gin.Context) {
	storeID, ok := utils.ResolveStoreID(utils.StoreIDSourcesFor(c))
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, utils.ValidationErrorf("store id could not be resolved"))
		return
	}

	date := c.Query("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	summaryOnly := c.Query("summary") == "true"

	report, err := rc.service.Reconcile(storeID, date, summaryOnly)
	if err != nil {
		utils.RespondError(c, utils.StatusFromError(err), err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Reconciliation report", report)
}
