package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	catalogDomain "github.com/davicafu/hexashop/internal/catalog/domain"
	"github.com/davicafu/hexashop/pkg/utils"
)

const dayLayout = "2006-01-02"

// AnalyticsHandler expone la tendencia diaria de eventos del catálogo.
type AnalyticsHandler struct {
	repo catalogDomain.CatalogAnalyticsRepository
	log  *zap.Logger
}

func NewAnalyticsHandler(repo catalogDomain.CatalogAnalyticsRepository, log *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{repo: repo, log: log}
}

// Trend endpoint GET /api/analytics/trend?from=YYYY-MM-DD&to=YYYY-MM-DD
// Sin rango se devuelven los últimos 7 días; "to" es inclusivo.
func (h *AnalyticsHandler) Trend(c *gin.Context) {
	today := time.Now().UTC().Truncate(24 * time.Hour)

	from, err := parseDay(c.Query("from"), today.AddDate(0, 0, -6))
	if err != nil {
		utils.SendBadRequest(c, "from debe tener formato YYYY-MM-DD")
		return
	}
	to, err := parseDay(c.Query("to"), today)
	if err != nil {
		utils.SendBadRequest(c, "to debe tener formato YYYY-MM-DD")
		return
	}
	if to.Before(from) {
		utils.SendBadRequest(c, "el rango de fechas es inválido")
		return
	}

	end := to.Add(24*time.Hour - time.Millisecond)
	trend, err := h.repo.GetDailyTrend(c.Request.Context(), from, end)
	if err != nil {
		h.log.Error("Failed to query analytics trend", zap.Error(err))
		utils.SendInternalServerError(c, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"from":  from.Format(dayLayout),
		"to":    to.Format(dayLayout),
		"trend": trend,
	})
}

func parseDay(raw string, fallback time.Time) (time.Time, error) {
	if raw == "" {
		return fallback, nil
	}
	return time.Parse(dayLayout, raw)
}
