package lending

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers loan routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	h := &handler{
		lendingService: NewService(db),
	}

	g.GET("", h.list)
	g.POST("", h.borrow)
	g.POST("/return", h.giveBack)
}
