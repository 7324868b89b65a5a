package lending

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/circulation/pkg/models"
)

type handler struct {
	lendingService *Service
}

func (h *handler) borrow(c echo.Context) error {
	ctx := c.Request().Context()

	params := BorrowPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	result, err := h.lendingService.Borrow(ctx, params.BookID, params.MemberID, params.Days)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, result))
}

func (h *handler) giveBack(c echo.Context) error {
	ctx := c.Request().Context()

	params := ReturnPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	result, err := h.lendingService.Return(ctx, params.BookID)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, result))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListLoansQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	loans, err := h.lendingService.ListOutstanding(ctx, ListOutstandingOptions{
		Query:    params.Search,
		MemberID: params.MemberID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Loans []*models.Loan `json:"loans"`
		Total int            `json:"total"`
	}{loans, len(loans)}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}
