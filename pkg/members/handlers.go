package members

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/models"
)

type handler struct {
	memberService *Service
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := AddMemberPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	member, err := h.memberService.AddMember(ctx, params.Name, params.Email)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, member))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Member")
	}

	member, err := h.memberService.RetrieveMember(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, member))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	members, err := h.memberService.ListMembers(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Members []*models.MemberSummary `json:"members"`
		Total   int                     `json:"total"`
	}{members, len(members)}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}
