package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/policyminders-api/internal/application/dto"
	"github.com/jhoicas/policyminders-api/internal/application/usecase"
)

// PolicyHandler CRUD de pólizas de la organización del usuario.
type PolicyHandler struct {
	uc *usecase.PolicyUseCase
}

// NewPolicyHandler construye el handler.
func NewPolicyHandler(uc *usecase.PolicyUseCase) *PolicyHandler {
	return &PolicyHandler{uc: uc}
}

// Create godoc
// @Summary      Crear póliza
// @Tags         policies
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PolicyRequest  true  "Datos de la póliza"
// @Success      201   {object}  dto.PolicyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/policies [post]
func (h *PolicyHandler) Create(c *fiber.Ctx) error {
	var in dto.PolicyRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), GetOrganizationID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener póliza por ID
// @Tags         policies
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la póliza"
// @Success      200  {object}  dto.PolicyResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/policies/{id} [get]
func (h *PolicyHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetOrganizationID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar póliza
// @Description  Si cambia end_date se reinicia el estado del recordatorio.
// @Tags         policies
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID de la póliza"
// @Param        body  body  dto.PolicyRequest  true  "Datos de la póliza"
// @Success      200   {object}  dto.PolicyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/policies/{id} [put]
func (h *PolicyHandler) Update(c *fiber.Ctx) error {
	var in dto.PolicyRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), GetOrganizationID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar pólizas por vencimiento
// @Tags         policies
// @Security     Bearer
// @Produce      json
// @Param        search  query  string  false  "Cliente, aseguradora o contacto"
// @Param        limit   query  int     false  "Límite"   default(20)
// @Param        offset  query  int     false  "Offset"   default(0)
// @Success      200     {object}  dto.PolicyListResponse
// @Router       /api/policies [get]
func (h *PolicyHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", dto.DefaultPageLimit), Offset: c.QueryInt("offset", 0)}
	out, err := h.uc.List(c.UserContext(), GetOrganizationID(c), c.Query("search"), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar póliza
// @Tags         policies
// @Security     Bearer
// @Param        id   path  string  true  "ID de la póliza"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/policies/{id} [delete]
func (h *PolicyHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetOrganizationID(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
