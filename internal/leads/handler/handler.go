// Package handler exposes the leads service over HTTP.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mafiaidola/leads-manager-sub000/internal/leads/domain"
	"github.com/mafiaidola/leads-manager-sub000/internal/leads/service"
	"github.com/mafiaidola/leads-manager-sub000/internal/leads/transport"
	"github.com/mafiaidola/leads-manager-sub000/platform/apperr"
	"github.com/mafiaidola/leads-manager-sub000/platform/httpkit"
	"github.com/mafiaidola/leads-manager-sub000/platform/logger"
	"github.com/mafiaidola/leads-manager-sub000/platform/validator"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
	log *logger.Logger
}

func New(svc *service.Service, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{svc: svc, val: val, log: log}
}

// principal builds the domain principal from the request identity.
func principal(c *gin.Context) (domain.Principal, bool) {
	identity, ok := httpkit.GetIdentity(c)
	if !ok {
		return domain.Principal{}, false
	}
	return domain.Principal{
		UserID: identity.UserID,
		Name:   identity.Name,
		Role:   domain.ParseRole(identity.Role, identity.Permissions),
	}, true
}

func (h *Handler) abortUnauthenticated(c *gin.Context) {
	httpkit.HandleError(c, h.log, apperr.Unauthorized("you must be signed in"))
}

func leadID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperr.BadRequest("invalid lead id")
	}
	return id, nil
}

func (h *Handler) Create(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		h.abortUnauthenticated(c)
		return
	}

	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, h.log, apperr.BadRequest("invalid request body"))
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}

	result, err := h.svc.Create(c.Request.Context(), p, req)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}
	httpkit.OK(c, http.StatusCreated, result)
}

func (h *Handler) Get(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		h.abortUnauthenticated(c)
		return
	}
	id, err := leadID(c)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}

	result, err := h.svc.Get(c.Request.Context(), p, id)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}
	httpkit.OK(c, http.StatusOK, result)
}

func (h *Handler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		h.abortUnauthenticated(c)
		return
	}

	query := service.ListQuery{
		Status:   c.Query("status"),
		Source:   c.Query("source"),
		Product:  c.Query("product"),
		Tag:      c.Query("tag"),
		Search:   c.Query("search"),
		Trash:    c.Query("trash") == "true",
		Starred:  c.Query("starred") == "true",
		SortBy:   c.Query("sortBy"),
		SortDesc: c.Query("sortDir") != "asc",
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		query.Page = page
	}
	if raw := c.Query("assignedTo"); raw != "" {
		assignee, err := uuid.Parse(raw)
		if err != nil {
			httpkit.HandleError(c, h.log, apperr.BadRequest("invalid assignedTo filter"))
			return
		}
		query.AssignedTo = &assignee
	}

	result, err := h.svc.List(c.Request.Context(), p, query)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}
	httpkit.OK(c, http.StatusOK, result)
}

func (h *Handler) Search(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		h.abortUnauthenticated(c)
		return
	}
	page, _ := strconv.Atoi(c.Query("page"))

	result, err := h.svc.Search(c.Request.Context(), p, c.Query("q"), page)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}
	httpkit.OK(c, http.StatusOK, result)
}

func (h *Handler) Update(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		h.abortUnauthenticated(c)
		return
	}
	id, err := leadID(c)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}

	var req transport.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, h.log, apperr.BadRequest("invalid request body"))
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}

	result, err := h.svc.Update(c.Request.Context(), p, id, req)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}
	httpkit.OK(c, http.StatusOK, result)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		h.abortUnauthenticated(c)
		return
	}
	id, err := leadID(c)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}

	var req transport.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, h.log, apperr.BadRequest("invalid request body"))
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}

	result, err := h.svc.UpdateStatus(c.Request.Context(), p, id, req.Status)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}
	httpkit.OK(c, http.StatusOK, result)
}

func (h *Handler) Transfer(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		h.abortUnauthenticated(c)
		return
	}
	id, err := leadID(c)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}

	var req transport.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, h.log, apperr.BadRequest("invalid request body"))
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}

	result, err := h.svc.Transfer(c.Request.Context(), p, id, req.UserID)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}
	httpkit.OK(c, http.StatusOK, result)
}

func (h *Handler) ToggleStar(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		h.abortUnauthenticated(c)
		return
	}
	id, err := leadID(c)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}

	result, err := h.svc.ToggleStar(c.Request.Context(), p, id)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}
	httpkit.OK(c, http.StatusOK, result)
}

func (h *Handler) Delete(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		h.abortUnauthenticated(c)
		return
	}
	id, err := leadID(c)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}

	result, err := h.svc.Delete(c.Request.Context(), p, id)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}
	httpkit.OK(c, http.StatusOK, result)
}

func (h *Handler) Restore(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		h.abortUnauthenticated(c)
		return
	}
	id, err := leadID(c)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}

	result, err := h.svc.Restore(c.Request.Context(), p, id)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}
	httpkit.OK(c, http.StatusOK, result)
}

func (h *Handler) PermanentDelete(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		h.abortUnauthenticated(c)
		return
	}
	id, err := leadID(c)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}

	result, err := h.svc.PermanentDelete(c.Request.Context(), p, id)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}
	httpkit.OK(c, http.StatusOK, result)
}

func (h *Handler) Timeline(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		h.abortUnauthenticated(c)
		return
	}
	id, err := leadID(c)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}

	result, err := h.svc.Timeline(c.Request.Context(), p, id)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}
	httpkit.OK(c, http.StatusOK, result)
}

func (h *Handler) CheckDuplicatePhone(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		h.abortUnauthenticated(c)
		return
	}

	var excludeID *uuid.UUID
	if raw := c.Query("excludeId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpkit.HandleError(c, h.log, apperr.BadRequest("invalid excludeId"))
			return
		}
		excludeID = &id
	}

	result, err := h.svc.CheckDuplicatePhone(c.Request.Context(), p, c.Query("phone"), excludeID)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}
	httpkit.OK(c, http.StatusOK, result)
}

func (h *Handler) CheckDuplicateLead(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		h.abortUnauthenticated(c)
		return
	}

	var excludeID *uuid.UUID
	if raw := c.Query("excludeId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpkit.HandleError(c, h.log, apperr.BadRequest("invalid excludeId"))
			return
		}
		excludeID = &id
	}

	result, err := h.svc.CheckDuplicateLead(c.Request.Context(), p, c.Query("email"), c.Query("phone"), excludeID)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}
	httpkit.OK(c, http.StatusOK, result)
}
