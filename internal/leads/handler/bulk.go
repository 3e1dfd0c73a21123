package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mafiaidola/leads-manager-sub000/internal/leads/transport"
	"github.com/mafiaidola/leads-manager-sub000/platform/apperr"
	"github.com/mafiaidola/leads-manager-sub000/platform/httpkit"
)

func (h *Handler) BulkUpdateStatus(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		h.abortUnauthenticated(c)
		return
	}

	var req transport.BulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, h.log, apperr.BadRequest("invalid request body"))
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}

	result, err := h.svc.BulkUpdateStatus(c.Request.Context(), p, req)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}
	httpkit.OK(c, http.StatusOK, result)
}

func (h *Handler) BulkAssign(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		h.abortUnauthenticated(c)
		return
	}

	var req transport.BulkAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, h.log, apperr.BadRequest("invalid request body"))
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}

	result, err := h.svc.BulkAssign(c.Request.Context(), p, req)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}
	httpkit.OK(c, http.StatusOK, result)
}

func (h *Handler) BulkSoftDelete(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		h.abortUnauthenticated(c)
		return
	}

	var req transport.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, h.log, apperr.BadRequest("invalid request body"))
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}

	result, err := h.svc.BulkSoftDelete(c.Request.Context(), p, req)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}
	httpkit.OK(c, http.StatusOK, result)
}
