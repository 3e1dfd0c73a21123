package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mafiaidola/leads-manager-sub000/internal/leads/transport"
	"github.com/mafiaidola/leads-manager-sub000/platform/apperr"
	"github.com/mafiaidola/leads-manager-sub000/platform/httpkit"
)

func (h *Handler) ListNotes(c *gin.Context) {
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

	result, err := h.svc.ListNotes(c.Request.Context(), p, id)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}
	httpkit.OK(c, http.StatusOK, result)
}

func (h *Handler) AddNote(c *gin.Context) {
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

	var req transport.AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, h.log, apperr.BadRequest("invalid request body"))
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}

	result, err := h.svc.AddNote(c.Request.Context(), p, id, req)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}
	httpkit.OK(c, http.StatusCreated, result)
}

func (h *Handler) AddAction(c *gin.Context) {
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

	var req transport.AddActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, h.log, apperr.BadRequest("invalid request body"))
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}

	result, err := h.svc.AddAction(c.Request.Context(), p, id, req)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}
	httpkit.OK(c, http.StatusCreated, result)
}
