package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/interviewhub/interviewhub-api/internal/application"
	"github.com/interviewhub/interviewhub-api/internal/interface/middleware"
	"github.com/interviewhub/interviewhub-api/pkg/response"
)

type AccountHandler struct {
	Svc    *application.AuthService
	Search *application.SearchService
	Logger *logrus.Logger
}

func NewAccountHandler(svc *application.AuthService, search *application.SearchService, logger *logrus.Logger) *AccountHandler {
	return &AccountHandler{Svc: svc, Search: search, Logger: logger}
}

// Profile GET /profile (any authenticated account)
func (h *AccountHandler) Profile(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserID)
	a, err := h.Svc.GetProfile(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, application.ErrAccountNotFound) {
			response.Error(c, http.StatusNotFound, "account not found", nil)
			return
		}
		h.Logger.WithError(err).Error("profile lookup failed")
		response.Error(c, http.StatusInternalServerError, "something went wrong, please try again later", nil)
		return
	}
	response.Success(c, http.StatusOK, profileView(a), "profile", nil)
}

// Delete DELETE /account (admin-gated)
// Deletes the account matching the authenticated subject id.
func (h *AccountHandler) Delete(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserID)
	if uid == "" {
		response.Error(c, http.StatusForbidden, "user not logged in", nil)
		return
	}

	if err := h.Svc.DeleteAccount(c.Request.Context(), uid); err != nil {
		h.Logger.WithError(err).WithField("account_id", uid).Error("account deletion failed")
		response.Error(c, http.StatusInternalServerError, "error during deletion, please try again later", nil)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "account deleted", nil)
}

// SearchAccounts GET /accounts/search?q=&size= (admin-gated)
func (h *AccountHandler) SearchAccounts(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error(c, http.StatusBadRequest, "query parameter q is required", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	hits, err := h.Search.SearchAccounts(c.Request.Context(), q, size)
	if err != nil {
		h.Logger.WithError(err).Error("account search failed")
		response.Error(c, http.StatusInternalServerError, "search unavailable", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", gin.H{"count": len(hits)})
}
