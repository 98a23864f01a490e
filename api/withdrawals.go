package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	model2 "github.com/cashrewards/memberhub/api/model"
)

func memberIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive member id. pass id in the route /:id"})
		return 0, false
	}
	return id, true
}

// CreateWithdrawal handles a member's cashback withdrawal.
// The amount is drawn from the member's memberships, home client first,
// and one ledger row is written per membership drawn.
//
// Parameters:
// - c: The Gin context containing the request and response.
//
// Responses:
// - 400 Bad Request: If the body is malformed or the amount or payment method is rejected.
// - 401 Unauthorized: If the OTP is invalid.
// - 404 Not Found: If the member cannot withdraw.
// - 422 Unprocessable Entity: If the member has no balance, no approved purchase or no verified wallet.
// - 201 Created: If the withdrawal is recorded.
func (a Api) CreateWithdrawal(c *gin.Context) {
	memberID, ok := memberIDParam(c)
	if !ok {
		return
	}

	var newWithdrawal model2.CreateWithdrawal
	if err := c.ShouldBindJSON(&newWithdrawal); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := newWithdrawal.ValidateCreateWithdrawal(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp, err := a.hub.Withdraw(c.Request.Context(), newWithdrawal.ToWithdrawalRequest(memberID))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetWithdrawal returns the ledger rows of a withdrawal.
func (a Api) GetWithdrawal(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed || id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	resp, err := a.hub.GetWithdrawal(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
