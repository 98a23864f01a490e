package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	model2 "github.com/cashrewards/memberhub/api/model"
)

// GetMemberBalances returns the balance of every membership of the member.
// Pass refresh=true to skip cached balances.
func (a Api) GetMemberBalances(c *gin.Context) {
	memberID, ok := memberIDParam(c)
	if !ok {
		return
	}

	var query model2.BalanceQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp, err := a.hub.GetBalanceSummary(c.Request.Context(), memberID, query.Refresh)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
