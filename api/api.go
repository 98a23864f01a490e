package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/cashrewards/memberhub"
	"github.com/cashrewards/memberhub/api/middleware"
	"github.com/cashrewards/memberhub/config"
	"github.com/cashrewards/memberhub/internal/apierror"
)

type Api struct {
	hub    *memberhub.MemberHub
	router *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router
	router.POST("/members/:id/withdrawals", a.CreateWithdrawal)
	router.GET("/members/:id/balances", a.GetMemberBalances)
	router.GET("/withdrawals/:id", a.GetWithdrawal)
	return a.router
}

func NewAPI(hub *memberhub.MemberHub) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	r := gin.Default()
	r.Use(otelgin.Middleware(conf.ProjectName))
	r.Use(middleware.RateLimitMiddleware(conf))
	if conf.Server.Secure {
		r.Use(middleware.SecretKeyAuthMiddleware())
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})

	return &Api{hub: hub, router: r}
}

// respondWithError writes err with the status of its error code. Errors
// without a code are reported as internal errors.
func respondWithError(c *gin.Context, err error) {
	var apiErr apierror.APIError
	if errors.As(err, &apiErr) {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"code": apiErr.Code, "error": apiErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"code": apierror.ErrInternalServer, "error": err.Error()})
}
