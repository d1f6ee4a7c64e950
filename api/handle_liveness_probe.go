package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/offerlookup/offer-backend/usecases"
)

func handleLivenessProbe(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		usecase := uc.NewLivenessUsecase()
		err := usecase.Liveness(ctx)
		if presentError(ctx, c, err) {
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"mood":    "ok",
			"version": uc.ApiVersion(),
		})
	}
}
