package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/offerlookup/offer-backend/dto"
	"github.com/offerlookup/offer-backend/pure_utils"
	"github.com/offerlookup/offer-backend/usecases"
)

func handleSearchProperties(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var query dto.PropertySearchQuery
		if err := c.ShouldBindQuery(&query); err != nil {
			presentError(ctx, c, badParameter(err))
			return
		}

		search := dto.AdaptPropertySearch(query)
		usecase := usecasesWithCreds(ctx, uc).NewPropertyUsecase()
		page, err := usecase.SearchProperties(ctx, search)
		if presentError(ctx, c, err) {
			return
		}

		out := dto.PropertyPage{Properties: pure_utils.Map(page.Records, dto.AdaptPropertyDto)}
		if page.HasNextPage {
			out.NextOffsetId = page.Records[len(page.Records)-1].Id
		}
		c.JSON(http.StatusOK, out)
	}
}
