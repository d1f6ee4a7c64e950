package api

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/offerlookup/offer-backend/dto"
	"github.com/offerlookup/offer-backend/models"
	"github.com/offerlookup/offer-backend/utils"
)

func presentError(ctx context.Context, c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	logger := utils.LoggerFromContext(ctx)

	var validationErrors validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrors):
		logger.InfoContext(ctx, fmt.Sprintf("ValidationErrors: %v", err))
		c.JSON(http.StatusBadRequest, dto.APIErrorResponse{
			Message:   "invalid request parameters",
			ErrorCode: dto.InvalidPayload,
			Details:   adaptValidationErrors(validationErrors),
		})

	case errors.Is(err, models.ErrFileTooLarge):
		logger.InfoContext(ctx, fmt.Sprintf("FileTooLarge: %v", err))
		c.JSON(http.StatusRequestEntityTooLarge, dto.APIErrorResponse{
			Message:   err.Error(),
			ErrorCode: dto.FileTooLarge,
		})

	case errors.Is(err, models.ErrUnsupportedFileType):
		logger.InfoContext(ctx, fmt.Sprintf("UnsupportedFileType: %v", err))
		c.JSON(http.StatusBadRequest, dto.APIErrorResponse{
			Message:   err.Error(),
			ErrorCode: dto.UnsupportedFileType,
		})

	case errors.Is(err, models.ErrJobAlreadyTerminal):
		logger.InfoContext(ctx, fmt.Sprintf("JobAlreadyTerminal: %v", err))
		c.JSON(http.StatusBadRequest, dto.APIErrorResponse{
			Message:   err.Error(),
			ErrorCode: dto.JobAlreadyTerminal,
		})

	case errors.Is(err, models.BadParameterError):
		logger.InfoContext(ctx, fmt.Sprintf("BadParameterError: %v", err))
		c.JSON(http.StatusBadRequest, dto.APIErrorResponse{
			Message:   err.Error(),
			ErrorCode: dto.InvalidPayload,
		})

	case errors.Is(err, models.UnAuthorizedError):
		logger.InfoContext(ctx, fmt.Sprintf("UnAuthorizedError: %v", err))
		c.JSON(http.StatusUnauthorized, dto.APIErrorResponse{
			Message:   "unauthorized",
			ErrorCode: dto.Unauthorized,
		})

	case errors.Is(err, models.ForbiddenError):
		logger.InfoContext(ctx, fmt.Sprintf("ForbiddenError: %v", err))
		c.JSON(http.StatusForbidden, dto.APIErrorResponse{
			Message:   "forbidden",
			ErrorCode: dto.Forbidden,
		})

	case errors.Is(err, models.NotFoundError):
		logger.InfoContext(ctx, fmt.Sprintf("NotFoundError: %v", err))
		c.JSON(http.StatusNotFound, dto.APIErrorResponse{
			Message:   "not found",
			ErrorCode: dto.NotFound,
		})

	case errors.Is(err, models.ConflictError):
		logger.InfoContext(ctx, fmt.Sprintf("ConflictError: %v", err))
		c.JSON(http.StatusConflict, dto.APIErrorResponse{
			Message:   err.Error(),
			ErrorCode: dto.Conflict,
		})

	default:
		utils.LogAndReportSentryError(ctx, err)
		c.JSON(http.StatusInternalServerError, dto.APIErrorResponse{
			Message:   "An unexpected error occurred. Please try again later, or contact support if the problem persists.",
			ErrorCode: dto.InternalServerError,
		})
	}
	return true
}

// maps validation errors to human readable messages
func adaptValidationErrors(errs validator.ValidationErrors) []string {
	messages := make([]string, 0, len(errs))
	for _, fe := range errs {
		messages = append(messages, adaptFieldValidationError(fe))
	}
	return messages
}

func adaptFieldValidationError(fe validator.FieldError) string {
	inner := func(fe validator.FieldError) string {
		switch fe.ActualTag() {
		case "required":
			return "is required"
		case "min", "gte":
			if isNumber(fe.Value()) {
				return fmt.Sprintf("must be at least %s", fe.Param())
			}
			return fmt.Sprintf("must have at least %s characters", fe.Param())
		case "max", "lte":
			if isNumber(fe.Value()) {
				return fmt.Sprintf("must be at most %s", fe.Param())
			}
			return fmt.Sprintf("must have at most %s characters", fe.Param())
		case "len":
			return fmt.Sprintf("must be of length %s", fe.Param())
		case "alpha":
			return "must contain letters only"
		case "oneof":
			return fmt.Sprintf("must be one of %s", strings.Join(strings.Split(fe.Param(), " "), ", "))
		case "uuid":
			return "should be a UUID"
		}
		return "is invalid"
	}

	return fmt.Sprintf("field `%s` %s", fe.Field(), inner(fe))
}

func isNumber(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
