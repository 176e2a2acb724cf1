package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/voicemap/errors"
	"github.com/kbukum/voicemap/logger"
)

// RespondWithError renders err. An *apperrors.AppError keeps its status and
// structured body; anything else becomes a 500 INTERNAL_ERROR.
func RespondWithError(c *gin.Context, err error) {
	appErr := apperrors.From(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.Get("server").WithContext(c.Request.Context()).Error("request failed", logger.Fields(
			"path", c.Request.URL.Path,
			"code", string(appErr.Code),
			logger.FieldError, appErr.Error(),
		))
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}

// RespondOK sends a 200 response with data as the body.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}
