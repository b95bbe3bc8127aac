package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-storefront/internal/domain/apperror"
	"github.com/oksasatya/go-ddd-storefront/pkg/response"
	"github.com/oksasatya/go-ddd-storefront/pkg/validation"
)

// fail translates an application error into the response envelope. Only
// client errors carry detail; everything else is logged and answered with a
// generic message.
func fail(c *gin.Context, logger *logrus.Logger, err error, oldInput gin.H) {
	status := apperror.Status(err)

	var ve *apperror.ValidationError
	if errors.As(err, &ve) {
		details := gin.H{"details": map[string]string{ve.Field: ve.Message}}
		if oldInput != nil {
			details["old_input"] = oldInput
		}
		response.Error[any](c, status, ve.Message, details)
		return
	}

	if status >= http.StatusInternalServerError && logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
		}).Error("request failed")
	}
	response.Error[any](c, status, apperror.PublicMessage(err), nil)
}

// bindFail answers a request whose payload did not pass binding.
func bindFail(c *gin.Context, err error, oldInput gin.H) {
	field, msg := validation.FirstError(err)
	message := "invalid payload"
	if field != "" && field != "payload" {
		message = field + " " + msg
	}
	details := gin.H{"details": validation.ToDetails(err)}
	if oldInput != nil {
		details["old_input"] = oldInput
	}
	response.Error[any](c, http.StatusUnprocessableEntity, message, details)
}

func clientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}
