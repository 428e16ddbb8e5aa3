package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/apperr"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/auth"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

func init() {
	// binding errors name the json field, not the Go field
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
	}
}

// writeError 错误类型到 HTTP 状态码的统一映射，500 只返回通用信息
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	var fe *apperr.FieldError
	var up *apperr.UpstreamError
	switch {
	case errors.As(err, &fe):
		c.JSON(http.StatusBadRequest, gin.H{"error": fe.Error(), "field": fe.Field})
	case errors.Is(err, apperr.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
	case errors.Is(err, apperr.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &up):
		logger.WithError(err).WithField("path", c.FullPath()).Warn("upstream failure")
		c.JSON(http.StatusBadGateway, gin.H{"error": up.Message})
	default:
		logger.WithError(err).WithFields(logrus.Fields{
			"path":   c.FullPath(),
			"method": c.Request.Method,
		}).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// bindJSON decodes the body and turns binding failures into field errors.
func bindJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperr.Field(fe.Field(), "failed on %s", fe.Tag())
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return apperr.Field(typeErr.Field, "must be a %s", typeErr.Type.String())
	}
	if errors.Is(err, io.EOF) {
		return apperr.Field("body", "is required")
	}
	return apperr.Field("body", "malformed JSON")
}

func pathID(c *gin.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Field(name, "must be a positive integer")
	}
	return id, nil
}

func queryUint(c *gin.Context, name string) (uint64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, apperr.Field(name, "must be a positive integer")
	}
	return v, nil
}

// actor the authenticated caller. JWTAuth guards every route using it.
func actor(c *gin.Context) (auth.Principal, error) {
	p, ok := middleware.Principal(c)
	if !ok {
		return auth.Principal{}, apperr.ErrUnauthenticated
	}
	return p, nil
}
