package handler

import (
	"errors"
	"net/http"

	"mrtrack/pkg/apperror"
	"mrtrack/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondError maps a service error onto the standard envelope using the
// error's kind for the status code.
func respondError(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	c.JSON(status, response.Error(status, err.Error()))
}

// currentUser reads the authenticated identity the auth middleware stored on
// the context.
func currentUser(c *gin.Context) (uuid.UUID, string, error) {
	rawID, ok := c.Get("userID")
	if !ok {
		return uuid.Nil, "", errors.New("missing authentication context")
	}
	idStr, ok := rawID.(string)
	if !ok {
		return uuid.Nil, "", errors.New("malformed authentication context")
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, "", errors.New("malformed user id in token")
	}

	role, _ := c.Get("userRole")
	roleStr, _ := role.(string)
	return id, roleStr, nil
}

// pathUUID parses a :param path segment as a UUID
func pathUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid "+param))
		return uuid.Nil, false
	}
	return id, true
}

// queryUUID parses an optional uuid query parameter; nil when absent
func queryUUID(c *gin.Context, param string) (*uuid.UUID, bool) {
	raw := c.Query(param)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid "+param))
		return nil, false
	}
	return &id, true
}
