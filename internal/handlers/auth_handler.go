package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/connect/internal/models"
	"github.com/joshua-takyi/connect/internal/services"
)

func Signup(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.SignupInput
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, "invalid request payload: "+err.Error())
			return
		}

		res, err := u.Signup(c.Request.Context(), &input, clientInfo(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, res)
	}
}

func Login(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email    string `json:"email" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "email and password are required")
			return
		}

		res, err := u.Login(c.Request.Context(), req.Email, req.Password, clientInfo(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func Logout(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _, ok := currentUser(c)
		if !ok {
			return
		}
		if err := u.Logout(c.Request.Context(), claims); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "logged out successfully"))
	}
}

func Refresh(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _, ok := currentUser(c)
		if !ok {
			return
		}
		res, err := u.Refresh(c.Request.Context(), claims, clientInfo(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func Me(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		user, err := u.GetUser(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}
