package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/connect/internal/models"
	"github.com/joshua-takyi/connect/internal/services"
)

const maxAvatarBytes = 5 << 20

func GetUser(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, _, ok := currentUser(c); !ok {
			return
		}
		userID, ok := uuidParam(c, "id", "user")
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

func UpdateProfile(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		var update models.ProfileUpdate
		if err := c.ShouldBindJSON(&update); err != nil {
			badRequest(c, "invalid request payload: "+err.Error())
			return
		}
		user, err := u.UpdateProfile(c.Request.Context(), userID, &update)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// UploadAvatar expects a multipart form with the image under "avatar".
func UploadAvatar(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxAvatarBytes)
		header, err := c.FormFile("avatar")
		if err != nil {
			badRequest(c, "avatar file is required")
			return
		}
		file, err := header.Open()
		if err != nil {
			badRequest(c, "could not read avatar file")
			return
		}
		defer file.Close()

		user, err := u.UploadAvatar(c.Request.Context(), userID, file)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func DiscoverUsers(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
		if err != nil {
			badRequest(c, "page must be an integer")
			return
		}
		size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(services.DefaultDiscoverSize)))
		if err != nil {
			badRequest(c, "size must be an integer")
			return
		}

		users, total, page, size, err := u.DiscoverUsers(c.Request.Context(), userID, page, size)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(users, page, size, total))
	}
}

func SearchUsers(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		users, err := u.SearchUsers(c.Request.Context(), userID, c.Query("q"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, users)
	}
}
