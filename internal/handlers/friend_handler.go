package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/connect/internal/models"
	"github.com/joshua-takyi/connect/internal/services"
)

func ListFriends(fs *services.FriendService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		friends, err := fs.ListFriends(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, friends)
	}
}

func PendingRequests(fs *services.FriendService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		requests, err := fs.ListPendingRequests(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, requests)
	}
}

func SentRequests(fs *services.FriendService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		requests, err := fs.ListSentRequests(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, requests)
	}
}

func SendFriendRequest(fs *services.FriendService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		receiverID, ok := uuidParam(c, "userId", "user")
		if !ok {
			return
		}
		fr, err := fs.SendFriendRequest(c.Request.Context(), userID, receiverID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, fr)
	}
}

func AcceptFriendRequest(fs *services.FriendService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		requestID, ok := uuidParam(c, "requestId", "request")
		if !ok {
			return
		}
		fr, err := fs.AcceptFriendRequest(c.Request.Context(), requestID, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, fr)
	}
}

func RejectFriendRequest(fs *services.FriendService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		requestID, ok := uuidParam(c, "requestId", "request")
		if !ok {
			return
		}
		fr, err := fs.RejectFriendRequest(c.Request.Context(), requestID, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, fr)
	}
}

func RemoveFriend(fs *services.FriendService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		friendID, ok := uuidParam(c, "friendId", "friend")
		if !ok {
			return
		}
		if err := fs.RemoveFriend(c.Request.Context(), userID, friendID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "friend removed"))
	}
}
