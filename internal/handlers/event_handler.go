package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/connect/internal/models"
	"github.com/joshua-takyi/connect/internal/services"
)

func ListEvents(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := es.ListEvents(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, events)
	}
}

// SearchEvents accepts q as an alias of location.
func SearchEvents(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		location := c.Query("location")
		if location == "" {
			location = c.Query("q")
		}
		events, err := es.SearchEvents(c.Request.Context(), location, c.Query("category"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, events)
	}
}

func GetEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := eventIDParam(c, "id")
		if !ok {
			return
		}
		event, err := es.GetEvent(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, event)
	}
}

func CreateEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		var input models.EventInput
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, "invalid request payload: "+err.Error())
			return
		}
		event, err := es.CreateEvent(c.Request.Context(), userID, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, event)
	}
}

func UpdateEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := eventIDParam(c, "id")
		if !ok {
			return
		}
		var update models.EventUpdate
		if err := c.ShouldBindJSON(&update); err != nil {
			badRequest(c, "invalid request payload: "+err.Error())
			return
		}
		event, err := es.UpdateEvent(c.Request.Context(), id, userID, &update)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, event)
	}
}

func DeleteEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := eventIDParam(c, "id")
		if !ok {
			return
		}
		if err := es.DeleteEvent(c.Request.Context(), id, userID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "event deleted successfully"))
	}
}

func JoinEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := eventIDParam(c, "id")
		if !ok {
			return
		}
		event, err := es.JoinEvent(c.Request.Context(), id, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, event)
	}
}

func LeaveEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := eventIDParam(c, "id")
		if !ok {
			return
		}
		event, err := es.LeaveEvent(c.Request.Context(), id, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, event)
	}
}

func CheckJoined(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := eventIDParam(c, "id")
		if !ok {
			return
		}
		joined, err := es.HasJoined(c.Request.Context(), id, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"joined": joined})
	}
}

func MyEvents(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		events, err := es.ListJoinedEvents(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, events)
	}
}

func CreatedEvents(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		events, err := es.ListCreatedEvents(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, events)
	}
}

func FriendsEvents(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		events, err := es.ListFriendsEvents(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, events)
	}
}
