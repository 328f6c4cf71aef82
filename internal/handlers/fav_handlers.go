package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/connect/internal/models"
	"github.com/joshua-takyi/connect/internal/services"
)

func AddToFavourites(f *services.FavouriteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		eventID, ok := eventIDParam(c, "eventId")
		if !ok {
			return
		}
		if err := f.AddToFavourites(c.Request.Context(), userID, eventID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "event added to favorites"))
	}
}

func RemoveFromFavourite(f *services.FavouriteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		eventID, ok := eventIDParam(c, "eventId")
		if !ok {
			return
		}
		if err := f.RemoveFromFavourites(c.Request.Context(), userID, eventID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "event removed from favorites"))
	}
}

func GetUserFavourites(f *services.FavouriteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		events, err := f.GetFavourites(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, events)
	}
}

func CheckFavourite(f *services.FavouriteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		eventID, ok := eventIDParam(c, "eventId")
		if !ok {
			return
		}
		fav, err := f.IsFavourite(c.Request.Context(), userID, eventID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"isFavorite": fav})
	}
}
