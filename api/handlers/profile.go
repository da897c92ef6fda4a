package handlers

import (
	"net/http"

	"bookswap/services"

	"github.com/gin-gonic/gin"
)

var profileService = services.NewProfileService()

type ProfileUpdateRequest struct {
	FirstName       *string `json:"first_name"`
	LastName        *string `json:"last_name"`
	Email           *string `json:"email"`
	Phone           *string `json:"phone"`
	Address         *string `json:"address"`
	Bio             *string `json:"bio"`
	Location        *string `json:"location"`
	Website         *string `json:"website"`
	PreferredGenres *string `json:"preferred_genres"`
}

// MyProfile - профиль текущего пользователя (создается при первом обращении)
func MyProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	profile, err := profileService.GetOrCreate(c.Request.Context(), userID)
	if err != nil {
		serviceError(c, err)
		return
	}
	user, err := userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile": profile,
		"user": gin.H{
			"id":         user.ID,
			"username":   user.Username,
			"email":      user.Email,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
		},
	})
}

// UpdateProfile обновляет поля пользователя и профиля
func UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	userUpdates := make(map[string]interface{})
	if req.FirstName != nil {
		userUpdates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		userUpdates["last_name"] = *req.LastName
	}
	if req.Email != nil {
		userUpdates["email"] = *req.Email
	}
	if len(userUpdates) > 0 {
		if _, err := userService.UpdateUser(c.Request.Context(), userID, userUpdates); err != nil {
			serviceError(c, err)
			return
		}
	}

	profileUpdates := make(map[string]interface{})
	if req.Phone != nil {
		profileUpdates["phone"] = *req.Phone
	}
	if req.Address != nil {
		profileUpdates["address"] = *req.Address
	}
	if req.Bio != nil {
		profileUpdates["bio"] = *req.Bio
	}
	if req.Location != nil {
		profileUpdates["location"] = *req.Location
	}
	if req.Website != nil {
		profileUpdates["website"] = *req.Website
	}
	if req.PreferredGenres != nil {
		profileUpdates["preferred_genres"] = *req.PreferredGenres
	}

	profile, err := profileService.GetOrCreate(c.Request.Context(), userID)
	if err != nil {
		serviceError(c, err)
		return
	}
	if len(profileUpdates) > 0 {
		profile, err = profileService.Update(c.Request.Context(), userID, profileUpdates)
		if err != nil {
			serviceError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}
