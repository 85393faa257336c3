package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/minishop-backend/internal/app/service"
	"github.com/ikkim/minishop-backend/internal/middleware"
)

type AddressController struct {
	addressService service.AddressService
}

func NewAddressController(addressService service.AddressService) *AddressController {
	return &AddressController{
		addressService: addressService,
	}
}

type AddressRequest struct {
	Receiver     string `json:"receiver" binding:"required,max=64"`
	Contact      string `json:"contact" binding:"required,max=30"`
	ProvinceCode string `json:"province_code" binding:"max=20"`
	CityCode     string `json:"city_code" binding:"max=20"`
	CountyCode   string `json:"county_code" binding:"max=20"`
	Address      string `json:"address" binding:"required,max=255"`
	FullLocation string `json:"full_location" binding:"max=255"`
	IsDefault    bool   `json:"is_default"`
}

func (r AddressRequest) toInput() service.AddressInput {
	return service.AddressInput{
		Receiver:     r.Receiver,
		Contact:      r.Contact,
		ProvinceCode: r.ProvinceCode,
		CityCode:     r.CityCode,
		CountyCode:   r.CountyCode,
		Address:      r.Address,
		FullLocation: r.FullLocation,
		IsDefault:    r.IsDefault,
	}
}

// ListAddresses returns the user's addresses, default first
// GET /api/v1/addresses
func (ctrl *AddressController) ListAddresses(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	addresses, err := ctrl.addressService.ListAddresses(userID)
	if err != nil {
		respondServiceError(c, err, "list addresses")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"addresses": addresses,
		"count":     len(addresses),
	})
}

// GetAddress GET /api/v1/addresses/:id
func (ctrl *AddressController) GetAddress(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	address, err := ctrl.addressService.GetAddress(userID, id)
	if err != nil {
		respondServiceError(c, err, "get address")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"address": address,
	})
}

// CreateAddress POST /api/v1/addresses
func (ctrl *AddressController) CreateAddress(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "create address")
		return
	}

	address, err := ctrl.addressService.CreateAddress(userID, req.toInput())
	if err != nil {
		respondServiceError(c, err, "create address")
		return
	}

	log.Info("Address created", map[string]interface{}{
		"user_id":    userID,
		"address_id": address.ID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"address": address,
	})
}

// UpdateAddress PUT /api/v1/addresses/:id
func (ctrl *AddressController) UpdateAddress(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "update address")
		return
	}

	address, err := ctrl.addressService.UpdateAddress(userID, id, req.toInput())
	if err != nil {
		respondServiceError(c, err, "update address")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"address": address,
	})
}

// SetDefaultAddress PUT /api/v1/addresses/:id/default
func (ctrl *AddressController) SetDefaultAddress(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.addressService.SetDefaultAddress(userID, id); err != nil {
		respondServiceError(c, err, "set default address")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Default address updated",
	})
}

// DeleteAddress DELETE /api/v1/addresses/:id
func (ctrl *AddressController) DeleteAddress(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.addressService.DeleteAddress(userID, id); err != nil {
		respondServiceError(c, err, "delete address")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Address deleted successfully",
	})
}
