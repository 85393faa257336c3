package service

import (
	"github.com/ikkim/minishop-backend/internal/app/repository"
	"github.com/ikkim/minishop-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

const orderExportSheet = "Orders"

var orderExportHeader = []interface{}{
	"Order Number", "Status", "Created At", "Goods", "Total Count", "Total Freight", "Total Price", "Buyer Message",
}

// ExportOrders renders every order of the user as an xlsx workbook, newest first
func (s *orderService) ExportOrders(userID uint) ([]byte, error) {
	orders, _, err := s.orderRepo.FindByUserID(userID, repository.OrderQuery{})
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn("Failed to close export workbook", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	if err := f.SetSheetName("Sheet1", orderExportSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(orderExportSheet, "A1", &orderExportHeader); err != nil {
		return nil, err
	}

	for i, order := range orders {
		goods := ""
		for j, item := range order.OrderItems {
			if j > 0 {
				goods += "; "
			}
			goods += item.Name
			if item.AttrsText != "" {
				goods += " (" + item.AttrsText + ")"
			}
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			order.OrderNumber,
			string(order.Status),
			order.CreatedAt.Format("2006-01-02 15:04:05"),
			goods,
			order.TotalCount,
			order.TotalFreight.StringFixed(2),
			order.TotalPrice.StringFixed(2),
			order.BuyerMessage,
		}
		if err := f.SetSheetRow(orderExportSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		logger.Error("Failed to write order export", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Info("Orders exported", map[string]interface{}{
		"user_id": userID,
		"orders":  len(orders),
	})
	return buf.Bytes(), nil
}
