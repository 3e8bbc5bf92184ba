package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"nijimarket-backend/internal/database"
	"nijimarket-backend/internal/models"
)

type LogOptions struct {
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

func WriteLog(opts LogOptions) error {
	// jsonb columns need the "null" literal, not an empty string
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	log := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
	}

	if err := database.DB.Create(&log).Error; err != nil {
		return fmt.Errorf("could not write audit log: %w", err)
	}

	return nil
}

// UndoLog reverts the mutation a log row recorded: a logged create is
// deleted, a logged update restored, a logged delete recreated. Only
// market and category rows can be reverted; booking and review state
// goes through their own workflows.
func UndoLog(logID uint, userID uint, userName string) error {
	var log models.AuditLog
	if err := database.DB.First(&log, "id = ?", logID).Error; err != nil {
		return fmt.Errorf("log not found: %w", err)
	}

	if log.IsUndone {
		return fmt.Errorf("this action has already been undone")
	}

	switch log.Action {
	case models.AuditActionCreate:
		if err := deleteEntity(log.EntityType, log.EntityID); err != nil {
			return fmt.Errorf("could not delete entity: %w", err)
		}

	case models.AuditActionUpdate:
		if err := restoreEntity(log.EntityType, log.EntityID, log.BeforeData); err != nil {
			return fmt.Errorf("could not restore entity: %w", err)
		}

	case models.AuditActionDelete:
		if err := recreateEntity(log.EntityType, log.BeforeData); err != nil {
			return fmt.Errorf("could not recreate entity: %w", err)
		}

	default:
		return fmt.Errorf("this action type cannot be undone")
	}

	now := time.Now()
	log.IsUndone = true
	log.UndoneBy = &userID
	log.UndoneAt = &now

	if err := database.DB.Save(&log).Error; err != nil {
		return fmt.Errorf("could not update log: %w", err)
	}

	undoLog := models.AuditLog{
		UserID:      userID,
		UserName:    userName,
		EntityType:  log.EntityType,
		EntityID:    log.EntityID,
		Action:      models.AuditActionUndo,
		Description: fmt.Sprintf("Undone: %s", log.Description),
		BeforeData:  log.AfterData,
		AfterData:   log.BeforeData,
		Undone:      true,
	}

	if err := database.DB.Create(&undoLog).Error; err != nil {
		return fmt.Errorf("could not write undo log: %w", err)
	}

	return nil
}

func deleteEntity(entityType string, entityID uint) error {
	switch entityType {
	case "market":
		return database.DB.Delete(&models.Market{}, "id = ?", entityID).Error
	case "category":
		return database.DB.Delete(&models.Category{}, "id = ?", entityID).Error
	default:
		return fmt.Errorf("entity type %q cannot be undone", entityType)
	}
}

func recreateEntity(entityType string, dataJSON string) error {
	switch entityType {
	case "market":
		var market models.Market
		if err := json.Unmarshal([]byte(dataJSON), &market); err != nil {
			return err
		}
		market.ID = 0
		return database.DB.Create(&market).Error

	case "category":
		var category models.Category
		if err := json.Unmarshal([]byte(dataJSON), &category); err != nil {
			return err
		}
		category.ID = 0
		return database.DB.Create(&category).Error

	default:
		return fmt.Errorf("entity type %q cannot be undone", entityType)
	}
}

func restoreEntity(entityType string, entityID uint, dataJSON string) error {
	switch entityType {
	case "market":
		var market models.Market
		if err := json.Unmarshal([]byte(dataJSON), &market); err != nil {
			return err
		}
		return database.DB.Model(&models.Market{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"name":           market.Name,
			"description":    market.Description,
			"address":        market.Address,
			"city":           market.City,
			"prefecture":     market.Prefecture,
			"country":        market.Country,
			"postal_code":    market.PostalCode,
			"latitude":       market.Latitude,
			"longitude":      market.Longitude,
			"market_type":    market.MarketType,
			"is_active":      market.IsActive,
			"operating_days": market.OperatingDays,
			"opening_time":   market.OpeningTime,
			"closing_time":   market.ClosingTime,
		}).Error

	case "category":
		var category models.Category
		if err := json.Unmarshal([]byte(dataJSON), &category); err != nil {
			return err
		}
		return database.DB.Model(&models.Category{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"name":        category.Name,
			"name_ja":     category.NameJa,
			"name_ne":     category.NameNe,
			"description": category.Description,
			"icon":        category.Icon,
			"is_active":   category.IsActive,
		}).Error

	default:
		return fmt.Errorf("entity type %q cannot be undone", entityType)
	}
}
