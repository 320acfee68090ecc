package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/rehiy/chat-led/models"
)

// CreateDispatch 保存调度记录到数据库
func CreateDispatch(dispatch *models.Dispatch) error {
	if dispatch.CreatedAt.IsZero() {
		dispatch.CreatedAt = time.Now()
	}

	err := db.Create(dispatch).Error
	if err != nil {
		return fmt.Errorf("failed to save dispatch: %w", err)
	}
	return nil
}

// DeleteDispatch 根据数据库ID删除调度记录
func DeleteDispatch(id int) error {
	ret := db.Delete(&models.Dispatch{}, id)
	if ret.Error != nil {
		return fmt.Errorf("failed to delete dispatch: %w", ret.Error)
	}
	if ret.RowsAffected == 0 {
		return fmt.Errorf("dispatch not found")
	}
	return nil
}

// BatchDeleteDispatch 批量删除调度记录
func BatchDeleteDispatch(ids []int) error {
	if len(ids) == 0 {
		return nil
	}

	err := db.Where("id IN ?", ids).Delete(&models.Dispatch{}).Error
	if err != nil {
		return fmt.Errorf("failed to batch delete dispatch: %w", err)
	}
	return nil
}

// GetDispatchList 查询调度记录列表
func GetDispatchList(filter *models.DispatchFilter) ([]models.Dispatch, int, error) {
	query := db.Model(&models.Dispatch{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Command != "" {
		query = query.Where("command = ?", filter.Command)
	}
	if !filter.StartTime.IsZero() {
		query = query.Where("created_at >= ?", filter.StartTime)
	}
	if !filter.EndTime.IsZero() {
		query = query.Where("created_at <= ?", filter.EndTime)
	}

	// 查询总数
	var total int64
	countQuery := query.Session(&gorm.Session{})
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count dispatch: %w", err)
	}

	// 查询列表
	var dispatchList []models.Dispatch
	err := query.Order("created_at DESC").Limit(filter.Limit).Offset(filter.Offset).Find(&dispatchList).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query dispatch: %w", err)
	}

	return dispatchList, int(total), nil
}
