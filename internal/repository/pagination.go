package repository

import "gorm.io/gorm"

// applyPagination 页码小于 1 按第一页处理，pageSize 不大于 0 时不分页
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	if page < 1 {
		page = 1
	}
	return query.Limit(pageSize).Offset((page - 1) * pageSize)
}

// findPage 先统计总数再按 order 取当前页，query 需已限定 Model 与过滤条件。
// findScopes 只作用于取数据（如 Preload），不参与计数
func findPage[T any](query *gorm.DB, page, pageSize int, order string, findScopes ...func(*gorm.DB) *gorm.DB) ([]T, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	items := make([]T, 0)
	if total == 0 {
		return items, 0, nil
	}
	if err := applyPagination(query, page, pageSize).Scopes(findScopes...).Order(order).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
