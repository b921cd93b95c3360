package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	Success   bool        `json:"success"`              // 是否成功
	Data      interface{} `json:"data,omitempty"`       // 数据内容
	Message   string      `json:"message,omitempty"`    // 提示消息
	RequestID string      `json:"request_id,omitempty"` // 请求 ID（仅错误响应）
}

// PageResponse 分页响应结构
type PageResponse struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message,omitempty"`
	Pagination Pagination  `json:"pagination"`
}

// Pagination 分页信息
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"total_page"`
}

// BuildPagination 根据总数构建分页信息
func BuildPagination(page, pageSize int, total int64) Pagination {
	totalPage := int64(0)
	if pageSize > 0 {
		totalPage = (total + int64(pageSize) - 1) / int64(pageSize)
	}
	return Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	}
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// SuccessWithMsg 成功响应（自定义消息）
func SuccessWithMsg(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
		Message: msg,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// SuccessWithPage 分页成功响应
func SuccessWithPage(c *gin.Context, data interface{}, pagination Pagination) {
	c.JSON(http.StatusOK, PageResponse{
		Success:    true,
		Data:       data,
		Pagination: pagination,
	})
}

// Error 错误响应，HTTP 状态码即错误分类
func Error(c *gin.Context, code int, msg string) {
	c.JSON(httpStatus(code), Response{
		Success:   false,
		Message:   msg,
		RequestID: requestID(c),
	})
}

// AbortError 中断后续处理并返回错误响应
func AbortError(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(httpStatus(code), Response{
		Success:   false,
		Message:   msg,
		RequestID: requestID(c),
	})
}

func requestID(c *gin.Context) string {
	if c == nil {
		return ""
	}
	if value, ok := c.Get("request_id"); ok {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}
