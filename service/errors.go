package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("记录不存在")
	// ErrInsufficientStock 出库数量超过库存
	ErrInsufficientStock = errors.New("库存不足")
	// ErrCapitalMissing 现金余额记录不存在且配置为不自动创建
	ErrCapitalMissing = errors.New("现金余额记录不存在")
)

// ValidationError 按字段报告的校验错误，发生在任何写入之前
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation 是否为校验错误
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// notFound 将 gorm 的未找到错误转换为 ErrNotFound
func notFound(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return fmt.Errorf("查询%s失败: %w", what, err)
}

// ParseDecimal 解析十进制字符串，保留两位小数（四舍五入）
func ParseDecimal(field, s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, invalid(field, "不能为空")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, invalid(field, "不是合法数字")
	}
	return d.Round(2), nil
}

// ParseAmount 解析必须大于零的金额
func ParseAmount(field, s string) (decimal.Decimal, error) {
	d, err := ParseDecimal(field, s)
	if err != nil {
		return d, err
	}
	if !d.IsPositive() {
		return decimal.Zero, invalid(field, "必须大于 0")
	}
	return d, nil
}

// ParseOptionalAmount 空字符串视为 0，否则不得为负
func ParseOptionalAmount(field, s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	d, err := ParseDecimal(field, s)
	if err != nil {
		return d, err
	}
	if d.IsNegative() {
		return decimal.Zero, invalid(field, "不能为负数")
	}
	return d, nil
}
