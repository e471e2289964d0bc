package util

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const maxAmount = 10000000 // 限制最大金额为1千万

// ValidateAmount 验证金额（必须为正数且不超过上限），用于充值
func ValidateAmount(amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive, got %f", amount)
	}
	if amount >= maxAmount {
		return fmt.Errorf("amount too large, got %f", amount)
	}
	return nil
}

// ValidateCollectAmount 验证代收金额，允许为 0（预付包裹）
func ValidateCollectAmount(amount float64) error {
	if amount < 0 {
		return fmt.Errorf("amount must not be negative, got %f", amount)
	}
	if amount >= maxAmount {
		return fmt.Errorf("amount too large, got %f", amount)
	}
	return nil
}

// ValidateDate 验证日期格式（必须为 YYYY-MM-DD）
func ValidateDate(dateStr string) error {
	if dateStr == "" {
		return fmt.Errorf("date is empty")
	}
	_, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}
	return nil
}

// ValidatePickupDate 验证取件日期：格式正确且不早于 today 所在的日期
func ValidatePickupDate(dateStr string, today time.Time) (time.Time, error) {
	if err := ValidateDate(dateStr); err != nil {
		return time.Time{}, err
	}
	d, _ := time.ParseInLocation("2006-01-02", dateStr, today.Location())
	y, m, day := today.Date()
	if d.Before(time.Date(y, m, day, 0, 0, 0, 0, today.Location())) {
		return time.Time{}, fmt.Errorf("pickup date %s is in the past", dateStr)
	}
	return d, nil
}

var phoneRe = regexp.MustCompile(`^01[3-9][0-9]{8}$`)

// NormalizePhone 去掉空格、横线和 +88 前缀，返回 11 位本地号码
func NormalizePhone(phone string) string {
	p := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(phone))
	p = strings.TrimPrefix(p, "+")
	if strings.HasPrefix(p, "880") {
		p = p[2:]
	}
	return p
}

// ValidatePhone 验证孟加拉手机号（01XXXXXXXXX）
func ValidatePhone(phone string) error {
	if phone == "" {
		return fmt.Errorf("phone is empty")
	}
	if !phoneRe.MatchString(NormalizePhone(phone)) {
		return fmt.Errorf("invalid phone number %q", phone)
	}
	return nil
}

var (
	TimeSlots       = []string{"Morning", "Afternoon", "Evening"}
	PaymentTypes    = []string{"Bank", "Mobile Banking", "Cash"}
	MobileProviders = []string{"bKash", "Rocket", "Nagad"}
)

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// ValidateTimeSlot 验证取件时段
func ValidateTimeSlot(slot string) error {
	if !oneOf(slot, TimeSlots) {
		return fmt.Errorf("time slot must be one of %s", strings.Join(TimeSlots, ", "))
	}
	return nil
}

// ValidatePaymentType 验证收款方式类型
func ValidatePaymentType(typ string) error {
	if !oneOf(typ, PaymentTypes) {
		return fmt.Errorf("payment type must be one of %s", strings.Join(PaymentTypes, ", "))
	}
	return nil
}

// ValidateProvider 验证移动支付服务商
func ValidateProvider(provider string) error {
	if !oneOf(provider, MobileProviders) {
		return fmt.Errorf("provider must be one of %s", strings.Join(MobileProviders, ", "))
	}
	return nil
}

// ValidatePassword 验证密码长度
func ValidatePassword(pw string) error {
	if len(pw) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	if len(pw) > 72 {
		return fmt.Errorf("password must be at most 72 bytes")
	}
	return nil
}
