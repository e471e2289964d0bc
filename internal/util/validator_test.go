package util

import (
	"testing"
	"time"
)

// ==================== TDD: 先写测试 ====================

// TestValidateAmount_Positive 测试正数金额
func TestValidateAmount_Positive(t *testing.T) {
	testCases := []float64{0.01, 1.0, 100.5, 9999999.99}

	for _, amount := range testCases {
		err := ValidateAmount(amount)
		if err != nil {
			t.Errorf("ValidateAmount(%f) error = %v, want nil", amount, err)
		}
	}
}

// TestValidateAmount_Zero 测试零金额（异常）
func TestValidateAmount_Zero(t *testing.T) {
	err := ValidateAmount(0)

	if err == nil {
		t.Error("ValidateAmount(0) error = nil, want error")
	}
}

// TestValidateAmount_Negative 测试负数金额（异常）
func TestValidateAmount_Negative(t *testing.T) {
	testCases := []float64{-0.01, -100, -9999.99}

	for _, amount := range testCases {
		err := ValidateAmount(amount)
		if err == nil {
			t.Errorf("ValidateAmount(%f) error = nil, want error", amount)
		}
	}
}

// TestValidateAmount_TooLarge 测试金额过大（异常）
func TestValidateAmount_TooLarge(t *testing.T) {
	err := ValidateAmount(100000000) // 1亿

	if err == nil {
		t.Error("ValidateAmount(100000000) error = nil, want error")
	}
}

// TestValidateDate_Valid 测试有效日期
func TestValidateDate_Valid(t *testing.T) {
	testCases := []string{
		"2024-01-01",
		"2024-12-31",
		"2025-06-15",
	}

	for _, date := range testCases {
		err := ValidateDate(date)
		if err != nil {
			t.Errorf("ValidateDate(%q) error = %v, want nil", date, err)
		}
	}
}

// TestValidateDate_InvalidFormat 测试无效格式（异常）
func TestValidateDate_InvalidFormat(t *testing.T) {
	testCases := []string{
		"",
		"2024/01/01",
		"01-01-2024",
		"2024-1-1",
		"not-a-date",
		"2024-13-01", // 月份错误
		"2024-01-32", // 日期错误
	}

	for _, date := range testCases {
		err := ValidateDate(date)
		if err == nil {
			t.Errorf("ValidateDate(%q) error = nil, want error", date)
		}
	}
}

// TestValidateCollectAmount 代收金额允许为 0
func TestValidateCollectAmount(t *testing.T) {
	for _, amount := range []float64{0, 1, 9999999.99} {
		if err := ValidateCollectAmount(amount); err != nil {
			t.Errorf("ValidateCollectAmount(%f) error = %v, want nil", amount, err)
		}
	}
	for _, amount := range []float64{-1, 10000000} {
		if err := ValidateCollectAmount(amount); err == nil {
			t.Errorf("ValidateCollectAmount(%f) error = nil, want error", amount)
		}
	}
}

// TestValidatePickupDate 取件日期不能早于今天
func TestValidatePickupDate(t *testing.T) {
	today := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

	for _, date := range []string{"2026-03-10", "2026-03-11", "2027-01-01"} {
		if _, err := ValidatePickupDate(date, today); err != nil {
			t.Errorf("ValidatePickupDate(%q) error = %v, want nil", date, err)
		}
	}
	for _, date := range []string{"2026-03-09", "2020-01-01", "tomorrow"} {
		if _, err := ValidatePickupDate(date, today); err == nil {
			t.Errorf("ValidatePickupDate(%q) error = nil, want error", date)
		}
	}
}

// TestValidatePhone 孟加拉手机号
func TestValidatePhone(t *testing.T) {
	valid := []string{"01712345678", "+8801712345678", "017-1234-5678", " 01987654321 "}
	for _, p := range valid {
		if err := ValidatePhone(p); err != nil {
			t.Errorf("ValidatePhone(%q) error = %v, want nil", p, err)
		}
	}
	invalid := []string{"", "0171234567", "01212345678", "1712345678", "0171234567a"}
	for _, p := range invalid {
		if err := ValidatePhone(p); err == nil {
			t.Errorf("ValidatePhone(%q) error = nil, want error", p)
		}
	}
}

func TestValidateEnums(t *testing.T) {
	if err := ValidateTimeSlot("Afternoon"); err != nil {
		t.Errorf("ValidateTimeSlot(Afternoon) error = %v", err)
	}
	if err := ValidateTimeSlot("Midnight"); err == nil {
		t.Error("ValidateTimeSlot(Midnight) error = nil, want error")
	}
	if err := ValidatePaymentType("Mobile Banking"); err != nil {
		t.Errorf("ValidatePaymentType error = %v", err)
	}
	if err := ValidatePaymentType("Crypto"); err == nil {
		t.Error("ValidatePaymentType(Crypto) error = nil, want error")
	}
	if err := ValidateProvider("bKash"); err != nil {
		t.Errorf("ValidateProvider error = %v", err)
	}
	if err := ValidateProvider("bkash"); err == nil {
		t.Error("ValidateProvider is case sensitive")
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("12345"); err == nil {
		t.Error("short password accepted")
	}
	if err := ValidatePassword("secret1"); err != nil {
		t.Errorf("ValidatePassword error = %v", err)
	}
}

func TestFormatMoney(t *testing.T) {
	cases := map[float64]string{712: "712.00", 316.5: "316.50", 0.125: "0.13", -9.999: "-10.00"}
	for in, want := range cases {
		if got := FormatMoney(in); got != want {
			t.Errorf("FormatMoney(%v) = %q, want %q", in, got, want)
		}
	}
	if got := RoundMoney(12.345); got != 12.35 {
		t.Errorf("RoundMoney(12.345) = %v", got)
	}
}
