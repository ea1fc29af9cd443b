package config

import (
	"fmt"
	"os"
	"time"
)

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

const TIME_PARSE_FORMAT = "2006-01-02 15:04:05 -07:00"

// Marketplace policy. Rates are basis points, amounts are integer cents so
// that breakdown totals reconcile exactly.
const (
	SERVICE_FEE_RATE_BP int64 = 1000 // 10% of subtotal
	DEPOSIT_RATE_BP     int64 = 3000 // 30% of total, due at booking
	BASIS_POINTS        int64 = 10000

	// Applied when a vendor has no minimum of their own.
	DEFAULT_MINIMUM_PAYOUT int64 = 1000 // $10.00

	CURRENCY = "usd"
)

const (
	SESSION_TTL        = 24 * time.Hour
	PAYOUT_PERIOD_DAYS = 30

	// A processing payout older than this shows up in the stale-payout sweep.
	PAYOUT_STALE_AFTER = 24 * time.Hour
)
