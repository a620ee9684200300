package entity

import "errors"

var ErrPlanNotFound = errors.New("membership plan not found")

type MembershipPlan struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	PriceMonthly int64  `json:"price_monthly"`
	PriceAnnual  int64  `json:"price_annual"`
	Currency     string `json:"currency"`
}
