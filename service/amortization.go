package service

import (
	"time"

	"ledger/config"
	"ledger/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// BuildSchedule 按固定利率生成还款计划：
// 总利息 = 本金 × 利率 / 100，本金与利息分别按月均摊并取整到整数货币单位。
// remainder 为 final 时，每期向下取整，差额（必然非负）并入最后一期。
func BuildSchedule(principal, ratePct decimal.Decimal, months int, start time.Time, remainder string) ([]models.LoanInstallment, error) {
	if months <= 0 {
		return nil, invalid("loan_period_months", "必须大于 0")
	}
	if !principal.IsPositive() {
		return nil, invalid("total_loan_amount", "必须大于 0")
	}
	if ratePct.IsNegative() {
		return nil, invalid("interest_rate_percentage", "不能为负数")
	}

	n := decimal.NewFromInt(int64(months))
	totalInterest := principal.Mul(ratePct).Div(hundred)
	principalPerMonth := models.RoundUnit(principal.Div(n))
	interestPerMonth := models.RoundUnit(totalInterest.Div(n))
	if remainder == config.RemainderFinal {
		principalPerMonth = principal.Div(n).Floor()
		interestPerMonth = totalInterest.Div(n).Floor()
	}

	start = models.DateOf(start)
	list := make([]models.LoanInstallment, months)
	for i := 0; i < months; i++ {
		list[i] = models.LoanInstallment{
			DueDate:            models.AddMonths(start, i),
			PrincipalComponent: principalPerMonth,
			InterestComponent:  interestPerMonth,
			ExtraCharges:       decimal.Zero,
		}
	}

	if remainder == config.RemainderFinal {
		last := &list[months-1]
		last.PrincipalComponent = last.PrincipalComponent.Add(models.RoundUnit(principal).Sub(principalPerMonth.Mul(n)))
		last.InterestComponent = last.InterestComponent.Add(models.RoundUnit(totalInterest).Sub(interestPerMonth.Mul(n)))
	}
	for i := range list {
		list[i].Normalize(start)
	}
	return list, nil
}
