package accounts

import "github.com/cleared-dev/backoffice/internal/model"

// DefaultChart returns the chart seeded for an owner with no accounts.
// Accounts flagged IsSystem back built-in flows and cannot be deleted.
func DefaultChart() []model.Account {
	return []model.Account{
		{Code: "1000", Name: "Cash", Type: model.AccountTypeAsset, IsSystem: true, Description: "Cash on hand and default payment account"},
		{Code: "1010", Name: "Business Checking", Type: model.AccountTypeAsset, Description: "Primary checking account"},
		{Code: "1100", Name: "Accounts Receivable", Type: model.AccountTypeAsset, IsSystem: true, Description: "Amounts owed by customers"},
		{Code: "1200", Name: "Inventory", Type: model.AccountTypeAsset, Description: "Goods held for sale"},
		{Code: "1500", Name: "Equipment", Type: model.AccountTypeAsset, Description: "Long-lived tangible assets"},
		{Code: "2000", Name: "Accounts Payable", Type: model.AccountTypeLiability, IsSystem: true, Description: "Amounts owed to suppliers"},
		{Code: "2100", Name: "Credit Card", Type: model.AccountTypeLiability, Description: "Business credit card"},
		{Code: "2200", Name: "Sales Tax Payable", Type: model.AccountTypeLiability, IsSystem: true, Description: "Tax collected on behalf of authorities"},
		{Code: "2300", Name: "Payroll Liabilities", Type: model.AccountTypeLiability, Description: "Wages and withholdings owed"},
		{Code: "3000", Name: "Owner's Equity", Type: model.AccountTypeEquity, IsSystem: true, Description: "Owner contributions"},
		{Code: "3100", Name: "Retained Earnings", Type: model.AccountTypeEquity, IsSystem: true, Description: "Accumulated profits"},
		{Code: "4000", Name: "Sales Revenue", Type: model.AccountTypeRevenue, IsSystem: true, Description: "Income from product sales"},
		{Code: "4100", Name: "Service Revenue", Type: model.AccountTypeRevenue, Description: "Income from services rendered"},
		{Code: "4900", Name: "Other Income", Type: model.AccountTypeRevenue, Description: "Interest and miscellaneous income"},
		{Code: "5000", Name: "Cost of Goods Sold", Type: model.AccountTypeExpense, Description: "Direct cost of goods sold"},
		{Code: "5100", Name: "Office Supplies", Type: model.AccountTypeExpense, Description: "Office supplies and expenses"},
		{Code: "5200", Name: "Rent", Type: model.AccountTypeExpense, Description: "Premises rent"},
		{Code: "5300", Name: "Utilities", Type: model.AccountTypeExpense, Description: "Power, water, internet"},
		{Code: "5400", Name: "Salaries & Wages", Type: model.AccountTypeExpense, Description: "Employee compensation"},
	}
}

