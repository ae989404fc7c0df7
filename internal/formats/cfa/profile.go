package cfa

import "github.com/mind-engage/mindengage-qbank/internal/formats"

func init() {
	formats.Register(Level1())
	formats.Register(Level1ThreeTopics())
}

var level1Topics = []formats.Topic{
	{ID: "quantitative_methods", Title: "Quantitative Methods"},
	{ID: "economics", Title: "Economics"},
	{ID: "corporate_issuers", Title: "Corporate Issuers"},
	{ID: "financial_statement_analysis", Title: "Financial Statement Analysis"},
	{ID: "equity_investments", Title: "Equity Investments"},
	{ID: "fixed_income", Title: "Fixed Income"},
	{ID: "derivatives", Title: "Derivatives"},
	{ID: "alternative_investments", Title: "Alternative Investments"},
	{ID: "portfolio_management", Title: "Portfolio Management"},
	{ID: "ethical_and_professional_standards", Title: "Ethical and Professional Standards"},
}

// Level1 is the full CFA Level I curriculum.
func Level1() formats.Profile {
	return formats.Profile{
		Key:     "CFA1",
		Version: "v1",
		Title:   "CFA Level I",
		Topics:  append([]formats.Topic(nil), level1Topics...),
	}
}

// Level1ThreeTopics is the reduced pilot catalog.
func Level1ThreeTopics() formats.Profile {
	return formats.Profile{
		Key:     "CFA3topics",
		Version: "v1",
		Title:   "CFA Level I (three-topic pilot)",
		Topics:  append([]formats.Topic(nil), level1Topics[:3]...),
	}
}
