package insights

import (
	"encoding/json"
	"fmt"
	"strings"

	"spendlens/internal/models"
)

func toJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func toIndentedJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(b)
}

func advancedInsightsPrompt(records []Record) string {
	return fmt.Sprintf(`Analyze these expense transactions and provide advanced financial insights and recommendations:

%s

Provide:
1. Spending pattern analysis
2. Budget recommendations
3. Potential savings opportunities
4. Spending trends and predictions
5. Category-specific insights

Format your response as:
{
  "analysis": "Overall spending analysis",
  "insights": ["insight1", "insight2", "insight3"],
  "recommendations": ["recommendation1", "recommendation2", "recommendation3"],
  "budget_suggestions": ["budget tip1", "budget tip2"],
  "savings_opportunities": ["savings opportunity1", "savings opportunity2"]
}`, toIndentedJSON(records))
}

func queryPrompt(query string, d Digest) string {
	return fmt.Sprintf(`You are an AI financial advisor analyzing expense data. Answer the user's question about their spending patterns.

User Question: %q

Expense Data Summary:
- Total Expenses: %d
- Total Amount Spent: %s
- Categories: %s
- Monthly Data: %s
- Recent Expenses: %s

Provide a helpful, insightful response. If the user asks for specific data, include relevant numbers and percentages.
Be conversational and provide actionable insights when possible.

Response format:
{
  "answer": "Your detailed response here",
  "insights": ["insight1", "insight2", "insight3"],
  "recommendations": ["recommendation1", "recommendation2"],
  "data": { relevant numerical data }
}`, query, d.TotalExpenses, money(d.TotalAmount), toJSON(d.Categories), toJSON(d.MonthlyData), toJSON(d.RecentExpenses))
}

func predictionsPrompt(records []Record) string {
	categories := make(map[string][]string)
	merchants := make(map[string][]string)
	for _, r := range records {
		categories[string(r.Category)] = append(categories[string(r.Category)], r.Amount.String())
		if r.Merchant != "" {
			merchants[r.Merchant] = append(merchants[r.Merchant], r.Amount.String())
		}
	}
	return fmt.Sprintf(`Analyze these expense patterns and predict likely future expenses:

Monthly Spending: %s
Category Patterns: %s
Merchant Patterns: %s

Provide predictions for:
1. Next month's likely spending amount
2. Most probable expense categories
3. Potential recurring expenses
4. Seasonal spending patterns
5. Budget recommendations based on predictions

Format as:
{
  "predictedMonthlySpending": estimated_amount,
  "likelyCategories": ["category1", "category2"],
  "recurringExpenses": ["expense1", "expense2"],
  "seasonalPatterns": "description",
  "budgetRecommendations": ["rec1", "rec2"],
  "confidence": "high/medium/low"
}`, toJSON(monthlyMap(records)), toJSON(categories), toJSON(merchants))
}

func optimizationPrompt(records []Record) string {
	return fmt.Sprintf(`Analyze these expenses and provide optimization suggestions to help save money:

%s

Provide specific, actionable suggestions for:
1. Reducing unnecessary expenses
2. Finding better alternatives
3. Negotiating recurring bills
4. Identifying subscription optimizations
5. Suggesting budget-friendly alternatives

Format as:
{
  "suggestions": [
    {
      "type": "suggestion_type",
      "description": "suggestion text",
      "potential_savings": "estimated amount",
      "difficulty": "easy/medium/hard",
      "category": "category_name"
    }
  ],
  "total_potential_savings": estimated_total
}`, toIndentedJSON(records))
}

func goalsPrompt(records []Record) string {
	return fmt.Sprintf(`Based on this spending data, suggest realistic financial goals:

Average Monthly Spending: %s
Category Breakdown: %s
Monthly History: %s

Suggest SMART goals for:
1. Monthly spending reduction
2. Category-specific budgets
3. Savings targets
4. Spending habits to improve
5. Timeline for achieving goals

Format as:
{
  "monthly_budget_goal": target_amount,
  "category_goals": [
    {"category": "name", "current": amount, "target": amount, "reduction_percent": percent}
  ],
  "savings_target": target_amount,
  "timeline": "description",
  "actionable_steps": ["step1", "step2", "step3"]
}`, money(AverageMonthly(records)), toJSON(SummaryByCategory(records)), toJSON(monthlyMap(records)))
}

func receiptPrompt(text string) string {
	return fmt.Sprintf(`Analyze this receipt text and extract expense information:

Receipt Text: %q

Extract and return:
1. Total amount
2. Merchant name
3. Items purchased
4. Category classification (one of: %s)
5. Date (if mentioned, as YYYY-MM-DD)

Format as:
{
  "amount": extracted_amount,
  "merchant": "merchant_name",
  "items": ["item1", "item2"],
  "category": "category_name",
  "date": "date_if_found",
  "confidence": "high/medium/low"
}`, text, strings.Join(models.CategoryLabels(), ", "))
}

func benchmarkPrompt(records []Record, benchmark string) string {
	return fmt.Sprintf(`Compare these spending patterns with %s:

Category Spending: %s

Provide comparison analysis:
1. How spending compares to typical patterns
2. Categories that are above/below average
3. Benchmarking insights
4. Recommendations for improvement

Format as:
{
  "comparison_summary": "overall assessment",
  "above_average_categories": ["category1", "category2"],
  "below_average_categories": ["category3", "category4"],
  "benchmark_insights": ["insight1", "insight2"],
  "recommendations": ["rec1", "rec2"]
}`, benchmark, toJSON(SummaryByCategory(records)))
}
