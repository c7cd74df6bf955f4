package views

import "fmt"

// Prompt names.
const (
	UserReportPromptName   = "generate_user_report"
	SalesSummaryPromptName = "generate_sales_summary"
)

// UserReportPrompt asks for a report on one user.
func UserReportPrompt(userID int) string {
	return fmt.Sprintf(`
Please generate a comprehensive report for user ID %d.
Include:
1. User details and contact information
2. All orders placed by the user with product details
3. Total spending amount
4. Purchase history analysis
5. Personalized recommendations based on their purchase history

Format the report in a clear, professional manner.
`, userID)
}

// SalesSummaryPrompt asks for a store-wide sales summary.
func SalesSummaryPrompt() string {
	return `
Please generate a sales summary report including:
1. Total revenue by product category
2. Best selling products
3. User demographics analysis
4. Sales trends and insights
5. Recommendations for inventory management and marketing

Present the data with clear metrics and actionable insights.
`
}
