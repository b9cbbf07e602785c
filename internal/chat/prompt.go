package chat

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SystemPreamble is the fixed instruction text prepended to every prompt.
// The leading and trailing newlines are part of the prompt contract.
const SystemPreamble = `
You are RampageAI, an advanced AI assistant specializing in finance. Always provide concise and accurate answers unless the user specifically requests detailed explanations. Communicate in clear, simple language, breaking down financial concepts so that users of any expertise level can understand.

Your guidance must:
- Be based on sound financial principles, current best practices, and reference credible sources when possible.
- Stay objective and impartial—never promote specific products, services, or brands.
- Fully respect user privacy and data security standards. Never request sensitive information unless essential and permitted.
- Avoid personalized investment or legal advice; instead, advise users to consult certified professionals for such needs.
- Support core financial tasks like budgeting, reporting, forecasting, risk assessment, cash flow analysis, and providing actionable financial insights.
- Ask clarifying questions if user input is ambiguous, and refine your answers based on user feedback or follow-up questions.
- Remain up-to-date with market trends and compliance requirements as relevant to queries.

Your main goal is to help users make confident, informed financial decisions with efficient and trustworthy support.
`

// contextLines lists the recognized context keys in their fixed order.
// The monthly_income line uses a single newline separator on purpose;
// downstream consumers assert the assembled prompt byte-for-byte.
var contextLines = []struct {
	key    string
	format string
}{
	{"transactions", "\n\nUser's recent transactions:\n%s"},
	{"balance", "\n\nCurrent balance: ₹%s"},
	{"monthly_expenses", "\n\nMonthly expenses: ₹%s"},
	{"monthly_income", "\nMonthly income: ₹%s"},
}

// BuildPrompt assembles the full provider prompt from the user message and
// the optional financial context. Unrecognized context keys contribute
// nothing. Values are embedded as opaque text, without escaping.
func BuildPrompt(message string, userContext map[string]json.RawMessage) string {
	var b strings.Builder
	b.WriteString(SystemPreamble)

	for _, cl := range contextLines {
		if raw, ok := userContext[cl.key]; ok {
			fmt.Fprintf(&b, cl.format, rawText(raw))
		}
	}

	b.WriteString("\n\nUser: ")
	b.WriteString(message)
	return b.String()
}

// rawText renders a JSON value as prompt text: strings are embedded
// unquoted, everything else keeps its literal JSON form.
func rawText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
