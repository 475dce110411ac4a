package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/payflowhq/payflow/internal/request"
)

const csvHeader = "id;created;paid;requester;event;category;amount;recipient;description"

// renderCSV produces the legacy semicolon-delimited export: dates as
// dd/mm/yyyy, amounts with a comma decimal separator, description always
// quoted.
func renderCSV(requests []*request.Request) []byte {
	var sb strings.Builder
	sb.WriteString(csvHeader)
	sb.WriteString("\r\n")

	for _, req := range requests {
		paid := ""
		if req.PaidAt != nil {
			paid = formatDate(*req.PaidAt)
		}
		fmt.Fprintf(&sb, "%d;%s;%s;%s;%s;%s;%s;%s;%s\r\n",
			req.ID,
			formatDate(req.CreatedAt),
			paid,
			req.RequesterName,
			req.EventName,
			req.Category,
			formatAmount(req.AmountCents),
			req.Recipient.Name,
			quoteField(req.Description),
		)
	}

	return []byte(sb.String())
}

func formatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// formatAmount writes centavos as a decimal with a comma separator,
// e.g. 15075 -> "150,75".
func formatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d,%02d", sign, cents/100, cents%100)
}

func quoteField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
