package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/payflowhq/payflow/internal/request"
)

// renderICS produces an iCalendar file with one all-day VEVENT per paid
// request, placed on the payment date.
func renderICS(requests []*request.Request) []byte {
	var sb strings.Builder
	sb.WriteString("BEGIN:VCALENDAR\r\n")
	sb.WriteString("VERSION:2.0\r\n")
	sb.WriteString("PRODID:-//payflow//payments//EN\r\n")
	sb.WriteString("CALSCALE:GREGORIAN\r\n")

	now := time.Now().UTC()
	for _, req := range requests {
		if req.PaidAt == nil {
			continue
		}
		day := req.PaidAt.Truncate(24 * time.Hour)

		sb.WriteString("BEGIN:VEVENT\r\n")
		fmt.Fprintf(&sb, "UID:payment-request-%d@payflow\r\n", req.ID)
		fmt.Fprintf(&sb, "DTSTAMP:%s\r\n", now.Format("20060102T150405Z"))
		fmt.Fprintf(&sb, "DTSTART;VALUE=DATE:%s\r\n", day.Format("20060102"))
		fmt.Fprintf(&sb, "DTEND;VALUE=DATE:%s\r\n", day.AddDate(0, 0, 1).Format("20060102"))
		fmt.Fprintf(&sb, "SUMMARY:%s\r\n", escapeText(fmt.Sprintf("Payment R$ %s - %s", formatAmount(req.AmountCents), req.Description)))
		fmt.Fprintf(&sb, "DESCRIPTION:%s\r\n", escapeText(fmt.Sprintf("Event: %s\nRequester: %s", req.EventName, req.RequesterName)))
		sb.WriteString("END:VEVENT\r\n")
	}

	sb.WriteString("END:VCALENDAR\r\n")
	return []byte(sb.String())
}

// escapeText applies RFC 5545 text escaping.
func escapeText(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, ";", `\;`)
	s = strings.ReplaceAll(s, ",", `\,`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}
