package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pardaaf/backoffice/pkg/dbpool"
	"github.com/pardaaf/backoffice/pkg/mailer"
	"github.com/pardaaf/backoffice/pkg/tenantctx"
)

type salaryLine struct {
	Employee string
	Amount   float64
}

// runSalaries computes the day's salary accruals per gallery and mails the
// gallery admin a summary. Galleries without accruals or without an admin
// address are skipped.
func (s *Service) runSalaries(ctx context.Context) error {
	mainCtx := tenantctx.WithDatabase(ctx, dbpool.MainDatabase)

	galleries, err := s.catalog.Galleries(mainCtx)
	if err != nil {
		return err
	}

	for _, gallery := range galleries {
		tenantCtx := tenantctx.WithDatabase(mainCtx, gallery.DBName)

		lines, err := s.calculateSalaries(tenantCtx)
		if err != nil {
			s.logger.ErrorContext(tenantCtx, "salary calculation failed",
				slog.String("db_name", gallery.DBName),
				slog.String("error", err.Error()))
			continue
		}
		if len(lines) == 0 || gallery.AdminEmail == "" || s.mail == nil {
			continue
		}

		params := mailer.SendEmailParams{
			SendTo:   gallery.AdminEmail,
			Subject:  fmt.Sprintf("Daily salary summary for %s", gallery.Name),
			BodyHTML: salaryBody(lines),
		}
		if err := s.mail.SendEmail(tenantCtx, params); err != nil {
			s.logger.ErrorContext(tenantCtx, "salary mail failed",
				slog.String("db_name", gallery.DBName),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

// calculateSalaries runs the tenant's accrual procedure, which inserts the
// day's rows and returns them.
func (s *Service) calculateSalaries(ctx context.Context) ([]salaryLine, error) {
	conn, err := s.registry.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `SELECT employee, amount FROM calculate_daily_salaries()`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []salaryLine
	for rows.Next() {
		var line salaryLine
		if err := rows.Scan(&line.Employee, &line.Amount); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func salaryBody(lines []salaryLine) string {
	var b strings.Builder
	b.WriteString("<h3>Salaries accrued today</h3><table border=\"1\"><tr><th>Employee</th><th>Amount</th></tr>")
	var total float64
	for _, line := range lines {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%.2f</td></tr>", line.Employee, line.Amount)
		total += line.Amount
	}
	fmt.Fprintf(&b, "<tr><td><b>Total</b></td><td><b>%.2f</b></td></tr></table>", total)
	return b.String()
}
