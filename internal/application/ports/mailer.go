package ports

import "context"

// Mailer - исходящая почта (fire-and-forget).
// Транзакционное ядро не ждёт доставки: письмо ставится в очередь после commit.
type Mailer interface {
	SendActivationMail(ctx context.Context, to, link string) error
}

// NopMailer discards mail.
type NopMailer struct{}

func (NopMailer) SendActivationMail(context.Context, string, string) error { return nil }
