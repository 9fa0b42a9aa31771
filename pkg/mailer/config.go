package mailer

// Config holds SMTP relay credentials. DevMode swaps the relay for a
// logging sender, so local runs need no SMTP credentials at all.
type Config struct {
	DevMode   bool   `env:"SMTP_DEV_MODE" envDefault:"false"`
	Host      string `env:"SMTP_HOST"`
	Port      int    `env:"SMTP_PORT" envDefault:"587"`
	Username  string `env:"SMTP_USERNAME"`
	Password  string `env:"SMTP_PASSWORD"`
	FromEmail string `env:"SMTP_FROM_EMAIL"`
	FromName  string `env:"SMTP_FROM_NAME" envDefault:"Pardaaf"`
}
