package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	DatabaseURL string `env:"DATABASE_URL" envDefault:"sqlite://bot.db"`

	Discord Discord `envPrefix:"DISCORD_"`
	Tebex   Tebex   `envPrefix:"TEBEX_"`
}

type Discord struct {
	BotToken    string `env:"BOT_TOKEN,required"`
	MainGuildID string `env:"MAIN_GUILD_ID,required"`
}

type Tebex struct {
	BaseApiURL string `env:"BASE_API_URL" envDefault:"https://plugin.tebex.io"`
	Secret     string `env:"SECRET,required"`
	// Shared secret expected in X-Webhook-Secret on inbound webhook calls.
	WebhookSecret string `env:"WEBHOOK_SECRET"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	// Empty disables the HTTP surface; the bot runs fine on gateway events alone.
	Port string `env:"HTTP_PORT"`
}
