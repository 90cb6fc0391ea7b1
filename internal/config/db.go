package config

// DB holds the database configuration settings.
type DB struct {
	Extras     string
	Host       string
	Port       int
	User       string
	Password   string //nolint:gosec
	Name       string
	GormEngine string `validate:"oneof=mysql postgres sqlite"`
}
