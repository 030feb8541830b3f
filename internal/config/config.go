package config

import (
	"os"
	"strconv"

	"github.com/Simplici0/propostas-ti/internal/pricing"
	"github.com/Simplici0/propostas-ti/internal/printer"
)

const (
	defaultDBPath        = "./dev.db"
	defaultPort          = "8080"
	defaultMigrationsDir = "migrations"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	AppEnv        string
	LogLevel      string
	AdminEmail    string
	AdminPassword string
	SessionSecret string
	DBPath        string
	Port          string
	MigrationsDir string

	// Pricing assumptions.
	LaborMarkup             float64
	PrinterMonthlyVolume    float64
	PrinterMaintenanceYears float64
	EnergyTariff            float64
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// Best-effort: production injects real environment variables.
	_ = loadDotEnv(".env")

	return Config{
		AppEnv:        getEnv("APP_ENV", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		DBPath:        getEnv("DB_PATH", defaultDBPath),
		Port:          getEnv("PORT", defaultPort),
		MigrationsDir: getEnv("MIGRATIONS_DIR", defaultMigrationsDir),

		LaborMarkup:             getEnvFloat("LABOR_MARKUP", pricing.DefaultLaborMarkup),
		PrinterMonthlyVolume:    getEnvFloat("PRINTER_MONTHLY_VOLUME", printer.DefaultMonthlyVolume),
		PrinterMaintenanceYears: getEnvFloat("PRINTER_MAINTENANCE_YEARS", printer.DefaultMaintenanceYears),
		EnergyTariff:            getEnvFloat("ENERGY_TARIFF", printer.DefaultEnergyTariff),
	}
}

// IsDev reports whether the app runs locally, where migrations and the
// seed run at startup.
func (c Config) IsDev() bool {
	return c.AppEnv == "" || c.AppEnv == "dev" || c.AppEnv == "development"
}

// PrinterAssumptions returns the printer operating parameters.
func (c Config) PrinterAssumptions() printer.Assumptions {
	return printer.Assumptions{
		EnergyTariff:     c.EnergyTariff,
		MonthlyVolume:    c.PrinterMonthlyVolume,
		MaintenanceYears: c.PrinterMaintenanceYears,
	}
}

// Warnings lists settings that are missing but not fatal.
func (c Config) Warnings() []string {
	var warnings []string
	if c.AdminEmail == "" {
		warnings = append(warnings, "ADMIN_EMAIL is not set")
	}
	if c.AdminPassword == "" {
		warnings = append(warnings, "ADMIN_PASSWORD is not set")
	}
	if c.SessionSecret == "" {
		warnings = append(warnings, "SESSION_SECRET is not set")
	}
	return warnings
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return fallback
}
