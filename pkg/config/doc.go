// Package config holds the environment-driven configuration of the clinic-idm
// service.
//
// Values are read once at startup with cleanenv (after an optional .env file
// is loaded with godotenv) into a Config struct that is passed explicitly to
// the constructors that need it. Core packages never read the environment.
//
// Durations accept both ISO-8601 ("PT10M", "P7D") and Go ("10m", "168h")
// notation.
package config
