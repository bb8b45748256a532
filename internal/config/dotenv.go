package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file. An empty
// path means ".env" in the current directory; a missing file is not an
// error, the services then run on the ambient environment alone.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	return godotenv.Load(path)
}
